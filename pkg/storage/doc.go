// Package storage manages the per-year photo directory.
//
// Photos are stored as <id>.<extension>. The Manager indexes existing files
// on creation so re-runs can skip photos that are already on disk, and writes
// new photos through a temporary file followed by a rename so an interrupted
// run never leaves a truncated image under the final name.
//
//	manager, err := storage.NewManager("images/2015", "jpg")
//	if err != nil {
//	    return err
//	}
//	if !manager.IsDownloaded(id) {
//	    err = manager.SavePhoto(body, id)
//	}
package storage
