// Package exiftag reads capture metadata embedded in downloaded JPEGs.
package exiftag

import (
	"errors"
	"fmt"
	"os"
	"strings"

	exif "github.com/dsoprea/go-exif/v2"
)

// ErrNoExif is returned for images without an EXIF block
var ErrNoExif = errors.New("no exif data")

// Tags maps EXIF tag names to their formatted values.
// When a tag appears in several IFDs the first occurrence wins.
type Tags map[string]string

// Read extracts all EXIF tags from an image in memory.
func Read(data []byte) (Tags, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, ErrNoExif
		}
		return nil, fmt.Errorf("failed to locate exif: %w", err)
	}

	entries, err := exif.GetFlatExifData(rawExif)
	if err != nil {
		return nil, fmt.Errorf("failed to parse exif: %w", err)
	}

	tags := make(Tags, len(entries))
	for _, entry := range entries {
		if _, seen := tags[entry.TagName]; seen {
			continue
		}
		tags[entry.TagName] = strings.TrimSpace(entry.Formatted)
	}
	return tags, nil
}

// ReadFile extracts all EXIF tags from an image on disk.
func ReadFile(path string) (Tags, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(data)
}

// CaptureTime returns DateTimeOriginal, falling back to DateTime.
func (t Tags) CaptureTime() (string, bool) {
	for _, name := range []string{"DateTimeOriginal", "DateTime"} {
		if v, ok := t[name]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// HasGPS reports whether the image embeds a GPS position.
func (t Tags) HasGPS() bool {
	_, lat := t["GPSLatitude"]
	_, lon := t["GPSLongitude"]
	return lat && lon
}

// Summary returns the log fields the downloader records per photo.
func (t Tags) Summary() map[string]interface{} {
	fields := map[string]interface{}{
		"exif_tags":    len(t),
		"exif_has_gps": t.HasGPS(),
	}
	if taken, ok := t.CaptureTime(); ok {
		fields["exif_taken"] = taken
	}
	if model, ok := t["Model"]; ok {
		fields["exif_camera"] = model
	}
	return fields
}
