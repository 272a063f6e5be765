// Package logger provides structured logging for the Flickr scraper.
//
// It wraps zerolog behind a small Logger interface with:
//   - leveled logging (Debug, Info, Warn, Error, Fatal)
//   - child loggers carrying fields (WithField, WithFields, WithError)
//   - colored console output on stderr, optionally mirrored to a file
//   - a process-wide logger (Initialize, GetLogger)
//   - NewNopLogger and TestLogger for tests
//
// Basic usage:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("year", 2015)
//	log.Info("Fetching images")
//	logger.LogDownload(log, photoID, logger.OutcomeSkipped, err)
package logger
