package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs a completed HTTP request on l
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// Download outcomes reported by LogDownload
const (
	OutcomeDownloaded = "downloaded"
	OutcomeExisting   = "existing"
	OutcomeSkipped    = "skipped"
	OutcomeFailed     = "failed"
)

// LogDownload logs the outcome of one photo download
func LogDownload(l Logger, photoID int64, outcome string, err error) {
	entry := l.WithFields(map[string]interface{}{
		"photo_id": photoID,
		"outcome":  outcome,
	})

	switch outcome {
	case OutcomeFailed:
		entry.WithError(err).Error("Download failed")
	case OutcomeSkipped:
		entry.WithError(err).Warn("Download skipped")
	case OutcomeExisting:
		entry.Debug("Photo already on disk")
	default:
		entry.Debug("Download completed")
	}
}

// LogFetchProgress logs search paging progress for a year
func LogFetchProgress(l Logger, year, page, fetched, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(min(fetched, total)) / float64(total) * 100
	}

	l.DebugWithFields("Fetch progress", map[string]interface{}{
		"year":       year,
		"page":       page,
		"fetched":    fetched,
		"total":      total,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	})
}

// LogSkipSummary warns about photos that were refused by the server
func LogSkipSummary(l Logger, year int, skipped []int64) {
	if len(skipped) == 0 {
		return
	}
	l.WarnWithFields("Some photos were skipped", map[string]interface{}{
		"year":      year,
		"skipped":   len(skipped),
		"photo_ids": skipped,
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, settings map[string]interface{}) {
	entry := l.WithField("component", component)
	if len(settings) > 0 {
		entry = entry.WithFields(settings)
	}
	entry.Info("Component started")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
