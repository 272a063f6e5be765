package downloader

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	errs "flickrscraper/pkg/errors"
	"flickrscraper/pkg/exiftag"
	"flickrscraper/pkg/logger"
	"flickrscraper/pkg/metadata"
	"flickrscraper/pkg/photo"
	"flickrscraper/pkg/ratelimit"
)

// PhotoClient fetches image bytes
type PhotoClient interface {
	DownloadPhoto(ctx context.Context, id int64, url string) ([]byte, error)
}

// PhotoStorage persists images by photo id
type PhotoStorage interface {
	IsDownloaded(id int64) bool
	SavePhoto(r io.Reader, id int64) error
	PhotoPath(id int64) string
}

// Progress receives one tick per processed record
type Progress interface {
	Add(n int)
	Done()
}

// Pacer pauses between image requests
type Pacer interface {
	Pause(ctx context.Context) error
}

// Result summarizes a batch
type Result struct {
	Downloaded int
	Existing   int
	Skipped    int
	SkippedIDs []int64
	// Rows holds one entry per downloaded or already present photo, in input order
	Rows []metadata.Row
}

// Downloader fetches photos one at a time and writes the metadata table
type Downloader struct {
	client      PhotoClient
	store       PhotoStorage
	pacer       Pacer
	progress    Progress
	logger      logger.Logger
	inspectExif bool
}

// Option configures a Downloader
type Option func(*Downloader)

// WithDelay sets the pause taken after each image request
func WithDelay(d time.Duration) Option {
	return func(dl *Downloader) { dl.pacer = ratelimit.NewFixedDelay(d) }
}

// WithPacer replaces the pause strategy
func WithPacer(p Pacer) Option {
	return func(dl *Downloader) { dl.pacer = p }
}

// WithProgress reports per-record progress to p
func WithProgress(p Progress) Option {
	return func(dl *Downloader) { dl.progress = p }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(dl *Downloader) { dl.logger = l }
}

// WithExifInspection logs embedded EXIF details of each new image
func WithExifInspection(enabled bool) Option {
	return func(dl *Downloader) { dl.inspectExif = enabled }
}

// New creates a Downloader. The default delay is one second.
func New(client PhotoClient, store PhotoStorage, opts ...Option) *Downloader {
	d := &Downloader{
		client:   client,
		store:    store,
		pacer:    ratelimit.NewFixedDelay(time.Second),
		progress: nopProgress{},
		logger:   logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run processes records in order and then writes the metadata table to metadataPath.
//
// Photos already on disk are not fetched but keep their row. A 403 or 429
// drops the photo without a row. Any other failure stops the batch before the
// remaining records are attempted and no table is written.
func (d *Downloader) Run(ctx context.Context, records []*photo.Record, metadataPath string) (*Result, error) {
	result := &Result{Rows: make([]metadata.Row, 0, len(records))}
	defer d.progress.Done()

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if d.store.IsDownloaded(rec.ID) {
			result.Existing++
			result.Rows = append(result.Rows, metadata.FromRecord(rec))
			logger.LogDownload(d.logger, rec.ID, logger.OutcomeExisting, nil)
			d.progress.Add(1)
			continue
		}

		err := d.fetch(ctx, rec)
		switch {
		case err == nil:
			result.Downloaded++
			result.Rows = append(result.Rows, metadata.FromRecord(rec))
			logger.LogDownload(d.logger, rec.ID, logger.OutcomeDownloaded, nil)
		case errs.IsSkippable(err):
			result.Skipped++
			result.SkippedIDs = append(result.SkippedIDs, rec.ID)
			logger.LogDownload(d.logger, rec.ID, logger.OutcomeSkipped, err)
		default:
			logger.LogDownload(d.logger, rec.ID, logger.OutcomeFailed, err)
			return nil, err
		}
		d.progress.Add(1)

		if err := d.pacer.Pause(ctx); err != nil {
			return nil, err
		}
	}

	if err := metadata.Write(metadataPath, result.Rows); err != nil {
		return nil, fmt.Errorf("failed to write metadata table: %w", err)
	}

	return result, nil
}

func (d *Downloader) fetch(ctx context.Context, rec *photo.Record) error {
	data, err := d.client.DownloadPhoto(ctx, rec.ID, rec.URL)
	if err != nil {
		var httpErr *errs.DownloadHTTPError
		if stderrors.As(err, &httpErr) && httpErr.ID == 0 {
			httpErr.ID = rec.ID
		}
		return err
	}

	if err := d.store.SavePhoto(bytes.NewReader(data), rec.ID); err != nil {
		return fmt.Errorf("photo %d: %w", rec.ID, err)
	}

	if d.inspectExif {
		d.logExif(rec, data)
	}
	return nil
}

func (d *Downloader) logExif(rec *photo.Record, data []byte) {
	tags, err := exiftag.Read(data)
	if err != nil {
		d.logger.WithField("photo_id", rec.ID).WithError(err).Debug("No EXIF data")
		return
	}
	d.logger.WithField("photo_id", rec.ID).DebugWithFields("EXIF data", tags.Summary())
}

type nopProgress struct{}

func (nopProgress) Add(int) {}
func (nopProgress) Done()   {}
