package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"flickrscraper/internal/downloader"
	"flickrscraper/pkg/config"
	"flickrscraper/pkg/flickr"
	"flickrscraper/pkg/logger"
	"flickrscraper/pkg/photo"
	"flickrscraper/pkg/ratelimit"
	"flickrscraper/pkg/storage"
	"flickrscraper/pkg/ui"
)

// YearResult summarizes one scraped year
type YearResult struct {
	Year         int
	RunID        string
	Fetched      int
	Directory    string
	MetadataPath string
	Download     *downloader.Result
}

// Scraper fetches geotagged photos per year and downloads them
type Scraper struct {
	client      FlickrClient
	parser      *photo.Parser
	rateLimiter ratelimit.Limiter
	config      *config.Config
	logger      logger.Logger
	newProgress func(label string, total int) ProgressReporter
}

// New creates a Scraper talking to Flickr with cfg's credentials
func New(cfg *config.Config) (*Scraper, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	log := logger.GetLogger()

	client := flickr.NewClient(cfg.Flickr.APIKey, cfg.Download.Timeout, log)
	if cfg.Flickr.Endpoint != "" {
		client.SetEndpoint(cfg.Flickr.Endpoint)
	}
	if cfg.Flickr.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Flickr.UserAgent)
	}

	return NewWithClient(cfg, client, log), nil
}

// NewWithClient creates a Scraper over an existing client
func NewWithClient(cfg *config.Config, client FlickrClient, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	rpm := cfg.Fetch.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &Scraper{
		client:      client,
		parser:      photo.DefaultParser(),
		rateLimiter: ratelimit.PerMinute(rpm),
		config:      cfg,
		logger:      log,
		newProgress: func(label string, total int) ProgressReporter {
			return ui.NewProgress(label, total)
		},
	}
}

// SetParser overrides the URL preference order
func (s *Scraper) SetParser(p *photo.Parser) {
	s.parser = p
}

// YearDirectory returns where a year's images and table are stored
func (s *Scraper) YearDirectory(year int) string {
	return filepath.Join(s.config.Output.BaseDirectory, strconv.Itoa(year))
}

// FetchYear pages through search results for year until total records are
// collected or the results run out, and returns exactly min(total, available).
// perPage must be between 1 and flickr.MaxPerPage. The first parse or fetch
// failure aborts the year.
func (s *Scraper) FetchYear(ctx context.Context, year, total, perPage int) ([]*photo.Record, error) {
	if total <= 0 {
		return nil, fmt.Errorf("total must be positive, got %d", total)
	}
	if perPage < 1 || perPage > flickr.MaxPerPage {
		return nil, fmt.Errorf("per page must be between 1 and %d, got %d", flickr.MaxPerPage, perPage)
	}

	log := s.logger.WithField("year", year)
	extras := append([]string{"date_taken", "geo"}, s.parser.URLFields()...)

	progress := s.newProgress("Fetching Images", total)
	defer progress.Done()

	records := make([]*photo.Record, 0, total)
	for page := 1; len(records) < total; page++ {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := s.client.Search(ctx, flickr.SearchQuery{
			Year:    year,
			Page:    page,
			PerPage: perPage,
			Extras:  extras,
		})
		if err != nil {
			log.WithError(err).WithField("page", page).Error("Search request failed")
			return nil, err
		}

		batch := resp.Photos.Photo
		if len(batch) == 0 {
			log.InfoWithFields("No more results", map[string]interface{}{
				"page":    page,
				"fetched": len(records),
			})
			break
		}

		for _, raw := range batch {
			rec, err := s.parser.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("year %d page %d: %w", year, page, err)
			}
			records = append(records, rec)
		}

		progress.Set(len(records))
		logger.LogFetchProgress(log, year, page, len(records), total)

		if pages := resp.Photos.PageCount(); pages > 0 && page >= pages {
			log.DebugWithFields("Reached last reported page", map[string]interface{}{
				"pages": pages,
			})
			break
		}
	}

	if len(records) > total {
		records = records[:total]
	}
	return records, nil
}

// ScrapeYear fetches, downloads and tabulates one year
func (s *Scraper) ScrapeYear(ctx context.Context, year int) (*YearResult, error) {
	runID := uuid.NewString()
	log := s.logger.WithFields(map[string]interface{}{
		"year":   year,
		"run_id": runID,
	})

	start := time.Now()
	logger.LogComponentStart(log, "scrape", map[string]interface{}{
		"total":    s.config.Fetch.Total,
		"per_page": s.config.Flickr.PerPage,
	})

	records, err := s.FetchYear(ctx, year, s.config.Fetch.Total, s.config.Flickr.PerPage)
	if err != nil {
		return nil, err
	}
	ui.PrintInfo("Fetched images", strconv.Itoa(len(records)))

	dir := s.YearDirectory(year)
	store, err := storage.NewManager(dir, s.config.Download.Extension)
	if err != nil {
		return nil, fmt.Errorf("year %d: %w", year, err)
	}

	progress := s.newProgress("Downloading Images", len(records))
	dl := downloader.New(s.client, store,
		downloader.WithDelay(s.config.Download.Delay),
		downloader.WithLogger(log),
		downloader.WithProgress(progress),
		downloader.WithExifInspection(s.config.Download.InspectExif),
	)

	metadataPath := filepath.Join(dir, s.config.Output.MetadataFileName)
	result, err := dl.Run(ctx, records, metadataPath)
	if err != nil {
		return nil, fmt.Errorf("year %d: %w", year, err)
	}

	if result.Skipped > 0 {
		logger.LogSkipSummary(log, year, result.SkippedIDs)
		ui.PrintWarning(fmt.Sprintf("Skipped %d photos (forbidden or rate limited)", result.Skipped))
	}

	log.InfoWithFields("Year complete", map[string]interface{}{
		"fetched":    len(records),
		"downloaded": result.Downloaded,
		"existing":   result.Existing,
		"skipped":    result.Skipped,
		"on_disk":    store.DownloadedCount(),
		"elapsed":    time.Since(start),
	})

	return &YearResult{
		Year:         year,
		RunID:        runID,
		Fetched:      len(records),
		Directory:    dir,
		MetadataPath: metadataPath,
		Download:     result,
	}, nil
}

// ScrapeYears scrapes each year in order and stops at the first failure,
// returning the results of the years that completed.
func (s *Scraper) ScrapeYears(ctx context.Context, years []int) ([]*YearResult, error) {
	results := make([]*YearResult, 0, len(years))
	for _, year := range years {
		ui.PrintHighlight(fmt.Sprintf("Fetching images for year %d", year))

		result, err := s.ScrapeYear(ctx, year)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}
