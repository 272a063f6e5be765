package scraper

import (
	"context"

	"flickrscraper/internal/downloader"
	"flickrscraper/pkg/flickr"
)

// SearchClient lists photos page by page
type SearchClient interface {
	Search(ctx context.Context, q flickr.SearchQuery) (*flickr.SearchResponse, error)
}

// FlickrClient covers both the search API and image downloads
type FlickrClient interface {
	SearchClient
	downloader.PhotoClient
}

// ProgressReporter is the progress sink used for both phases
type ProgressReporter interface {
	Set(n int)
	Add(n int)
	Done()
}
