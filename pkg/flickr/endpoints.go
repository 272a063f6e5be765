package flickr

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"flickrscraper/pkg/photo"
)

const (
	// BaseURL is the Flickr REST endpoint
	BaseURL = "https://www.flickr.com/services/rest/"

	// SearchMethod is the API method used to list photos
	SearchMethod = "flickr.photos.search"

	// DefaultPerPage is the page size used when none is given
	DefaultPerPage = 250

	// MaxPerPage is the largest page Flickr will serve
	MaxPerPage = 500
)

// SearchQuery selects one page of geotagged photos taken in Year
type SearchQuery struct {
	Year    int
	Page    int
	PerPage int
	// Extras overrides the extra fields requested; defaults to DefaultExtras()
	Extras []string
}

// DefaultExtras requests the capture date, geo data and every image size URL
func DefaultExtras() []string {
	return append([]string{"date_taken", "geo"}, photo.URLFields()...)
}

// SearchURL builds the flickr.photos.search request URL
func SearchURL(endpoint, apiKey string, q SearchQuery) string {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	} else if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	page := q.Page
	if page < 1 {
		page = 1
	}

	extras := q.Extras
	if len(extras) == 0 {
		extras = DefaultExtras()
	}

	params := url.Values{}
	params.Set("method", SearchMethod)
	params.Set("api_key", apiKey)
	params.Set("min_taken_date", fmt.Sprintf("%d-01-01", q.Year))
	params.Set("max_taken_date", fmt.Sprintf("%d-12-31", q.Year))
	params.Set("has_geo", "1")
	params.Set("extras", strings.Join(extras, ","))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("format", "json")
	params.Set("nojsoncallback", "1")

	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + params.Encode()
}
