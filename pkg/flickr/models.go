package flickr

import (
	"encoding/json"
)

// SearchResponse is the body of a flickr.photos.search call
type SearchResponse struct {
	Photos  PhotoPage `json:"photos"`
	Stat    string    `json:"stat"`
	Code    int       `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
}

// OK reports whether Flickr accepted the call
func (r *SearchResponse) OK() bool {
	return r.Stat == "ok"
}

// PhotoPage is one page of search results.
// Flickr has sent the counters both as numbers and as strings.
type PhotoPage struct {
	Page    json.Number      `json:"page"`
	Pages   json.Number      `json:"pages"`
	PerPage json.Number      `json:"perpage"`
	Total   json.Number      `json:"total"`
	Photo   []map[string]any `json:"photo"`
}

// PageCount returns the number of pages Flickr reports, or 0 if unknown
func (p PhotoPage) PageCount() int {
	return numberToInt(p.Pages)
}

// TotalCount returns the number of matching photos Flickr reports, or 0 if unknown
func (p PhotoPage) TotalCount() int {
	return numberToInt(p.Total)
}

func numberToInt(n json.Number) int {
	if n == "" {
		return 0
	}
	if v, err := n.Int64(); err == nil {
		return int(v)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return 0
}
