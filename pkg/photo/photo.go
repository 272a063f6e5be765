// Package photo turns raw Flickr search records into validated photo records.
//
// A raw record is the decoded JSON object for one entry of photos.photo. The
// parser resolves the image URL by preference (url_m first, then the
// alternate sizes in DefaultAlternateURLFields order), converts the numeric
// fields and derives the capture year from datetaken.
package photo

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	errs "flickrscraper/pkg/errors"
)

// PrimaryURLField is the preferred size (medium, 500px on the longest side).
const PrimaryURLField = "url_m"

// DefaultAlternateURLFields lists the fallback URL fields in preference order.
var DefaultAlternateURLFields = []string{
	"url_o", "url_n", "url_w", "url_z", "url_c", "url_b", "url_h", "url_k",
	"url_t", "url_q", "url_s", "url_3k", "url_4k", "url_f", "url_5k", "url_6k",
}

// Accepted datetaken layouts, most common first.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Record is one parsed photo.
type Record struct {
	ID        int64
	Latitude  float64
	Longitude float64
	URL       string
	Year      int
}

// Filename returns the on-disk name for the photo, e.g. "123.jpg".
func (r *Record) Filename(extension string) string {
	return strconv.FormatInt(r.ID, 10) + "." + strings.TrimPrefix(extension, ".")
}

// Parser converts raw records using a fixed URL preference order.
type Parser struct {
	primary    string
	alternates []string
}

// NewParser creates a parser that tries primary first and then each alternate in order.
func NewParser(primary string, alternates []string) *Parser {
	alt := make([]string, len(alternates))
	copy(alt, alternates)
	return &Parser{primary: primary, alternates: alt}
}

// DefaultParser returns a parser using PrimaryURLField and DefaultAlternateURLFields.
func DefaultParser() *Parser {
	return NewParser(PrimaryURLField, DefaultAlternateURLFields)
}

var defaultParser = DefaultParser()

// Parse converts raw with the default URL preference order.
func Parse(raw map[string]any) (*Record, error) {
	return defaultParser.Parse(raw)
}

// URLFields returns the default URL fields, primary first.
func URLFields() []string {
	return defaultParser.URLFields()
}

// URLFields returns every URL field the parser inspects, primary first.
func (p *Parser) URLFields() []string {
	fields := make([]string, 0, len(p.alternates)+1)
	fields = append(fields, p.primary)
	return append(fields, p.alternates...)
}

// ResolveURL returns the value of the first URL field present in raw.
// Later fields are only consulted when earlier ones are absent, so a present
// but empty field resolves to no URL.
func (p *Parser) ResolveURL(raw map[string]any) (string, bool) {
	for _, field := range p.URLFields() {
		value, ok := raw[field]
		if !ok || value == nil {
			continue
		}
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	}
	return "", false
}

// Parse converts one raw record.
func (p *Parser) Parse(raw map[string]any) (*Record, error) {
	rawID, ok := raw["id"]
	if !ok || rawID == nil {
		return nil, &errs.MalformedRecordError{Field: "id"}
	}
	recordID := fmt.Sprint(rawID)

	id, err := parseInt(rawID)
	if err != nil {
		return nil, &errs.MalformedRecordError{RecordID: recordID, Field: "id", Value: rawID, Err: err}
	}

	lat, err := requireFloat(raw, recordID, "latitude")
	if err != nil {
		return nil, err
	}
	lon, err := requireFloat(raw, recordID, "longitude")
	if err != nil {
		return nil, err
	}

	url, ok := p.ResolveURL(raw)
	if !ok {
		return nil, &errs.MissingFieldError{RecordID: recordID, Fields: p.URLFields()}
	}

	rawDate, ok := raw["datetaken"]
	if !ok || rawDate == nil {
		return nil, &errs.MalformedRecordError{RecordID: recordID, Field: "datetaken"}
	}
	taken, err := parseDate(rawDate)
	if err != nil {
		return nil, &errs.MalformedRecordError{RecordID: recordID, Field: "datetaken", Value: rawDate, Err: err}
	}

	return &Record{
		ID:        id,
		Latitude:  lat,
		Longitude: lon,
		URL:       url,
		Year:      taken.Year(),
	}, nil
}

func requireFloat(raw map[string]any, recordID, field string) (float64, error) {
	value, ok := raw[field]
	if !ok || value == nil {
		return 0, &errs.MalformedRecordError{RecordID: recordID, Field: field}
	}
	f, err := parseFloat(value)
	if err != nil {
		return 0, &errs.MalformedRecordError{RecordID: recordID, Field: field, Value: value, Err: err}
	}
	return f, nil
}

func parseInt(value any) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func parseFloat(value any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch v := value.(type) {
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", value)
	}
	return f, nil
}

func parseDate(value any) (time.Time, error) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("unsupported type %T", value)
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}
