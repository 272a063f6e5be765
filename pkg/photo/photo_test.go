package photo

import (
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "flickrscraper/pkg/errors"
)

func baseRecord() map[string]any {
	return map[string]any{
		"id":        "53012345678",
		"latitude":  "48.858370",
		"longitude": "2.294481",
		"datetaken": "2015-06-01 12:00:00",
	}
}

func TestParsePrefersPrimaryURL(t *testing.T) {
	raw := baseRecord()
	raw["url_m"] = "http://a/m.jpg"
	raw["url_o"] = "http://a/o.jpg"

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "http://a/m.jpg", rec.URL)
	assert.Equal(t, int64(53012345678), rec.ID)
	assert.InDelta(t, 48.85837, rec.Latitude, 1e-9)
	assert.InDelta(t, 2.294481, rec.Longitude, 1e-9)
	assert.Equal(t, 2015, rec.Year)
}

func TestParseSingleAlternate(t *testing.T) {
	raw := baseRecord()
	raw["url_s"] = "http://a/s.jpg"

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "http://a/s.jpg", rec.URL)
}

func TestParseAlternateOrder(t *testing.T) {
	raw := baseRecord()
	raw["url_6k"] = "http://a/6k.jpg"
	raw["url_z"] = "http://a/z.jpg"
	raw["url_t"] = "http://a/t.jpg"

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "http://a/z.jpg", rec.URL)
}

func TestParseEmptyPrimaryURLIsMissing(t *testing.T) {
	raw := baseRecord()
	raw["url_m"] = ""
	raw["url_o"] = "http://a/o.jpg"

	rec, err := Parse(raw)
	assert.Nil(t, rec)

	var missing *errs.MissingFieldError
	require.True(t, stderrors.As(err, &missing), "got %v", err)
	assert.Equal(t, "53012345678", missing.RecordID)
}

func TestParseEmptyAlternateURLIsMissing(t *testing.T) {
	raw := baseRecord()
	raw["url_o"] = " "
	raw["url_n"] = "http://a/n.jpg"

	_, err := Parse(raw)

	var missing *errs.MissingFieldError
	require.True(t, stderrors.As(err, &missing), "got %v", err)
}

func TestParseMissingURL(t *testing.T) {
	raw := baseRecord()

	rec, err := Parse(raw)
	assert.Nil(t, rec)

	var missing *errs.MissingFieldError
	require.True(t, stderrors.As(err, &missing))
	assert.Equal(t, "53012345678", missing.RecordID)
	assert.Equal(t, PrimaryURLField, missing.Fields[0])
	assert.Len(t, missing.Fields, len(DefaultAlternateURLFields)+1)
}

func TestParseYearFromISOTimestamp(t *testing.T) {
	raw := baseRecord()
	raw["url_m"] = "http://a/m.jpg"
	raw["datetaken"] = "2015-06-01T12:00:00"

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 2015, rec.Year)
}

func TestParseDateLayouts(t *testing.T) {
	for _, value := range []string{
		"2009-12-31 23:59:59",
		"2009-12-31T23:59:59",
		"2009-12-31T23:59:59Z",
		"2009-12-31",
	} {
		raw := baseRecord()
		raw["url_m"] = "http://a/m.jpg"
		raw["datetaken"] = value

		rec, err := Parse(raw)
		require.NoError(t, err, value)
		assert.Equal(t, 2009, rec.Year, value)
	}
}

func TestParseNumericTypes(t *testing.T) {
	raw := map[string]any{
		"id":        json.Number("12"),
		"latitude":  json.Number("-33.8568"),
		"longitude": 151.2153,
		"datetaken": "2020-01-01 00:00:00",
		"url_m":     "http://a/m.jpg",
	}

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(12), rec.ID)
	assert.InDelta(t, -33.8568, rec.Latitude, 1e-9)
	assert.InDelta(t, 151.2153, rec.Longitude, 1e-9)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(map[string]any)
		field string
	}{
		{"missing id", func(r map[string]any) { delete(r, "id") }, "id"},
		{"non numeric id", func(r map[string]any) { r["id"] = "abc" }, "id"},
		{"missing latitude", func(r map[string]any) { delete(r, "latitude") }, "latitude"},
		{"non numeric longitude", func(r map[string]any) { r["longitude"] = "east" }, "longitude"},
		{"missing datetaken", func(r map[string]any) { delete(r, "datetaken") }, "datetaken"},
		{"bad datetaken", func(r map[string]any) { r["datetaken"] = "yesterday" }, "datetaken"},
		{"datetaken wrong type", func(r map[string]any) { r["datetaken"] = 2015 }, "datetaken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := baseRecord()
			raw["url_m"] = "http://a/m.jpg"
			tt.edit(raw)

			_, err := Parse(raw)
			var malformed *errs.MalformedRecordError
			require.True(t, stderrors.As(err, &malformed), "got %v", err)
			assert.Equal(t, tt.field, malformed.Field)
		})
	}
}

func TestCustomParser(t *testing.T) {
	p := NewParser("url_o", []string{"url_m"})
	raw := baseRecord()
	raw["url_m"] = "http://a/m.jpg"
	raw["url_o"] = "http://a/o.jpg"

	rec, err := p.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "http://a/o.jpg", rec.URL)
	assert.Equal(t, []string{"url_o", "url_m"}, p.URLFields())
}

func TestRecordFilename(t *testing.T) {
	rec := &Record{ID: 99}
	assert.Equal(t, "99.jpg", rec.Filename("jpg"))
	assert.Equal(t, "99.jpg", rec.Filename(".jpg"))
}

func TestURLFieldsAreFlickrSizes(t *testing.T) {
	for _, f := range URLFields() {
		assert.True(t, strings.HasPrefix(f, "url_"), f)
	}
}
