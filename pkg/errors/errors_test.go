package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "missing url",
			err:      &MissingFieldError{RecordID: "42", Fields: []string{"url_m", "url_o"}},
			contains: []string{"record 42", "url_m, url_o"},
		},
		{
			name:     "missing field",
			err:      &MalformedRecordError{RecordID: "42", Field: "latitude"},
			contains: []string{"record 42", `"latitude" missing`},
		},
		{
			name:     "invalid value",
			err:      &MalformedRecordError{Field: "id", Value: "abc", Err: fmt.Errorf("not a number")},
			contains: []string{"<unknown>", "abc", "not a number"},
		},
		{
			name:     "fetch status",
			err:      &FetchError{Year: 2015, Page: 3, StatusCode: 502},
			contains: []string{"year 2015", "page 3", "502"},
		},
		{
			name:     "fetch api failure",
			err:      &FetchError{Year: 2015, Page: 1, StatusCode: 200, APICode: 100, Message: "Invalid API Key"},
			contains: []string{"api error 100", "Invalid API Key"},
		},
		{
			name:     "download",
			err:      &DownloadHTTPError{ID: 7, URL: "http://x/7.jpg", StatusCode: 500},
			contains: []string{"photo 7", "500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.Contains(t, tt.err.Error(), s)
			}
		})
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("year 2015: %w", &DownloadHTTPError{ID: 9, StatusCode: 500})

	var dl *DownloadHTTPError
	require.True(t, stderrors.As(wrapped, &dl))
	assert.Equal(t, int64(9), dl.ID)

	cause := stderrors.New("connection reset")
	fe := &FetchError{Year: 2001, Page: 1, Err: cause}
	assert.True(t, stderrors.Is(fmt.Errorf("outer: %w", fe), cause))
}

func TestIsSkippable(t *testing.T) {
	assert.True(t, IsSkippableStatus(403))
	assert.True(t, IsSkippableStatus(429))
	assert.False(t, IsSkippableStatus(404))
	assert.False(t, IsSkippableStatus(500))

	assert.True(t, IsSkippable(fmt.Errorf("wrap: %w", &SkippableDownloadError{ID: 1, StatusCode: 403})))
	assert.False(t, IsSkippable(&DownloadHTTPError{ID: 1, StatusCode: 500}))
	assert.False(t, IsSkippable(nil))
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorType
	}{
		{nil, ""},
		{&MissingFieldError{RecordID: "1"}, ErrorTypeParsing},
		{&MalformedRecordError{Field: "id"}, ErrorTypeParsing},
		{&FetchError{StatusCode: 503}, ErrorTypeServerError},
		{&FetchError{StatusCode: 429}, ErrorTypeRateLimit},
		{&FetchError{StatusCode: 200, APICode: 100}, ErrorTypeAuth},
		{&FetchError{Err: &Error{Type: ErrorTypeNetwork}}, ErrorTypeNetwork},
		{&DownloadHTTPError{StatusCode: 404}, ErrorTypeNotFound},
		{&SkippableDownloadError{StatusCode: 403}, ErrorTypeAuth},
		{&Error{Type: ErrorTypeNetwork}, ErrorTypeNetwork},
		{stderrors.New("plain"), ErrorTypeUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeOf(tt.err), "%v", tt.err)
	}
}
