package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a classified failure that has no more specific type
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error (code %d): %s: %v", e.Type, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// MissingFieldError is returned when a record carries none of the accepted image URL fields.
type MissingFieldError struct {
	RecordID string
	Fields   []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %s: no image url found (checked %s)", e.RecordID, strings.Join(e.Fields, ", "))
}

// MalformedRecordError is returned when a required field is absent or cannot be parsed.
type MalformedRecordError struct {
	RecordID string
	Field    string
	Value    interface{}
	Err      error
}

func (e *MalformedRecordError) Error() string {
	id := e.RecordID
	if id == "" {
		id = "<unknown>"
	}
	if e.Value == nil {
		return fmt.Sprintf("record %s: field %q missing", id, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("record %s: field %q has invalid value %v: %v", id, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("record %s: field %q has invalid value %v", id, e.Field, e.Value)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// FetchError is returned when a search page cannot be retrieved.
// StatusCode is zero when the request never produced a response.
type FetchError struct {
	Year       int
	Page       int
	StatusCode int
	APICode    int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.APICode != 0:
		return fmt.Sprintf("fetch year %d page %d: api error %d: %s", e.Year, e.Page, e.APICode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("fetch year %d page %d: %v", e.Year, e.Page, e.Err)
	default:
		return fmt.Sprintf("fetch year %d page %d: unexpected status %d", e.Year, e.Page, e.StatusCode)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// DownloadHTTPError is a non-recoverable image download failure.
type DownloadHTTPError struct {
	ID         int64
	URL        string
	StatusCode int
}

func (e *DownloadHTTPError) Error() string {
	return fmt.Sprintf("download photo %d: unexpected status %d from %s", e.ID, e.StatusCode, e.URL)
}

// SkippableDownloadError is a download refused with 403 or 429.
// The downloader drops the photo and continues.
type SkippableDownloadError struct {
	ID         int64
	URL        string
	StatusCode int
}

func (e *SkippableDownloadError) Error() string {
	return fmt.Sprintf("download photo %d: skipped after status %d", e.ID, e.StatusCode)
}

// IsSkippableStatus reports whether a download status means "skip this photo".
func IsSkippableStatus(statusCode int) bool {
	return statusCode == http.StatusForbidden || statusCode == http.StatusTooManyRequests
}

// IsSkippable reports whether err is a SkippableDownloadError.
func IsSkippable(err error) bool {
	var skip *SkippableDownloadError
	return stderrors.As(err, &skip)
}

// StatusType maps an HTTP status code onto an ErrorType
func StatusType(statusCode int) ErrorType {
	switch {
	case statusCode == 0:
		return ErrorTypeNetwork
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// TypeOf classifies any error produced by this module.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}

	var (
		typed     *Error
		missing   *MissingFieldError
		malformed *MalformedRecordError
		fetch     *FetchError
		download  *DownloadHTTPError
		skip      *SkippableDownloadError
	)

	switch {
	case stderrors.As(err, &missing), stderrors.As(err, &malformed):
		return ErrorTypeParsing
	case stderrors.As(err, &fetch):
		if fetch.APICode != 0 {
			// Flickr reports invalid keys as code 100
			if fetch.APICode == 100 {
				return ErrorTypeAuth
			}
			return ErrorTypeUnknown
		}
		if stderrors.As(err, &typed) {
			return typed.Type
		}
		return StatusType(fetch.StatusCode)
	case stderrors.As(err, &skip):
		return StatusType(skip.StatusCode)
	case stderrors.As(err, &download):
		return StatusType(download.StatusCode)
	case stderrors.As(err, &typed):
		return typed.Type
	default:
		return ErrorTypeUnknown
	}
}
