package flickr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "flickrscraper/pkg/errors"
	"flickrscraper/pkg/logger"
)

// Client talks to the Flickr REST API and image hosts
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	endpoint   string
	apiKey     string
	logger     logger.Logger
}

// NewClient creates a new Flickr API client
func NewClient(apiKey string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": "flickrscraper/1.0",
			"Accept":     "application/json, image/*;q=0.9, */*;q=0.5",
		},
		endpoint: BaseURL,
		apiKey:   apiKey,
		logger:   log,
	}
}

// SetEndpoint points search requests at another REST endpoint
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      redact(req),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("%s %s", req.Method, req.URL.Host),
			Err:     err,
		}
	}

	logger.LogRequest(c.logger, req.Method, redact(req), resp.StatusCode, duration)
	return resp, nil
}

// redact strips the API key from logged URLs
func redact(req *http.Request) string {
	u := *req.URL
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Search fetches one page of search results.
// Any non-200 status, or a 200 carrying "stat":"fail", is returned as *errors.FetchError.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*SearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, SearchURL(c.endpoint, c.apiKey, q), nil)
	if err != nil {
		return nil, &errs.FetchError{Year: q.Year, Page: q.Page, Err: err}
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, &errs.FetchError{Year: q.Year, Page: q.Page, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &errs.FetchError{Year: q.Year, Page: q.Page, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.FetchError{Year: q.Year, Page: q.Page, StatusCode: resp.StatusCode, Err: &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: "failed to read response body",
			Code:    resp.StatusCode,
			Err:     err,
		}}
	}

	var result SearchResponse
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse search response", map[string]interface{}{
			"year":         q.Year,
			"page":         q.Page,
			"body_preview": preview,
		})
		return nil, &errs.FetchError{Year: q.Year, Page: q.Page, StatusCode: resp.StatusCode, Err: &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "invalid search response",
			Code:    resp.StatusCode,
			Err:     err,
		}}
	}

	if !result.OK() {
		message := result.Message
		if message == "" {
			message = fmt.Sprintf("stat %q", result.Stat)
		}
		code := result.Code
		if code == 0 {
			code = -1
		}
		return nil, &errs.FetchError{Year: q.Year, Page: q.Page, StatusCode: resp.StatusCode, APICode: code, Message: message}
	}

	return &result, nil
}

// DownloadPhoto fetches the image bytes for one photo.
// 403 and 429 return *errors.SkippableDownloadError; any other non-200
// returns *errors.DownloadHTTPError.
func (c *Client) DownloadPhoto(ctx context.Context, id int64, photoURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("photo %d: invalid url: %w", id, err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, fmt.Errorf("photo %d: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case errs.IsSkippableStatus(resp.StatusCode):
		io.Copy(io.Discard, resp.Body)
		return nil, &errs.SkippableDownloadError{ID: id, URL: photoURL, StatusCode: resp.StatusCode}
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, &errs.DownloadHTTPError{ID: id, URL: photoURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read photo %d", id),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	return data, nil
}
