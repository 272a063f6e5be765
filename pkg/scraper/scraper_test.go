package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickrscraper/pkg/config"
	errs "flickrscraper/pkg/errors"
	"flickrscraper/pkg/flickr"
	"flickrscraper/pkg/logger"
	"flickrscraper/pkg/metadata"
	"flickrscraper/pkg/ui"
)

// mockFlickr serves the search API under /rest and images under /img/<id>.jpg.
// pageSizes[year] lists how many records each page returns; pages past the
// end are empty.
type mockFlickr struct {
	*httptest.Server
	mu            sync.Mutex
	pageSizes     map[int][]int
	reportedPages int
	searchStatus  map[int]int
	imageStatus   map[string]int
	searches      int
	downloads     int
	omitURL       bool
}

func newMockFlickr(t *testing.T) *mockFlickr {
	m := &mockFlickr{
		pageSizes:     make(map[int][]int),
		reportedPages: 100,
		searchStatus:  make(map[int]int),
		imageStatus:   make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/rest", m.search)
	mux.HandleFunc("/img/", m.image)
	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Close)
	return m
}

func (m *mockFlickr) search(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++

	q := r.URL.Query()
	year, _ := strconv.Atoi(strings.TrimSuffix(q.Get("min_taken_date"), "-01-01"))
	page, _ := strconv.Atoi(q.Get("page"))

	if status, ok := m.searchStatus[year]; ok {
		w.WriteHeader(status)
		return
	}

	sizes := m.pageSizes[year]
	photos := []map[string]any{}
	if page <= len(sizes) {
		offset := 0
		for _, n := range sizes[:page-1] {
			offset += n
		}
		for i := 0; i < sizes[page-1]; i++ {
			id := year*1000 + offset + i + 1
			rec := map[string]any{
				"id":        strconv.Itoa(id),
				"latitude":  "10.5",
				"longitude": -20.25,
				"datetaken": fmt.Sprintf("%d-06-01 12:00:00", year),
			}
			if !m.omitURL {
				rec["url_m"] = fmt.Sprintf("%s/img/%d.jpg", m.URL, id)
			}
			photos = append(photos, rec)
		}
	}

	json.NewEncoder(w).Encode(map[string]any{
		"photos": map[string]any{
			"page":    page,
			"pages":   m.reportedPages,
			"perpage": q.Get("per_page"),
			"total":   "5000",
			"photo":   photos,
		},
		"stat": "ok",
	})
}

func (m *mockFlickr) image(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads++

	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/img/"), ".jpg")
	if status, ok := m.imageStatus[id]; ok {
		w.WriteHeader(status)
		return
	}
	io.WriteString(w, "jpeg-"+id)
}

func (m *mockFlickr) counts() (searches, downloads int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searches, m.downloads
}

type nopProgress struct{}

func (nopProgress) Set(int) {}
func (nopProgress) Add(int) {}
func (nopProgress) Done()   {}

func newTestScraper(t *testing.T, m *mockFlickr) (*Scraper, *config.Config) {
	t.Helper()
	ui.SetOutput(io.Discard)
	t.Cleanup(func() { ui.SetOutput(nil) })

	cfg := config.DefaultConfig()
	cfg.Flickr.APIKey = "test-key"
	cfg.Flickr.Endpoint = m.URL + "/rest"
	cfg.Fetch.RequestsPerMinute = 10000
	cfg.Download.Delay = 0
	cfg.Output.BaseDirectory = t.TempDir()

	client := flickr.NewClient(cfg.Flickr.APIKey, 5*time.Second, logger.NewNopLogger())
	client.SetEndpoint(cfg.Flickr.Endpoint)

	s := NewWithClient(cfg, client, logger.NewNopLogger())
	s.newProgress = func(string, int) ProgressReporter { return nopProgress{} }
	return s, cfg
}

func TestFetchYearPaginatesAndTruncates(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2015] = []int{3, 3, 3, 3, 3}
	s, _ := newTestScraper(t, m)

	records, err := s.FetchYear(context.Background(), 2015, 10, 250)
	require.NoError(t, err)

	assert.Len(t, records, 10)
	searches, _ := m.counts()
	assert.Equal(t, 4, searches)
	assert.Equal(t, int64(2015001), records[0].ID)
	assert.Equal(t, int64(2015010), records[9].ID)
	assert.Equal(t, 2015, records[0].Year)
	assert.InDelta(t, -20.25, records[0].Longitude, 1e-9)
}

func TestFetchYearStopsOnEmptyPage(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2015] = []int{3}
	s, _ := newTestScraper(t, m)

	records, err := s.FetchYear(context.Background(), 2015, 10, 250)
	require.NoError(t, err)

	assert.Len(t, records, 3)
	searches, _ := m.counts()
	assert.Equal(t, 2, searches)
}

func TestFetchYearStopsAtReportedPages(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2015] = []int{3, 3, 3, 3}
	m.reportedPages = 2
	s, _ := newTestScraper(t, m)

	records, err := s.FetchYear(context.Background(), 2015, 10, 250)
	require.NoError(t, err)

	assert.Len(t, records, 6)
	searches, _ := m.counts()
	assert.Equal(t, 2, searches)
}

func TestFetchYearExactMultiple(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2015] = []int{5, 5, 5}
	s, _ := newTestScraper(t, m)

	records, err := s.FetchYear(context.Background(), 2015, 10, 5)
	require.NoError(t, err)

	assert.Len(t, records, 10)
	searches, _ := m.counts()
	assert.Equal(t, 2, searches)
}

func TestFetchYearNon200(t *testing.T) {
	m := newMockFlickr(t)
	m.searchStatus[2007] = http.StatusBadGateway
	s, _ := newTestScraper(t, m)

	_, err := s.FetchYear(context.Background(), 2007, 10, 250)

	var fe *errs.FetchError
	require.True(t, stderrors.As(err, &fe), "got %v", err)
	assert.Equal(t, 2007, fe.Year)
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)

	searches, _ := m.counts()
	assert.Equal(t, 1, searches)
}

func TestFetchYearParseFailureAborts(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2015] = []int{3}
	m.omitURL = true
	s, _ := newTestScraper(t, m)

	_, err := s.FetchYear(context.Background(), 2015, 10, 250)

	var missing *errs.MissingFieldError
	require.True(t, stderrors.As(err, &missing), "got %v", err)
	assert.Equal(t, "2015001", missing.RecordID)
}

func TestFetchYearRejectsNonPositiveTotal(t *testing.T) {
	m := newMockFlickr(t)
	s, _ := newTestScraper(t, m)

	_, err := s.FetchYear(context.Background(), 2015, 0, 250)
	require.Error(t, err)

	searches, _ := m.counts()
	assert.Equal(t, 0, searches)
}

func TestFetchYearRejectsPerPageOutOfRange(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2015] = []int{3}
	s, _ := newTestScraper(t, m)

	for _, perPage := range []int{0, -1, flickr.MaxPerPage + 1} {
		_, err := s.FetchYear(context.Background(), 2015, 10, perPage)
		assert.Error(t, err, "per page %d", perPage)
	}

	searches, _ := m.counts()
	assert.Equal(t, 0, searches)
}

func TestScrapeYear(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2015] = []int{2, 2, 2}
	m.imageStatus["2015003"] = http.StatusForbidden
	s, cfg := newTestScraper(t, m)
	cfg.Fetch.Total = 5

	result, err := s.ScrapeYear(context.Background(), 2015)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Fetched)
	assert.Equal(t, 4, result.Download.Downloaded)
	assert.Equal(t, 1, result.Download.Skipped)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, filepath.Join(cfg.Output.BaseDirectory, "2015"), result.Directory)

	data, err := os.ReadFile(filepath.Join(result.Directory, "2015001.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-2015001", string(data))

	rows, err := metadata.Read(result.MetadataPath)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.NotEqual(t, int64(2015003), row.ID)
		assert.Equal(t, 2015, row.Year)
	}
}

func TestScrapeYearReportsSkippedPhotos(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2015] = []int{3}
	m.imageStatus["2015002"] = http.StatusForbidden
	s, cfg := newTestScraper(t, m)
	cfg.Fetch.Total = 3

	tl := logger.NewTestLogger()
	s.logger = tl
	var out bytes.Buffer
	ui.SetOutput(&out)

	result, err := s.ScrapeYear(context.Background(), 2015)
	require.NoError(t, err)
	assert.Equal(t, []int64{2015002}, result.Download.SkippedIDs)

	var summary *logger.LogMessage
	for _, msg := range tl.GetMessagesByLevel("WARN") {
		if msg.Message == "Some photos were skipped" {
			msg := msg
			summary = &msg
		}
	}
	require.NotNil(t, summary, "no skip summary in:\n%s", tl.String())
	assert.Equal(t, 2015, summary.Fields["year"])
	assert.Equal(t, 1, summary.Fields["skipped"])
	assert.Equal(t, []int64{2015002}, summary.Fields["photo_ids"])

	assert.Contains(t, out.String(), "Skipped 1 photos")
}

func TestScrapeYearRerunSkipsExisting(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2015] = []int{3}
	s, cfg := newTestScraper(t, m)
	cfg.Fetch.Total = 3

	_, err := s.ScrapeYear(context.Background(), 2015)
	require.NoError(t, err)
	_, firstDownloads := m.counts()
	assert.Equal(t, 3, firstDownloads)

	result, err := s.ScrapeYear(context.Background(), 2015)
	require.NoError(t, err)

	_, downloads := m.counts()
	assert.Equal(t, firstDownloads, downloads)
	assert.Equal(t, 0, result.Download.Downloaded)
	assert.Equal(t, 3, result.Download.Existing)
	assert.Len(t, result.Download.Rows, 3)
}

func TestScrapeYearsStopsOnFirstFailure(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2001] = []int{1}
	m.searchStatus[2002] = http.StatusInternalServerError
	m.pageSizes[2003] = []int{1}
	s, cfg := newTestScraper(t, m)
	cfg.Fetch.Total = 1

	years, err := ParseYears("2001-2003")
	require.NoError(t, err)

	results, err := s.ScrapeYears(context.Background(), years)
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2001, results[0].Year)

	_, statErr := os.Stat(filepath.Join(cfg.Output.BaseDirectory, "2003"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestScrapeYearDownloadFailure(t *testing.T) {
	m := newMockFlickr(t)
	m.pageSizes[2015] = []int{3}
	m.imageStatus["2015002"] = http.StatusInternalServerError
	s, cfg := newTestScraper(t, m)
	cfg.Fetch.Total = 3

	_, err := s.ScrapeYear(context.Background(), 2015)

	var dl *errs.DownloadHTTPError
	require.True(t, stderrors.As(err, &dl), "got %v", err)
	assert.Equal(t, int64(2015002), dl.ID)

	_, downloads := m.counts()
	assert.Equal(t, 2, downloads)
}

func TestNewRequiresAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := New(cfg)
	require.Error(t, err)

	cfg.Flickr.APIKey = "k"
	s, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Output.BaseDirectory, "1999"), s.YearDirectory(1999))
}
