package metadata

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickrscraper/pkg/photo"
)

func TestWriteReadRoundTrip(t *testing.T) {
	rows := []Row{
		{ID: 1, Latitude: 48.85837, Longitude: 2.294481, URL: "https://live.staticflickr.com/1/1_m.jpg", Year: 2015},
		{ID: 53012345678, Latitude: -33.8568, Longitude: 151.2153, URL: "https://x/y,z.jpg", Year: 2001},
		{ID: 3, Latitude: 0, Longitude: -0.000001, URL: "https://x/3.jpg", Year: 2021},
	}

	path := filepath.Join(t.TempDir(), "2015", "metadata.csv")
	require.NoError(t, Write(path, rows))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteToHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, nil))
	assert.Equal(t, "id,latitude,longitude,url,year\n", buf.String())
}

func TestWriteEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.csv")
	require.NoError(t, Write(path, nil))

	rows, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRejectsWrongHeader(t *testing.T) {
	_, err := ReadFrom(strings.NewReader("id,lat,lon,url,year\n1,2,3,u,2000\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected column")
}

func TestReadRejectsBadRow(t *testing.T) {
	_, err := ReadFrom(strings.NewReader("id,latitude,longitude,url,year\n1,north,3,u,2000\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid latitude")
}

func TestFromRecord(t *testing.T) {
	rec := &photo.Record{ID: 5, Latitude: 1.5, Longitude: 2.5, URL: "u", Year: 2010}
	assert.Equal(t, Row{ID: 5, Latitude: 1.5, Longitude: 2.5, URL: "u", Year: 2010}, FromRecord(rec))
}
