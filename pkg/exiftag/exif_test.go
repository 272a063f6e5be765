package exiftag

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWithoutExif(t *testing.T) {
	_, err := Read([]byte("definitely not a jpeg"))
	require.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.jpg"))
	require.Error(t, err)
}

func TestTagsSummary(t *testing.T) {
	tags := Tags{
		"DateTime":     "2015:06:02 08:00:00",
		"GPSLatitude":  "[48/1 51/1 30/1]",
		"GPSLongitude": "[2/1 17/1 40/1]",
		"Model":        "X100T",
	}

	taken, ok := tags.CaptureTime()
	require.True(t, ok)
	assert.Equal(t, "2015:06:02 08:00:00", taken)
	assert.True(t, tags.HasGPS())

	summary := tags.Summary()
	assert.Equal(t, 4, summary["exif_tags"])
	assert.Equal(t, true, summary["exif_has_gps"])
	assert.Equal(t, "X100T", summary["exif_camera"])

	tags["DateTimeOriginal"] = "2015:06:01 12:00:00"
	taken, _ = tags.CaptureTime()
	assert.Equal(t, "2015:06:01 12:00:00", taken)
}

func TestTagsWithoutGPS(t *testing.T) {
	tags := Tags{"GPSLatitude": "[1/1 0/1 0/1]"}
	assert.False(t, tags.HasGPS())

	_, ok := Tags{}.CaptureTime()
	assert.False(t, ok)
	assert.NotContains(t, Tags{}.Summary(), "exif_taken")
}
