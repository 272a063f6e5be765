package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nil)
		SetQuietMode(false)
	})
	return &buf
}

func TestPrintFunctions(t *testing.T) {
	buf := capture(t)

	PrintInfo("Fetched images", "10")
	PrintWarning("Skipped", 2)
	PrintSuccess("done")

	out := buf.String()
	assert.Contains(t, out, "Fetched images")
	assert.Contains(t, out, "10")
	assert.Contains(t, out, "Skipped: 2")
	assert.Contains(t, out, "done")
}

func TestQuietModeKeepsErrors(t *testing.T) {
	buf := capture(t)
	SetQuietMode(true)
	assert.True(t, IsQuietMode())

	PrintInfo("hidden", "value")
	PrintHighlight("hidden")
	PrintError("failed", "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "failed: boom")
}

func TestProgress(t *testing.T) {
	buf := capture(t)

	p := NewProgress("Downloading Images", 4)
	p.Add(1)
	p.Add(1)
	assert.Equal(t, 2, p.Current())
	assert.True(t, strings.HasPrefix(p.String(), "["))
	assert.Contains(t, p.String(), "2/4 Downloading Images")

	p.Set(10)
	assert.Equal(t, 4, p.Current())
	assert.Contains(t, p.String(), strings.Repeat(ProgressBar, barWidth))

	p.Done()
	p.Done()
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestProgressZeroTotal(t *testing.T) {
	capture(t)

	p := NewProgress("Fetching", 0)
	p.Add(3)
	assert.Equal(t, 3, p.Current())
	assert.Contains(t, p.String(), strings.Repeat(ProgressEmpty, barWidth))
}
