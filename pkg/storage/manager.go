package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Manager stores photos for one output directory as <id>.<extension>
type Manager struct {
	outputDir  string
	extension  string
	downloaded map[int64]bool
	mu         sync.RWMutex
}

// NewManager creates the output directory if needed and indexes the photos already in it
func NewManager(outputDir, extension string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir:  outputDir,
		extension:  strings.TrimPrefix(extension, "."),
		downloaded: make(map[int64]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles indexes files named <numeric id>.<extension>
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	suffix := "." + m.extension
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, suffix), 10, 64)
		if err != nil {
			continue
		}
		m.downloaded[id] = true
	}

	return nil
}

// PhotoPath returns the destination path for a photo id
func (m *Manager) PhotoPath(id int64) string {
	return filepath.Join(m.outputDir, strconv.FormatInt(id, 10)+"."+m.extension)
}

// IsDownloaded reports whether the photo file exists on disk
func (m *Manager) IsDownloaded(id int64) bool {
	m.mu.RLock()
	cached := m.downloaded[id]
	m.mu.RUnlock()
	if cached {
		return true
	}

	// files may appear after the initial scan
	if _, err := os.Stat(m.PhotoPath(id)); err != nil {
		return false
	}

	m.mu.Lock()
	m.downloaded[id] = true
	m.mu.Unlock()
	return true
}

// SavePhoto writes r to the photo's path through a temporary file and an atomic rename
func (m *Manager) SavePhoto(r io.Reader, id int64) error {
	filename := m.PhotoPath(id)
	tempFile := filename + ".tmp"

	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to save photo data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.downloaded[id] = true
	m.mu.Unlock()

	return nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// DownloadedCount returns the number of photos known to be on disk
func (m *Manager) DownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.downloaded)
}
