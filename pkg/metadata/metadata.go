package metadata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"flickrscraper/pkg/photo"
)

// Header is the first line of every metadata table.
var Header = []string{"id", "latitude", "longitude", "url", "year"}

// Row is one line of the metadata table.
type Row struct {
	ID        int64
	Latitude  float64
	Longitude float64
	URL       string
	Year      int
}

// FromRecord projects a parsed photo onto a table row.
func FromRecord(r *photo.Record) Row {
	return Row{
		ID:        r.ID,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		URL:       r.URL,
		Year:      r.Year,
	}
}

func (r Row) fields() []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		r.URL,
		strconv.Itoa(r.Year),
	}
}

// WriteTo writes the header followed by rows as CSV.
func WriteTo(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.fields()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write saves rows to path, replacing any previous table.
// The file is written to a temporary name first and renamed into place.
func Write(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := WriteTo(file, rows); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename metadata file: %w", err)
	}

	return nil
}

// ReadFrom parses a table produced by WriteTo.
func ReadFrom(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, name := range Header {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, header[i], name)
		}
	}

	var rows []Row
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		row, err := parseRow(fields)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Read loads the table stored at path.
func Read(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer file.Close()

	return ReadFrom(file)
}

func parseRow(fields []string) (Row, error) {
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid id %q: %w", fields[0], err)
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Row{}, fmt.Errorf("row %d: invalid latitude %q: %w", id, fields[1], err)
	}
	lon, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Row{}, fmt.Errorf("row %d: invalid longitude %q: %w", id, fields[2], err)
	}
	year, err := strconv.Atoi(fields[4])
	if err != nil {
		return Row{}, fmt.Errorf("row %d: invalid year %q: %w", id, fields[4], err)
	}

	return Row{ID: id, Latitude: lat, Longitude: lon, URL: fields[3], Year: year}, nil
}
