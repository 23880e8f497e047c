package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"listing-map/models"
)

// CSVWriter exports loaded listings to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"id", "board_id", "name", "address", "parsed_address", "nhood_city",
		"lat", "lng", "status_color", "images", "drive_link",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per listing. Unplotted listings get empty coordinates.
func (c *CSVWriter) Write(items []*models.ListingItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range items {
		lat, lng := "", ""
		if l.Coordinates != nil {
			lat = fmt.Sprintf("%g", l.Coordinates.Lat)
			lng = fmt.Sprintf("%g", l.Coordinates.Lng)
		}
		row := []string{
			l.ID,
			l.BoardID,
			l.Name,
			l.Address,
			l.ParsedAddress,
			l.NhoodCity,
			lat,
			lng,
			l.StatusColor,
			strings.Join(l.ImageURLs, " "),
			l.DriveLinkURL,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
