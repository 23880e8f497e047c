package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"listing-map/models"
)

func TestCSVWriterWritesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "listings.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	items := []*models.ListingItem{
		{
			ID: "1", Name: "Brownstone", Address: "57 Lenox Ave, NYC",
			Coordinates: &models.Coordinates{Lat: 40.8, Lng: -73.94},
			NhoodCity:   "Harlem, New York",
			ImageURLs:   []string{"https://a/1.jpg", "https://a/2.jpg"},
		},
		{ID: "2", Name: "No address"},
	}
	if err := w.Write(items); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3 (header + 2)", len(rows))
	}
	if rows[1][6] != "40.8" || rows[1][7] != "-73.94" {
		t.Errorf("coordinates: got %q,%q", rows[1][6], rows[1][7])
	}
	if rows[1][9] != "https://a/1.jpg https://a/2.jpg" {
		t.Errorf("images: got %q", rows[1][9])
	}
	if rows[2][6] != "" || rows[2][7] != "" {
		t.Errorf("unplotted row should have empty coordinates, got %q,%q", rows[2][6], rows[2][7])
	}
}
