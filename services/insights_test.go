package services

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"listing-map/models"
)

func insightItems() []*models.ListingItem {
	items := sampleItems()
	items[0].StatusColor = "#00c875"
	items[0].ThumbnailURL = "https://files.example/1.jpg"
	items[0].ImageURLs = []string{"https://files.example/1.jpg", "https://files.example/2.jpg"}
	items[1].StatusColor = "#00c875"
	return items
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(insightItems())
	if r.TotalItems != 4 {
		t.Errorf("TotalItems: got %d, want 4", r.TotalItems)
	}
	if r.PlottedItems != 3 {
		t.Errorf("PlottedItems: got %d, want 3", r.PlottedItems)
	}
	if len(r.UnplottedItems) != 1 || r.UnplottedItems[0].ID != "4" {
		t.Errorf("UnplottedItems: got %v", r.UnplottedItems)
	}
}

func TestInsightImages(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(insightItems())
	if r.ImageCount != 2 {
		t.Errorf("ImageCount: got %d, want 2", r.ImageCount)
	}
	if r.ItemsWithoutPhoto != 3 {
		t.Errorf("ItemsWithoutPhoto: got %d, want 3", r.ItemsWithoutPhoto)
	}
}

func TestInsightGrouping(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(insightItems())
	if r.ItemsByNhood["Harlem, New York"] != 2 {
		t.Errorf("Harlem count: got %d, want 2", r.ItemsByNhood["Harlem, New York"])
	}
	if _, ok := r.ItemsByNhood[""]; ok {
		t.Error("items without a neighborhood must not be grouped")
	}
	if r.ItemsByStatus["#00c875"] != 2 || r.ItemsByStatus[DefaultMarkerColor] != 2 {
		t.Errorf("ItemsByStatus: got %v", r.ItemsByStatus)
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalItems != 0 || r.PlottedItems != 0 {
		t.Errorf("expected zero counts, got %+v", r)
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(insightItems()))

	out := buf.String()
	for _, want := range []string{"LISTING MAP SUMMARY", "Not on the map", "(no address)", "Harlem, New York", "(2)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Harlem", 10, "Harlem"},
		{"Niño Heights, Ciudad", 8, "Niño ..."},
		{"ñññññññ", 7, "ñññññññ"},
		{"ññññññññ", 7, "ññññ..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q; want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
		}
	}
}
