package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-map/models"
)

func TestPrinterRendersSelectedItems(t *testing.T) {
	items := []*models.ListingItem{
		{
			ID: "1", Name: "Brownstone", Address: "57 Lenox Ave, NYC",
			ParsedAddress: "57 Lenox Avenue, New York", NhoodCity: "Harlem, New York",
			Columns: []models.DisplayColumn{
				{Title: "Beds", Text: "3"},
				{Title: "Photos", Text: "https://x/1.jpg", Hidden: true},
				{Title: "Notes", Text: `<script>alert(1)</script>Fixer & upper`},
			},
		},
		{ID: "2", Name: "Lot", Address: "Unknown Rd"},
	}

	out, err := NewPrinter().Render(items, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "<title>Selected Properties</title>")
	assert.Contains(t, doc, "Selected Properties Report")
	assert.Contains(t, doc, "Generated 3/7/2026")
	assert.Contains(t, doc, "page-break-inside: avoid")
	assert.Equal(t, 2, strings.Count(doc, `<div class="property">`))
	assert.Contains(t, doc, "57 Lenox Avenue, New York")
	assert.Contains(t, doc, "Unknown Rd", "falls back to raw address")
	assert.Contains(t, doc, "<strong>Beds:</strong> 3")
	assert.NotContains(t, doc, "Photos", "file columns are hidden")
	assert.NotContains(t, doc, "<script>")
	assert.Contains(t, doc, "Fixer &amp; upper")
	assert.Equal(t, 1, strings.Count(doc, "Harlem, New York"), "neighborhood only printed when present")
}

func TestPrinterEmptySelection(t *testing.T) {
	_, err := NewPrinter().Render(nil, time.Now())
	assert.True(t, errors.Is(err, ErrEmptySelection))
}
