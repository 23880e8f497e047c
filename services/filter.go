package services

import (
	"sort"

	"listing-map/models"
)

// Board selection sentinels.
const (
	BoardCurrent = "current"
	BoardAll     = "all"
)

// FilterState is the user's current board and neighborhood selection.
type FilterState struct {
	Boards        []string `json:"boards"`
	Neighborhoods []string `json:"neighborhoods"`
}

// DefaultFilters selects the current board with no neighborhood filter.
func DefaultFilters() FilterState {
	return FilterState{Boards: []string{BoardCurrent}, Neighborhoods: []string{}}
}

// Visible returns the items whose neighborhood label is in nhoods, or every
// item when nhoods is empty.
func Visible(items []*models.ListingItem, nhoods []string) []*models.ListingItem {
	if len(nhoods) == 0 {
		return items
	}
	want := make(map[string]struct{}, len(nhoods))
	for _, n := range nhoods {
		want[n] = struct{}{}
	}
	out := make([]*models.ListingItem, 0, len(items))
	for _, it := range items {
		if _, ok := want[it.NhoodCity]; ok {
			out = append(out, it)
		}
	}
	return out
}

// Neighborhoods lists the distinct non-empty labels in items, sorted.
func Neighborhoods(items []*models.ListingItem) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		if it.NhoodCity == "" {
			continue
		}
		if _, dup := seen[it.NhoodCity]; dup {
			continue
		}
		seen[it.NhoodCity] = struct{}{}
		out = append(out, it.NhoodCity)
	}
	sort.Strings(out)
	return out
}

// BoardOption is one entry of the board selector.
type BoardOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// BoardOptions builds the selector: current board, every catalog board, all boards.
func BoardOptions(catalog []models.BoardRef) []BoardOption {
	opts := make([]BoardOption, 0, len(catalog)+2)
	opts = append(opts, BoardOption{Value: BoardCurrent, Label: "Current Board"})
	for _, b := range catalog {
		opts = append(opts, BoardOption{Value: b.ID, Label: b.Name})
	}
	return append(opts, BoardOption{Value: BoardAll, Label: "All Boards"})
}
