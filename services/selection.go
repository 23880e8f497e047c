package services

import (
	"listing-map/models"
	"listing-map/utils"
)

// SelectionSet is the user's chosen items, in the order they were picked.
type SelectionSet struct {
	ids *utils.OrderedSet
}

// NewSelectionSet creates an empty selection.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{ids: utils.NewOrderedSet()}
}

// Set selects or unselects id.
func (s *SelectionSet) Set(id string, selected bool) {
	if selected {
		s.ids.Add(id)
	} else {
		s.ids.Remove(id)
	}
}

// Has reports whether id is selected.
func (s *SelectionSet) Has(id string) bool {
	return s.ids.Contains(id)
}

// Len returns the number of selected items.
func (s *SelectionSet) Len() int {
	return s.ids.Size()
}

// IDs returns the selected ids in the order they were picked.
func (s *SelectionSet) IDs() []string {
	return s.ids.Values()
}

// Clear unselects everything.
func (s *SelectionSet) Clear() {
	s.ids.Clear()
}

// ToggleAll clears a non-empty selection, otherwise selects every visible item.
func (s *SelectionSet) ToggleAll(visible []*models.ListingItem) {
	if s.ids.Size() > 0 {
		s.ids.Clear()
		return
	}
	for _, it := range visible {
		s.ids.Add(it.ID)
	}
}

// Resolve maps the selection onto loaded items in selection order, skipping
// ids that are no longer loaded.
func (s *SelectionSet) Resolve(items []*models.ListingItem) []*models.ListingItem {
	byID := make(map[string]*models.ListingItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	var out []*models.ListingItem
	for _, id := range s.ids.Values() {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

// SelectedCoordinates returns the coordinates of selected, plotted items in order.
func SelectedCoordinates(selected []*models.ListingItem) []models.Coordinates {
	out := make([]models.Coordinates, 0, len(selected))
	for _, it := range selected {
		if it.Coordinates != nil {
			out = append(out, *it.Coordinates)
		}
	}
	return out
}
