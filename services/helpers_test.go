package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"listing-map/models"
	"listing-map/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

// stubSource serves boards from memory.
type stubSource struct {
	mu        sync.Mutex
	boards    []models.RawBoard
	itemsErr  error
	boardsErr error
	requested [][]string
}

func (s *stubSource) Boards(context.Context) ([]models.BoardRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boardsErr != nil {
		return nil, s.boardsErr
	}
	refs := make([]models.BoardRef, 0, len(s.boards))
	for _, b := range s.boards {
		refs = append(refs, models.BoardRef{ID: b.ID, Name: b.Name})
	}
	return refs, nil
}

func (s *stubSource) Items(_ context.Context, ids []string) ([]models.RawBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requested = append(s.requested, slices.Clone(ids))
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	var out []models.RawBoard
	for _, b := range s.boards {
		if slices.Contains(ids, b.ID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubSource) lastRequest() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requested) == 0 {
		return nil
	}
	return s.requested[len(s.requested)-1]
}

// stubLookup answers from a fixed table and counts calls.
type stubLookup struct {
	results map[string]*models.GeocodeResult
	err     error
	calls   atomic.Int64
}

func (l *stubLookup) Lookup(ctx context.Context, address string) (*models.GeocodeResult, error) {
	l.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.results[address], nil
}

// failingCache errors on every call.
type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) Get(context.Context, string) (*models.GeocodeCacheEntry, error) {
	return nil, errCacheDown
}
func (failingCache) Set(context.Context, models.GeocodeCacheEntry) error { return errCacheDown }
func (failingCache) Delete(context.Context, string) error              { return errCacheDown }
func (failingCache) Close() error                                      { return nil }

func harlem() *models.GeocodeResult {
	return &models.GeocodeResult{
		Coordinates: models.Coordinates{Lat: 40.8007, Lng: -73.9497},
		FullAddress: "57 Lenox Avenue, New York, New York 10026, United States",
		NhoodCity:   "Harlem, New York",
	}
}

func addressColumn(text string) models.RawColumnValue {
	return models.RawColumnValue{ID: "text_addr", Text: text, Column: models.ColumnMeta{Title: "Address"}}
}

func statusColumn(settings, value string) models.RawColumnValue {
	return models.RawColumnValue{
		ID: "status", Text: "Active", Value: value,
		Column: models.ColumnMeta{Title: "Status", SettingsStr: settings},
	}
}

const statusSettingsJSON = `{"labels":{"0":"Draft","1":"Active"},"labels_colors":{"0":{"color":"#c4c4c4"},"1":{"color":"#00c875","border":"#00b461"}}}`
