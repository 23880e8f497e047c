package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"listing-map/models"
	"listing-map/source"
	"listing-map/utils"
)

// ErrUnknownItem is returned when an id is not among the loaded items.
var ErrUnknownItem = errors.New("unknown item")

// Dashboard owns the loaded listings and every piece of user state around them.
// A reload is not cancelled by a newer one; whichever finishes last wins.
type Dashboard struct {
	source     source.DataSource
	normalizer *Normalizer
	geocoder   *GeocodeService
	listener   *ContextListener
	logger     *utils.Logger

	mu        sync.RWMutex
	catalog   []models.BoardRef
	items     []*models.ListingItem
	filters   FilterState
	selection *SelectionSet
	markers   []Marker
	loading   bool
	lastErr   error
	loadedAt  time.Time
}

// NewDashboard wires the pipeline stages together.
func NewDashboard(src source.DataSource, geocoder *GeocodeService, listener *ContextListener, logger *utils.Logger) *Dashboard {
	return &Dashboard{
		source:     src,
		normalizer: NewNormalizer(logger),
		geocoder:   geocoder,
		listener:   listener,
		logger:     logger,
		filters:    DefaultFilters(),
		selection:  NewSelectionSet(),
		markers:    []Marker{},
	}
}

// Run loads once, then reloads on every context change until ctx ends.
func (d *Dashboard) Run(ctx context.Context) {
	changes := d.listener.Subscribe()
	if err := d.Reload(ctx); err != nil {
		d.logger.Error("[dashboard] Initial load failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case boardID := <-changes:
			d.logger.Info("[dashboard] Context changed, current board %q", boardID)
			if err := d.Reload(ctx); err != nil {
				d.logger.Error("[dashboard] Reload failed: %v", err)
			}
		}
	}
}

// Reload fetches, normalizes and geocodes the selected boards, then swaps the
// result in. If the fetch fails or ctx ends during geocoding, the previous
// items stay and Loading stays true.
func (d *Dashboard) Reload(ctx context.Context) error {
	d.mu.Lock()
	selection := slices.Clone(d.filters.Boards)
	catalog := d.catalog
	d.loading = true
	d.mu.Unlock()

	current := d.listener.Current()
	start := time.Now()

	var boards []models.RawBoard
	var err error
	if slices.Contains(selection, BoardAll) {
		catalog, err = d.source.Boards(ctx)
		if err == nil {
			boards, err = d.source.Items(ctx, ResolveBoardIDs(selection, current, catalog))
		}
	} else {
		catalog, boards, err = d.fetchConcurrently(ctx, selection, current, catalog)
	}
	if err != nil {
		d.mu.Lock()
		d.lastErr = err
		d.mu.Unlock()
		return fmt.Errorf("dashboard: load boards %v: %w", selection, err)
	}

	items := d.normalizer.Normalize(boards)
	if err := d.geocoder.GeocodeAll(ctx, items); err != nil {
		d.mu.Lock()
		d.lastErr = err
		d.mu.Unlock()
		return fmt.Errorf("dashboard: geocode boards %v: %w", selection, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.catalog = catalog
	d.items = items
	d.markers = PlotMarkers(Visible(items, d.filters.Neighborhoods))
	d.loading = false
	d.lastErr = nil
	d.loadedAt = time.Now()

	d.logger.Info("[dashboard] Loaded %d items (%d on map) in %v",
		len(items), len(d.markers), time.Since(start).Round(time.Millisecond))
	return nil
}

// fetchConcurrently loads the catalog and the items side by side. A catalog
// failure keeps the previous catalog; an item failure fails the load.
func (d *Dashboard) fetchConcurrently(ctx context.Context, selection []string, current string, prev []models.BoardRef) ([]models.BoardRef, []models.RawBoard, error) {
	catalog := prev
	var boards []models.RawBoard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := d.source.Boards(gctx)
		if err != nil {
			d.logger.Warn("[dashboard] Board catalog unavailable: %v", err)
			return nil
		}
		catalog = c
		return nil
	})
	g.Go(func() error {
		b, err := d.source.Items(gctx, ResolveBoardIDs(selection, current, nil))
		if err != nil {
			return err
		}
		boards = b
		return nil
	})

	if err := g.Wait(); err != nil {
		return prev, nil, err
	}
	return catalog, boards, nil
}

// ResolveBoardIDs expands a board selection into concrete ids, in order and
// without duplicates. Values that are not numeric ids are ignored.
func ResolveBoardIDs(selection []string, current string, catalog []models.BoardRef) []string {
	ids := utils.NewOrderedSet()
	for _, v := range selection {
		switch v {
		case BoardCurrent:
			if current != "" {
				ids.Add(current)
			}
		case BoardAll:
			for _, b := range catalog {
				ids.Add(b.ID)
			}
		default:
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				ids.Add(v)
			}
		}
	}
	return ids.Values()
}

// SetBoardFilter clears the selection and reloads with the new boards.
func (d *Dashboard) SetBoardFilter(ctx context.Context, boards []string) error {
	d.mu.Lock()
	d.selection.Clear()
	d.filters.Boards = slices.Clone(boards)
	d.mu.Unlock()

	return d.Reload(ctx)
}

// UseBoards replaces the board selection without reloading. The next Reload
// or Run picks it up.
func (d *Dashboard) UseBoards(boards []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters.Boards = slices.Clone(boards)
}

// SetNeighborhoodFilter narrows the visible items and replots the markers.
func (d *Dashboard) SetNeighborhoodFilter(nhoods []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.filters.Neighborhoods = slices.Clone(nhoods)
	if d.filters.Neighborhoods == nil {
		d.filters.Neighborhoods = []string{}
	}
	d.markers = PlotMarkers(Visible(d.items, d.filters.Neighborhoods))
}

// Items returns every loaded item.
func (d *Dashboard) Items() []*models.ListingItem {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.items
}

// Visible returns the items passing the neighborhood filter.
func (d *Dashboard) Visible() []*models.ListingItem {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Visible(d.items, d.filters.Neighborhoods)
}

// Item looks up a loaded item by id.
func (d *Dashboard) Item(id string) (*models.ListingItem, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, it := range d.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, ErrUnknownItem
}

// Markers returns the current marker set.
func (d *Dashboard) Markers() []Marker {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.markers
}

// FlyTo returns the camera command for a plotted item.
func (d *Dashboard) FlyTo(id string) (FlyTo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return FlyToMarker(d.markers, id)
}

// Select adds or removes a loaded item from the selection.
func (d *Dashboard) Select(id string, selected bool) error {
	if selected {
		if _, err := d.Item(id); err != nil {
			return err
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection.Set(id, selected)
	return nil
}

// ToggleAll selects every visible item, or clears a non-empty selection.
func (d *Dashboard) ToggleAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection.ToggleAll(Visible(d.items, d.filters.Neighborhoods))
}

// Selected returns the selected items in selection order.
func (d *Dashboard) Selected() []*models.ListingItem {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selection.Resolve(d.items)
}

// Route builds the directions URL through the selected items.
func (d *Dashboard) Route(target RouteTarget) (string, error) {
	selected := d.Selected()
	if len(selected) == 0 {
		return "", ErrEmptySelection
	}
	coords := SelectedCoordinates(selected)
	if len(coords) == 0 {
		return "", ErrNotPlotted
	}
	return RouteURL(coords, target)
}

// State is a read-only snapshot for clients.
type State struct {
	Filters       FilterState   `json:"filters"`
	BoardOptions  []BoardOption `json:"boardOptions"`
	Neighborhoods []string      `json:"neighborhoods"`
	Selected      []string      `json:"selected"`
	ItemCount     int           `json:"itemCount"`
	VisibleCount  int           `json:"visibleCount"`
	MarkerCount   int           `json:"markerCount"`
	Loading       bool          `json:"loading"`
	LoadedAt      time.Time     `json:"loadedAt"`
	Error         string        `json:"error,omitempty"`
}

// Snapshot captures the current dashboard state.
func (d *Dashboard) Snapshot() State {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := State{
		Filters: FilterState{
			Boards:        slices.Clone(d.filters.Boards),
			Neighborhoods: slices.Clone(d.filters.Neighborhoods),
		},
		BoardOptions:  BoardOptions(d.catalog),
		Neighborhoods: Neighborhoods(d.items),
		Selected:      d.selection.IDs(),
		ItemCount:     len(d.items),
		VisibleCount:  len(Visible(d.items, d.filters.Neighborhoods)),
		MarkerCount:   len(d.markers),
		Loading:       d.loading,
		LoadedAt:      d.loadedAt,
	}
	if d.lastErr != nil {
		s.Error = d.lastErr.Error()
	}
	return s
}

// Print renders the selected items as a printable report.
func (d *Dashboard) Print(p *Printer, now time.Time) ([]byte, error) {
	return p.Render(d.Selected(), now)
}
