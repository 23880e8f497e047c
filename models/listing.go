package models

import (
	"strconv"
	"time"
)

// BoardRef identifies a board in the host platform. The catalog is replaced
// wholesale on every reload.
type BoardRef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// ColumnMeta is the column definition attached to every cell.
// SettingsStr is an opaque JSON document owned by the board API.
type ColumnMeta struct {
	Title       string `json:"title" yaml:"title"`
	SettingsStr string `json:"settings_str" yaml:"settings_str"`
}

// RawColumnValue is one cell exactly as the board API returns it.
// Value is an opaque JSON document; Text is its human-readable form.
type RawColumnValue struct {
	ID     string     `json:"id" yaml:"id"`
	Text   string     `json:"text" yaml:"text"`
	Value  string     `json:"value" yaml:"value"`
	Column ColumnMeta `json:"column" yaml:"column"`
}

// RawItem is an unprocessed item from a board.
type RawItem struct {
	ID           string           `json:"id" yaml:"id"`
	Name         string           `json:"name" yaml:"name"`
	ColumnValues []RawColumnValue `json:"column_values" yaml:"column_values"`
}

// RawBoard is a board with its first page of items.
type RawBoard struct {
	ID    string    `json:"id" yaml:"id"`
	Name  string    `json:"name" yaml:"name"`
	Items []RawItem `json:"items" yaml:"items"`
}

// Coordinates is a WGS 84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the point as "lat,lng", the form routing URLs expect.
func (c Coordinates) String() string {
	return formatCoord(c.Lat) + "," + formatCoord(c.Lng)
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// DisplayColumn is a cell prepared for the list and print views.
type DisplayColumn struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Color  string `json:"color,omitempty"`
	Hidden bool   `json:"-"`
}

// ListingItem is a display-ready listing. It is built by the normalizer and
// enriched in place by the geocoder; identity is the source item id.
type ListingItem struct {
	ID           string          `json:"id"`
	BoardID      string          `json:"boardId,omitempty"`
	Name         string          `json:"name"`
	Address      string          `json:"address"`
	AddressTitle string          `json:"addressTitle"`
	StatusColor  string          `json:"statusColor,omitempty"`
	ThumbnailURL string          `json:"thumbnailUrl,omitempty"`
	ImageURLs    []string        `json:"imageUrls"`
	Columns      []DisplayColumn `json:"columns"`

	// Filled by the geocoder.
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	ParsedAddress string       `json:"parsedAddress"`
	NhoodCity     string       `json:"nhoodCity"`
	DriveLinkURL  string       `json:"driveLinkUrl,omitempty"`
}

// Plottable reports whether the item can be placed on the map.
func (l *ListingItem) Plottable() bool {
	return l.Coordinates != nil
}

// DisplayAddress prefers the geocoded address over the raw column text.
func (l *ListingItem) DisplayAddress() string {
	if l.ParsedAddress != "" {
		return l.ParsedAddress
	}
	return l.Address
}

// VisibleColumns returns the columns shown in list and print views.
func (l *ListingItem) VisibleColumns() []DisplayColumn {
	out := make([]DisplayColumn, 0, len(l.Columns))
	for _, c := range l.Columns {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// GeocodeResult is the first candidate returned for an address.
type GeocodeResult struct {
	Coordinates Coordinates `json:"coordinates"`
	FullAddress string      `json:"fullAddress"`
	NhoodCity   string      `json:"nhoodCity"`
}

// GeocodeCacheEntry is a memoized geocode. Entries are replaced, never updated.
type GeocodeCacheEntry struct {
	Address   string
	Result    GeocodeResult
	Timestamp time.Time
}

// InsightReport summarises a loaded item set.
type InsightReport struct {
	TotalItems        int
	PlottedItems      int
	UnplottedItems    []*ListingItem
	ItemsByNhood      map[string]int
	ItemsByStatus     map[string]int
	ImageCount        int
	ItemsWithoutPhoto int
}
