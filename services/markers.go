package services

import (
	"errors"

	"listing-map/models"
)

const (
	// DefaultMarkerColor is used when an item has no resolvable status color.
	DefaultMarkerColor = "orange"
	// FocusZoom is the zoom level for flying to a single listing.
	FocusZoom = 17
)

// ErrNotPlotted is returned when a camera command targets an item without a marker.
var ErrNotPlotted = errors.New("item is not on the map")

// Marker is one pin on the map surface.
type Marker struct {
	ItemID  string  `json:"itemId"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Color   string  `json:"color"`
}

// HoverInfo is the tooltip payload for a hovered marker.
type HoverInfo struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Address     string             `json:"address"`
	Coordinates models.Coordinates `json:"coordinates"`
}

// Hover returns the tooltip payload for the marker.
func (m Marker) Hover() HoverInfo {
	return HoverInfo{ID: m.ItemID, Name: m.Name, Address: m.Address, Coordinates: models.Coordinates{Lat: m.Lat, Lng: m.Lng}}
}

// FlyTo is a camera command for the map surface. Center is [lng, lat].
type FlyTo struct {
	Center [2]float64 `json:"center"`
	Zoom   int        `json:"zoom"`
}

// PlotMarkers builds a fresh marker set: one per item with coordinates.
func PlotMarkers(items []*models.ListingItem) []Marker {
	markers := make([]Marker, 0, len(items))
	for _, it := range items {
		if !it.Plottable() {
			continue
		}
		color := it.StatusColor
		if color == "" {
			color = DefaultMarkerColor
		}
		markers = append(markers, Marker{
			ItemID:  it.ID,
			Name:    it.Name,
			Address: it.Address,
			Lat:     it.Coordinates.Lat,
			Lng:     it.Coordinates.Lng,
			Color:   color,
		})
	}
	return markers
}

// FlyToMarker returns the camera command for the marker of itemID.
func FlyToMarker(markers []Marker, itemID string) (FlyTo, error) {
	for _, m := range markers {
		if m.ItemID == itemID {
			return FlyTo{Center: [2]float64{m.Lng, m.Lat}, Zoom: FocusZoom}, nil
		}
	}
	return FlyTo{}, ErrNotPlotted
}
