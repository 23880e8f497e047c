// Package geocoder resolves free-text addresses through the Mapbox places API.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"listing-map/models"
)

// Mapbox is a client for the geocoding v5 places endpoint.
type Mapbox struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewMapbox creates a client. baseURL is normally https://api.mapbox.com.
func NewMapbox(baseURL, token string) *Mapbox {
	return &Mapbox{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type contextEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type feature struct {
	Center    []float64      `json:"center"`
	PlaceName string         `json:"place_name"`
	Context   []contextEntry `json:"context"`
}

type placesResponse struct {
	Features []feature `json:"features"`
}

// Lookup returns the first candidate for address, or nil when nothing matches.
func (m *Mapbox) Lookup(ctx context.Context, address string) (*models.GeocodeResult, error) {
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?access_token=%s",
		m.baseURL, url.PathEscape(address), url.QueryEscape(m.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("mapbox: build request: %w", err)
	}

	res, err := m.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapbox: lookup %q: %w", address, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 256))
		return nil, fmt.Errorf("mapbox: lookup %q: status %d: %s", address, res.StatusCode, body)
	}

	var pr placesResponse
	if err := json.NewDecoder(res.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("mapbox: decode %q: %w", address, err)
	}

	if len(pr.Features) == 0 {
		return nil, nil
	}
	f := pr.Features[0]
	if len(f.Center) < 2 {
		return nil, nil
	}

	return &models.GeocodeResult{
		Coordinates: models.Coordinates{Lat: f.Center[1], Lng: f.Center[0]},
		FullAddress: f.PlaceName,
		NhoodCity:   nhoodCity(f.Context),
	}, nil
}

// nhoodCity builds the "neighborhood, locality" label from a feature context.
func nhoodCity(entries []contextEntry) string {
	var neighborhood, locality string
	for _, c := range entries {
		switch {
		case neighborhood == "" && strings.HasPrefix(c.ID, "neighborhood."):
			neighborhood = c.Text
		case locality == "" && strings.HasPrefix(c.ID, "locality."):
			locality = c.Text
		}
	}

	switch {
	case neighborhood != "" && locality != "":
		return neighborhood + ", " + locality
	case locality != "":
		return locality
	default:
		return neighborhood
	}
}
