package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNhoodCity(t *testing.T) {
	tests := []struct {
		name string
		ctx  []contextEntry
		want string
	}{
		{"both", []contextEntry{{"neighborhood.1", "Harlem"}, {"locality.2", "New York"}}, "Harlem, New York"},
		{"locality only", []contextEntry{{"postcode.1", "10026"}, {"locality.2", "New York"}}, "New York"},
		{"neighborhood only", []contextEntry{{"neighborhood.1", "Harlem"}}, "Harlem"},
		{"neither", []contextEntry{{"region.1", "New York"}}, ""},
		{"first wins", []contextEntry{{"locality.1", "A"}, {"locality.2", "B"}}, "A"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		if got := nhoodCity(tt.ctx); got != tt.want {
			t.Errorf("%s: nhoodCity = %q; want %q", tt.name, got, tt.want)
		}
	}
}

func TestLookupFirstFeature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoding/v5/mapbox.places/57 Lenox Ave, NYC.json", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(`{"features":[
			{"center":[-73.9497,40.8007],"place_name":"57 Lenox Avenue, New York, New York 10026, United States",
			 "context":[{"id":"neighborhood.7","text":"Harlem"},{"id":"locality.3","text":"New York"}]},
			{"center":[0,0],"place_name":"second"}
		]}`))
	}))
	defer srv.Close()

	m := NewMapbox(srv.URL+"/", "tok")
	res, err := m.Lookup(context.Background(), "57 Lenox Ave, NYC")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 40.8007, res.Coordinates.Lat)
	assert.Equal(t, -73.9497, res.Coordinates.Lng)
	assert.Equal(t, "Harlem, New York", res.NhoodCity)
}

func TestLookupNoFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	res, err := NewMapbox(srv.URL, "tok").Lookup(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestLookupHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewMapbox(srv.URL, "bad").Lookup(context.Background(), "x")
	assert.Error(t, err)
}
