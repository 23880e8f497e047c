package services

import (
	"errors"
	"fmt"
	"strings"

	"listing-map/models"
)

// ErrEmptySelection is returned by actions that need at least one selected item.
var ErrEmptySelection = errors.New("select at least one item")

// RouteTarget is the external maps application a route opens in.
type RouteTarget string

const (
	RouteGoogle RouteTarget = "google"
	// RouteApple cannot take waypoints in a URL; multi-stop routes go to the first stop only.
	RouteApple RouteTarget = "apple"
)

// ParseRouteTarget maps a config value to a RouteTarget, defaulting to Google.
func ParseRouteTarget(s string) RouteTarget {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apple", "ios":
		return RouteApple
	default:
		return RouteGoogle
	}
}

// DriveLink is the turn-by-turn URL for a single coordinate.
func DriveLink(c models.Coordinates, target RouteTarget) string {
	if target == RouteApple {
		return "http://maps.apple.com/?daddr=" + c.String()
	}
	return "https://www.google.com/maps/dir/?api=1&destination=" + c.String()
}

// RouteURL builds a directions URL through coords in order. The last point is
// the destination and the rest are waypoints.
func RouteURL(coords []models.Coordinates, target RouteTarget) (string, error) {
	switch {
	case len(coords) == 0:
		return "", ErrEmptySelection
	case len(coords) == 1, target == RouteApple:
		return DriveLink(coords[0], target), nil
	}

	dest := coords[len(coords)-1]
	waypoints := make([]string, 0, len(coords)-1)
	for _, c := range coords[:len(coords)-1] {
		waypoints = append(waypoints, c.String())
	}
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%s&waypoints=%s",
		dest.String(), strings.Join(waypoints, "|")), nil
}
