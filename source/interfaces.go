// Package source defines where board and item data comes from.
package source

import (
	"context"

	"listing-map/models"
)

// DataSource is the board/item API the dashboard reads from.
type DataSource interface {
	// Boards lists every board available for the selector.
	Boards(ctx context.Context) ([]models.BoardRef, error)
	// Items returns the given boards with their items and column values.
	Items(ctx context.Context, boardIDs []string) ([]models.RawBoard, error)
}
