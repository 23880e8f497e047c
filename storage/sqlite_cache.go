package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"listing-map/models"
)

// SQLiteCache persists geocode results to a local SQLite file.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (or creates) the database at path. Pass ":memory:"
// for a throwaway cache.
func NewSQLiteCache(ctx context.Context, path string) (*SQLiteCache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and avoids writer contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: busy timeout: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	sc := &SQLiteCache{db: db}
	if err := sc.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return sc, nil
}

func (sc *SQLiteCache) migrate(ctx context.Context) error {
	_, err := sc.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS geocode_cache (
			address   TEXT    PRIMARY KEY,
			result    TEXT    NOT NULL,
			cached_at INTEGER NOT NULL
		)
	`)
	return err
}

func (sc *SQLiteCache) Get(ctx context.Context, key string) (*models.GeocodeCacheEntry, error) {
	var raw string
	var cachedAt int64

	err := sc.db.QueryRowContext(ctx,
		`SELECT result, cached_at FROM geocode_cache WHERE address = ?`, key,
	).Scan(&raw, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %q: %w", key, err)
	}

	entry := &models.GeocodeCacheEntry{Address: key, Timestamp: time.UnixMilli(cachedAt)}
	if err := json.Unmarshal([]byte(raw), &entry.Result); err != nil {
		return nil, fmt.Errorf("sqlite: decode %q: %w", key, err)
	}
	return entry, nil
}

func (sc *SQLiteCache) Set(ctx context.Context, entry models.GeocodeCacheEntry) error {
	raw, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("sqlite: encode %q: %w", entry.Address, err)
	}

	_, err = sc.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO geocode_cache (address, result, cached_at) VALUES (?, ?, ?)`,
		entry.Address, string(raw), entry.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite: set %q: %w", entry.Address, err)
	}
	return nil
}

func (sc *SQLiteCache) Delete(ctx context.Context, key string) error {
	if _, err := sc.db.ExecContext(ctx, `DELETE FROM geocode_cache WHERE address = ?`, key); err != nil {
		return fmt.Errorf("sqlite: delete %q: %w", key, err)
	}
	return nil
}

func (sc *SQLiteCache) Close() error {
	return sc.db.Close()
}
