package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"listing-map/models"
)

// PostgresCache persists geocode results to PostgreSQL.
type PostgresCache struct {
	db *sql.DB
}

// NewPostgresCache opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresCache.
func NewPostgresCache(ctx context.Context, dsn string) (*PostgresCache, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pc := &PostgresCache{db: db}
	if err := pc.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pc, nil
}

func (pc *PostgresCache) migrate(ctx context.Context) error {
	_, err := pc.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS geocode_cache (
			address    TEXT        PRIMARY KEY,
			result     JSONB       NOT NULL,
			cached_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_geocode_cache_cached_at ON geocode_cache(cached_at);
	`)
	return err
}

func (pc *PostgresCache) Get(ctx context.Context, key string) (*models.GeocodeCacheEntry, error) {
	var raw []byte
	entry := &models.GeocodeCacheEntry{Address: key}

	err := pc.db.QueryRowContext(ctx,
		`SELECT result, cached_at FROM geocode_cache WHERE address = $1`, key,
	).Scan(&raw, &entry.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, &entry.Result); err != nil {
		return nil, fmt.Errorf("postgres: decode %q: %w", key, err)
	}
	return entry, nil
}

func (pc *PostgresCache) Set(ctx context.Context, entry models.GeocodeCacheEntry) error {
	raw, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("postgres: encode %q: %w", entry.Address, err)
	}

	_, err = pc.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (address, result, cached_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE
		SET result = EXCLUDED.result, cached_at = EXCLUDED.cached_at
	`, entry.Address, raw, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("postgres: set %q: %w", entry.Address, err)
	}
	return nil
}

func (pc *PostgresCache) Delete(ctx context.Context, key string) error {
	if _, err := pc.db.ExecContext(ctx, `DELETE FROM geocode_cache WHERE address = $1`, key); err != nil {
		return fmt.Errorf("postgres: delete %q: %w", key, err)
	}
	return nil
}

func (pc *PostgresCache) Close() error {
	return pc.db.Close()
}
