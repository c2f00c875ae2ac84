// Package cache is the local persistent store of cities and their daily
// forecasts, backed by an embedded SQLite database.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var (
	// ErrStorageUnavailable is returned when the database cannot be opened or
	// its schema cannot be created.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrUnknownCity is returned when a forecast operation references a city
	// that is not stored.
	ErrUnknownCity = errors.New("unknown city")
)

const schema = `
CREATE TABLE IF NOT EXISTS cities (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT NOT NULL COLLATE NOCASE,
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL,
	UNIQUE (name, latitude, longitude)
);

CREATE TABLE IF NOT EXISTS daily_forecasts (
	city_id      INTEGER NOT NULL,
	date         TEXT NOT NULL,
	weather_code INTEGER NOT NULL,
	t_min        REAL NOT NULL,
	t_max        REAL NOT NULL,
	t_mean       REAL NOT NULL,
	fetched_at   TEXT NOT NULL,
	PRIMARY KEY (city_id, date),
	FOREIGN KEY (city_id) REFERENCES cities(id) ON DELETE CASCADE
);
`

// Cache stores cities and their daily forecasts. It is safe for concurrent use.
type Cache struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens or creates the database at path and applies the schema. It is
// safe to call on every startup.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Cache, error) {
	// foreign_keys is per connection in SQLite; passing it as a DSN pragma
	// applies it to every connection the pool opens.
	dsn := (&url.URL{
		Scheme:   "file",
		Path:     path,
		RawQuery: "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	}).String()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorageUnavailable, path, err)
	}
	// A single connection serialises writers inside the process and avoids
	// SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorageUnavailable, path, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: apply schema: %w", ErrStorageUnavailable, err)
	}

	logger.Debug("Forecast cache opened", zap.String("path", path))

	return &Cache{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
