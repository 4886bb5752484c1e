package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// Pool settings.
const (
	MaxOpenConns    = 10
	MaxIdleConns    = 5
	ConnMaxLifetime = 5 * time.Minute
)

// ErrNoURL is returned by Open for an empty connection string.
var ErrNoURL = errors.New("database url is empty")

// DB wraps the connection pool.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open parses url and creates the pool. A malformed url fails here;
// connections are established lazily, so an unreachable server is reported by
// Ping rather than here.
func Open(url string, logger *slog.Logger) (*DB, error) {
	if url == "" {
		return nil, ErrNoURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := pgx.ParseConfig(url); err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxIdleConns)
	db.SetConnMaxLifetime(ConnMaxLifetime)

	return &DB{db: db, logger: logger.With(slog.String("component", "postgres"))}, nil
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close closes the pool.
func (d *DB) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	d.logger.Info("database connection closed")
	return nil
}

// Stats returns the pool statistics.
func (d *DB) Stats() sql.DBStats {
	return d.db.Stats()
}
