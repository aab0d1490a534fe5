package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const defaultPingTimeout = 5 * time.Second

// PoolSettings tunes the connection pool. Zero values fall back to defaults.
type PoolSettings struct {
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
	ConnIdleTime time.Duration
}

// NewPostgresDB creates a pgx/stdlib backed *sql.DB pool and validates the connection.
func NewPostgresDB(dsn string, settings PoolSettings) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("db: empty DSN")
	}

	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if settings.MaxOpenConns <= 0 {
		settings.MaxOpenConns = 25
	}
	if settings.MaxIdleConns <= 0 {
		settings.MaxIdleConns = 5
	}
	if settings.ConnLifetime <= 0 {
		settings.ConnLifetime = time.Hour
	}
	if settings.ConnIdleTime <= 0 {
		settings.ConnIdleTime = 30 * time.Minute
	}

	pool.SetMaxOpenConns(settings.MaxOpenConns)
	pool.SetMaxIdleConns(settings.MaxIdleConns)
	pool.SetConnMaxLifetime(settings.ConnLifetime)
	pool.SetConnMaxIdleTime(settings.ConnIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
