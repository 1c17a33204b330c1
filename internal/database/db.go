package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Connect opens a pgx pool against the hosted Postgres and pings it.
func Connect(ctx context.Context, dsn string, development bool, logger zerolog.Logger) (*pgxpool.Pool, error) {
	dsn = normalizeDSN(dsn, development)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	config.MaxConns = 25
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("host", config.ConnConfig.Host).Uint16("port", config.ConnConfig.Port).Msg("Database connection successful")
	return pool, nil
}

// normalizeDSN disables SSL for local development and switches to the simple
// query protocol elsewhere, since the hosted pooler does not keep prepared
// statements across transactions.
func normalizeDSN(dsn string, development bool) string {
	if development {
		if !strings.Contains(dsn, "sslmode") {
			dsn = appendParam(dsn, "sslmode=disable")
		}
		return dsn
	}
	if !strings.Contains(dsn, "default_query_exec_mode") {
		dsn = appendParam(dsn, "default_query_exec_mode=simple_protocol")
	}
	return dsn
}

func appendParam(dsn, param string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if strings.Contains(dsn, "?") {
			return dsn + "&" + param
		}
		return dsn + "?" + param
	}
	return dsn + " " + param
}
