package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// OpenPostgres opens a Postgres-backed key-value store.
// dsn is a lib/pq connection string, e.g. "host=localhost user=notes dbname=notes sslmode=disable".
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	_, err = conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &SQLStore{conn: conn, dialect: dialectPostgres}, nil
}
