package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
	dialectMySQL
)

// SQLStore implements domain.KVStore on a single `kv` table.
// The same table layout is used by every SQL backend; only the
// placeholder style and the upsert statement differ.
type SQLStore struct {
	conn    *sql.DB
	dialect dialect
	closer  func() error
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, s.selectSQL(), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.conn.ExecContext(ctx, s.upsertSQL(), key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return s.conn.Close()
}

func (s *SQLStore) selectSQL() string {
	switch s.dialect {
	case dialectPostgres:
		return `SELECT value FROM kv WHERE key = $1`
	case dialectMySQL:
		return "SELECT value FROM kv WHERE `key` = ?"
	default:
		return `SELECT value FROM kv WHERE key = ?`
	}
}

func (s *SQLStore) upsertSQL() string {
	switch s.dialect {
	case dialectPostgres:
		return `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	case dialectMySQL:
		return "INSERT INTO kv (`key`, value, updated_at) VALUES (?, ?, ?)" +
			" ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)"
	default:
		return `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	}
}
