package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// OpenMySQL opens a MySQL-backed key-value store.
// dsn format: user:password@tcp(host:port)/dbname?parseTime=true
func OpenMySQL(ctx context.Context, dsn string) (*SQLStore, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	// `key` is reserved in MySQL, hence the quoting.
	_, err = conn.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS kv ("+
		"`key` VARCHAR(191) PRIMARY KEY,"+
		" value LONGTEXT NOT NULL,"+
		" updated_at DATETIME(6) NOT NULL"+
		") CHARACTER SET utf8mb4")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate mysql: %w", err)
	}
	return &SQLStore{conn: conn, dialect: dialectMySQL}, nil
}
