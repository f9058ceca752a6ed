package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"blocknote/internal/domain"
)

// Supported values for Options.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Options selects and configures a persistence backend.
type Options struct {
	Driver string
	// DSN is the connection string for server backends.
	DSN string
	// Path is the SQLite database file.
	Path string
}

// Open returns the key-value store for opts.Driver.
func Open(ctx context.Context, opts Options) (domain.KVStore, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		db, err := New(opts.Path)
		if err != nil {
			return nil, err
		}
		return db.KV(), nil
	case DriverPostgres:
		store, err := OpenPostgres(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMySQL:
		store, err := OpenMySQL(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMongo:
		store, err := OpenMongo(ctx, opts.DSN, mongoDatabaseFromURI(opts.DSN))
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// mongoDatabaseFromURI extracts the database from "mongodb://host/dbname?opts".
func mongoDatabaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.Trim(u.Path, "/")
}
