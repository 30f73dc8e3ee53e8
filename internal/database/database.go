// Package database opens the libSQL file that backs the hunt document store.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/go-libsql"
)

// Memory is the path of a private in-memory database, used by tests.
const Memory = ":memory:"

// Every hunt write is a short version-checked UPDATE, so writers wait on the
// lock instead of failing with SQLITE_BUSY.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

// Open connects to the libSQL database at path and applies pragmas.
// An in-memory database is pinned to one connection; each connection would
// otherwise get its own empty database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == Memory {
		db.SetMaxOpenConns(1)
	}

	if err := configure(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// configure runs pragmas through QueryContext: libSQL rejects Exec for
// pragmas that return rows.
func configure(ctx context.Context, db *sql.DB) error {
	for _, p := range pragmas {
		rows, err := db.QueryContext(ctx, p)
		if err != nil {
			return fmt.Errorf("executing %s: %w", p, err)
		}
		rows.Close()
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}
