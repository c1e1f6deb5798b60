// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL dialect in use so the engine can adjust the
// few statements that differ between postgres and sqlite.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// LockSuffix returns the row-lock clause appended to SELECTs that must hold
// a row lock for the duration of a transaction. SQLite serializes writers on
// the database lock, so no per-row clause exists or is needed there.
func (d Dialect) LockSuffix() string {
	if d == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

// Open connects using the configured database type ("postgres" or "sqlite").
func Open(databaseType, url string) (*sql.DB, Dialect, error) {
	switch databaseType {
	case "postgres", "":
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open postgres: %w", err)
		}
		return conn, Postgres, nil
	case "sqlite":
		conn, err := sql.Open("sqlite", url)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open sqlite: %w", err)
		}
		// sqlite allows one writer at a time; the pool must not hand the
		// vote transaction more connections than the file can serve.
		conn.SetMaxOpenConns(1)
		return conn, SQLite, nil
	default:
		return nil, "", fmt.Errorf("unknown database type %q", databaseType)
	}
}
