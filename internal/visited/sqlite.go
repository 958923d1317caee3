package visited

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLite stores visited names in a SQLite database
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{conn: conn}, nil
}

// Load returns every saved name
func (s *SQLite) Load(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT name FROM visited_stations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query visited stations: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Save replaces the saved names in a single transaction. Names already
// present keep their original visited_at.
func (s *SQLite) Save(ctx context.Context, names []string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE IF NOT EXISTS keep (name TEXT PRIMARY KEY)`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM keep`); err != nil {
		return err
	}

	keep, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO keep (name) VALUES (?)`)
	if err != nil {
		return err
	}
	defer keep.Close()

	insert, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO visited_stations (name) VALUES (?)`)
	if err != nil {
		return err
	}
	defer insert.Close()

	for _, name := range names {
		if _, err := keep.ExecContext(ctx, name); err != nil {
			return fmt.Errorf("failed to stage %q: %w", name, err)
		}
		if _, err := insert.ExecContext(ctx, name); err != nil {
			return fmt.Errorf("failed to insert %q: %w", name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM visited_stations WHERE name NOT IN (SELECT name FROM keep)`); err != nil {
		return fmt.Errorf("failed to prune visited stations: %w", err)
	}

	return tx.Commit()
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.conn.Close()
}
