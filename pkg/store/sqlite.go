// Package store writes sample runs into SQLite tables so generated data can
// seed a database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/nomagicln/seedgen/pkg/sampler"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a SQLite database holding sample runs. Each table has one row per
// value, keyed by the run's seed and size and the value's index, so writing
// the same run twice leaves the table unchanged.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the database at path. ":memory:" opens a private
// in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open SQLite database '%s': %w", path, err)
	}
	return &Store{db: db}, nil
}

// TableName derives a table name from a generator name: "petstore.Pet"
// becomes "petstore_Pet".
func TableName(generator string) string {
	name := strings.Map(func(r rune) rune {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, generator)
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "t_" + name
	}
	return name
}

// Write stores the values of res in table, creating it if needed, and
// returns the number of rows written. Values are stored as JSON text.
func (s *Store) Write(ctx context.Context, table string, res *sampler.Result) (int, error) {
	if !tableNamePattern.MatchString(table) {
		return 0, fmt.Errorf("invalid table name '%s'", table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %q (
			seed      INTEGER NOT NULL,
			size      INTEGER NOT NULL,
			idx       INTEGER NOT NULL,
			generator TEXT NOT NULL,
			value     TEXT,
			PRIMARY KEY (seed, size, idx)
		)
	`, table))
	if err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT OR REPLACE INTO %q (seed, size, idx, generator, value)
		VALUES (?, ?, ?, ?, ?)
	`, table))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, v := range res.Values {
		data, err := json.Marshal(v)
		if err != nil {
			return 0, fmt.Errorf("failed to encode value %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, res.Seed, res.Size, i, res.Name, string(data)); err != nil {
			return 0, fmt.Errorf("failed to insert value %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return len(res.Values), nil
}

// Values reads back the values of one run in index order, decoded from JSON.
func (s *Store) Values(ctx context.Context, table string, seed int64, size int) ([]any, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name '%s'", table)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT value FROM %q WHERE seed = ? AND size = ? ORDER BY idx`, table), seed, size)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	values := make([]any, 0)
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var v any
		if raw.Valid {
			if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
				return nil, fmt.Errorf("failed to decode value: %w", err)
			}
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Close releases database resources.
func (s *Store) Close() error {
	return s.db.Close()
}
