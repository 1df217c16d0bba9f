// Package sqlite provides a SQLite-backed store.Store with an LRU read
// cache in front of it.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/cognicore/casegraph/pkg/casegraph/internalerr"
	"github.com/cognicore/casegraph/pkg/casegraph/store"
)

const defaultCacheSize = 128

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy

	programs *lru.Cache[string, store.Program] // by ID
	names    *lru.Cache[string, string]        // name -> ID
}

// Option configures the SQLite store.
type Option func(*options)

type options struct {
	cacheSize int
}

// WithCacheSize sets the number of programs kept in the read cache.
// Defaults to 128.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// OpenSQLite opens a SQLite database with WAL mode enabled and initializes
// the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (store.Store, error) {
	o := options{cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	programs, err := lru.New[string, store.Program](o.cacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	names, err := lru.New[string, string](o.cacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:       db,
		entropy:  ulid.Monotonic(rand.Reader, 0),
		programs: programs,
		names:    names,
	}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS programs (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	source TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// PutProgram validates, normalizes, and stores a program, keyed by name.
func (s *sqliteStore) PutProgram(ctx context.Context, name, source string) (store.Program, error) {
	if name == "" {
		return store.Program{}, fmt.Errorf("program name is empty: %w", internalerr.ErrInvalidInput)
	}
	normalized, err := store.Normalize(source)
	if err != nil {
		return store.Program{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Program{}, err
	}
	defer tx.Rollback()

	var p store.Program
	var createdAt string
	row := tx.QueryRowContext(ctx, `SELECT id, created_at FROM programs WHERE name = ?`, name)
	switch err := row.Scan(&p.ID, &createdAt); {
	case err == nil:
		p.Name = name
		p.Source = normalized
		if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return store.Program{}, err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE programs SET source = ? WHERE id = ?`, normalized, p.ID); err != nil {
			return store.Program{}, err
		}
	case errors.Is(err, sql.ErrNoRows):
		p = store.Program{
			ID:        s.newID(),
			Name:      name,
			Source:    normalized,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO programs (id, name, source, created_at) VALUES (?, ?, ?, ?)`,
			p.ID, p.Name, p.Source, p.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return store.Program{}, err
		}
	default:
		return store.Program{}, err
	}

	if err := tx.Commit(); err != nil {
		return store.Program{}, err
	}

	s.programs.Add(p.ID, p)
	s.names.Add(p.Name, p.ID)
	return p, nil
}

// GetProgram returns a program by ID, consulting the read cache first.
func (s *sqliteStore) GetProgram(ctx context.Context, id string) (store.Program, error) {
	if p, ok := s.programs.Get(id); ok {
		return p, nil
	}

	p, err := s.queryProgram(ctx, `SELECT id, name, source, created_at FROM programs WHERE id = ?`, id)
	if err != nil {
		return store.Program{}, err
	}

	s.programs.Add(p.ID, p)
	s.names.Add(p.Name, p.ID)
	return p, nil
}

// GetProgramByName returns a program by name.
func (s *sqliteStore) GetProgramByName(ctx context.Context, name string) (store.Program, bool, error) {
	if id, ok := s.names.Get(name); ok {
		p, err := s.GetProgram(ctx, id)
		if err != nil {
			return store.Program{}, false, err
		}
		return p, true, nil
	}

	p, err := s.queryProgram(ctx, `SELECT id, name, source, created_at FROM programs WHERE name = ?`, name)
	if errors.Is(err, internalerr.ErrNotFound) {
		return store.Program{}, false, nil
	}
	if err != nil {
		return store.Program{}, false, err
	}

	s.programs.Add(p.ID, p)
	s.names.Add(p.Name, p.ID)
	return p, true, nil
}

// ListPrograms returns all stored programs, newest first.
func (s *sqliteStore) ListPrograms(ctx context.Context) ([]store.Program, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, created_at FROM programs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Program
	for rows.Next() {
		var p store.Program
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Source, &createdAt); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteProgram removes a program by ID.
func (s *sqliteStore) DeleteProgram(ctx context.Context, id string) error {
	var name string
	row := s.db.QueryRowContext(ctx, `SELECT name FROM programs WHERE id = ?`, id)
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("program %s: %w", id, internalerr.ErrNotFound)
		}
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, id); err != nil {
		return err
	}

	s.programs.Remove(id)
	s.names.Remove(name)
	return nil
}

func (s *sqliteStore) queryProgram(ctx context.Context, query, arg string) (store.Program, error) {
	var p store.Program
	var createdAt string
	row := s.db.QueryRowContext(ctx, query, arg)
	if err := row.Scan(&p.ID, &p.Name, &p.Source, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Program{}, fmt.Errorf("program %s: %w", arg, internalerr.ErrNotFound)
		}
		return store.Program{}, err
	}
	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return store.Program{}, err
	}
	return p, nil
}

func (s *sqliteStore) newID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}
