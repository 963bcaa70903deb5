package extension

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// StoreFile is the database file name inside the site's data directory.
const StoreFile = "extensions.db"

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Record is one row of the extension table: an extension the site has
// installed at some point, enabled or not.
type Record struct {
	FullName      string
	Name          string
	Label         string
	File          string
	IsActive      bool
	SchemaVersion string
}

// Store persists extension installation records in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens (creating if needed) the store at path and verifies its schema.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Records returns every stored record ordered by full name.
func (s *Store) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT full_name, name, label, file, is_active, schema_version
           FROM extension ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("query extensions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var active int
		if err := rows.Scan(&r.FullName, &r.Name, &r.Label, &r.File, &active, &r.SchemaVersion); err != nil {
			return nil, fmt.Errorf("scan extension row: %w", err)
		}
		r.IsActive = active != 0
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate extensions: %w", err)
	}
	return out, nil
}

// Save inserts or replaces the record keyed by its full name.
func (s *Store) Save(ctx context.Context, r Record) error {
	if r.FullName == "" {
		return errors.New("save extension: empty full name")
	}
	active := 0
	if r.IsActive {
		active = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extension (full_name, name, label, file, is_active, schema_version)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(full_name) DO UPDATE SET
             name = excluded.name,
             label = excluded.label,
             file = excluded.file,
             is_active = excluded.is_active,
             schema_version = excluded.schema_version`,
		r.FullName, r.Name, r.Label, r.File, active, r.SchemaVersion)
	if err != nil {
		return fmt.Errorf("save extension %s: %w", r.FullName, err)
	}
	return nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
