// ABOUTME: SQLite storage implementation for wander records
// ABOUTME: Provides local-only persistence using pure Go SQLite driver

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDB implements RecordStore with a local SQLite database.
type SQLiteDB struct {
	db   *sql.DB
	path string
}

// Compile-time check that SQLiteDB implements RecordStore.
var _ RecordStore = (*SQLiteDB)(nil)

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "wander", "wander.db")
}

// NewSQLiteDB creates a new SQLite database at the given path.
// Creates the directory and database file if they don't exist.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil { //nolint:gosec // 0750 is appropriate for user data directory
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteDB{db: db, path: path}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteDB) Path() string {
	return s.path
}

// migrate creates or updates the database schema.
func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id INTEGER NOT NULL,
			data BLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		);

		CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Sync is a no-op for local SQLite (no cloud sync).
func (s *SQLiteDB) Sync() error {
	return nil
}

// IsReadOnly always returns false; SQLite handles its own locking.
func (s *SQLiteDB) IsReadOnly() bool {
	return false
}

// PutRecord inserts or replaces a record.
func (s *SQLiteDB) PutRecord(ctx context.Context, collection string, id int64, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, id, data, time.Now().UTC(),
	)
	if err != nil {
		return Unavailable("insert record", err)
	}
	return nil
}

// GetRecord returns one record's data, or ErrNotFound.
func (s *SQLiteDB) GetRecord(ctx context.Context, collection string, id int64) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM records WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Unavailable("query record", err)
	}
	return data, nil
}

// GetAllRecords returns every record in a collection ordered by id.
func (s *SQLiteDB) GetAllRecords(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, data FROM records WHERE collection = ? ORDER BY id",
		collection,
	)
	if err != nil {
		return nil, Unavailable("query records", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Data); err != nil {
			return nil, Unavailable("scan record", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, Unavailable("iterate records", err)
	}
	return records, nil
}

// DeleteRecord removes a record. Missing records are ignored.
func (s *SQLiteDB) DeleteRecord(ctx context.Context, collection string, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE collection = ? AND id = ?", collection, id); err != nil {
		return Unavailable("delete record", err)
	}
	return nil
}

// ClearCollection removes every record in a collection.
func (s *SQLiteDB) ClearCollection(ctx context.Context, collection string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", collection); err != nil {
		return Unavailable("clear collection", err)
	}
	return nil
}

// Reset clears all data from the database.
func (s *SQLiteDB) Reset() error {
	_, err := s.db.Exec("DELETE FROM records")
	return err
}
