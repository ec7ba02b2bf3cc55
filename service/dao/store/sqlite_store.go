package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/viant/curator/service/dao"
	_ "modernc.org/sqlite"
)

const (
	busyTimeout = 5000 // milliseconds

	recordsSchema = `CREATE TABLE IF NOT EXISTS records (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`
	upsertRecord = `INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// SQLiteStore implements dao.Service on a SQLite database. A single
// connection serialises writers of one handle, Update runs inside an
// immediate transaction so handles of other processes queue behind it.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates when needed) the database file at dbPath.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// busy_timeout goes first so the WAL switch waits on other handles;
	// immediate transactions take the write lock on BEGIN.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_txlock=immediate", dbPath, busyTimeout)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	if _, err := db.ExecContext(ctx, recordsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns a record by key.
func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, dao.ErrInvalidKey
	}
	return loadRecord(ctx, s.db, key)
}

// Save stores or overwrites a record.
func (s *SQLiteStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return dao.ErrInvalidKey
	}
	if _, err := s.db.ExecContext(ctx, upsertRecord, key, data, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	return nil
}

// Delete removes a record.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return dao.ErrInvalidKey
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}
	return nil
}

// Keys lists record keys with the given prefix.
func (s *SQLiteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM records ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, rows.Err()
}

// Update reads, transforms and writes a record in one transaction.
func (s *SQLiteStore) Update(ctx context.Context, key string, fn dao.UpdateFunc) (err error) {
	if key == "" {
		return dao.ErrInvalidKey
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	current, err := loadRecord(ctx, tx, key)
	exists := err == nil
	if err != nil && !errors.Is(err, dao.ErrNotFound) {
		return err
	}
	data, err := fn(current, exists)
	if err != nil {
		if err = skipped(err); err == nil {
			return tx.Rollback()
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, upsertRecord, key, data, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record %s: %w", key, err)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadRecord(ctx context.Context, q queryRower, key string) ([]byte, error) {
	var data []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dao.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s: %w", key, err)
	}
	return data, nil
}

var _ dao.Service = (*SQLiteStore)(nil)
