package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/resqed/resqed-bot/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS learner_storage (
  learner_id INTEGER NOT NULL,
  key        TEXT    NOT NULL,
  value      TEXT    NOT NULL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (learner_id, key)
);
`

// Open opens the SQLite database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file:resqed.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create learner_storage: %w", err)
	}

	return db, nil
}

// KVStore keeps learner blobs in a SQLite table.
type KVStore struct {
	db *sql.DB
}

// NewKVStore creates a KVStore on top of an opened database.
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// Get retrieves the value stored under key.
func (s *KVStore) Get(ctx context.Context, learnerID int64, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM learner_storage WHERE learner_id = ? AND key = ?`,
		learnerID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), nil
}

// Set inserts or replaces the value stored under key.
func (s *KVStore) Set(ctx context.Context, learnerID int64, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learner_storage (learner_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (learner_id, key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, learnerID, key, string(value), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes all keys within one transaction.
func (s *KVStore) Delete(ctx context.Context, learnerID int64, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM learner_storage WHERE learner_id = ? AND key = ?`,
			learnerID, key,
		); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}

	return tx.Commit()
}
