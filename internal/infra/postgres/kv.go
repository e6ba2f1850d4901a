package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resqed/resqed-bot/internal/storage"
)

const schema = `
	CREATE TABLE IF NOT EXISTS learner_storage (
		learner_id BIGINT      NOT NULL,
		key        TEXT        NOT NULL,
		value      TEXT        NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (learner_id, key)
	)
`

// KVStore keeps learner blobs in the learner_storage table.
type KVStore struct {
	db DBTX
	tr *Transactor
}

// NewKVStore creates a KVStore backed by the pool.
func NewKVStore(pool *pgxpool.Pool) *KVStore {
	return &KVStore{db: pool, tr: NewTransactor(pool)}
}

// Migrate creates the learner_storage table if it does not exist.
func (s *KVStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create learner_storage: %w", err)
	}
	return nil
}

// Get retrieves the value stored under key.
func (s *KVStore) Get(ctx context.Context, learnerID int64, key string) ([]byte, error) {
	query := `SELECT value FROM learner_storage WHERE learner_id = $1 AND key = $2`

	var value string
	err := s.db.QueryRow(ctx, query, learnerID, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	return []byte(value), nil
}

// Set inserts or replaces the value stored under key.
func (s *KVStore) Set(ctx context.Context, learnerID int64, key string, value []byte) error {
	query := `
		INSERT INTO learner_storage (learner_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (learner_id, key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := s.db.Exec(ctx, query, learnerID, key, string(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return nil
}

// Delete removes all keys within one transaction.
func (s *KVStore) Delete(ctx context.Context, learnerID int64, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `DELETE FROM learner_storage WHERE learner_id = $1 AND key = ANY($2)`
		if _, err := tx.Exec(ctx, query, learnerID, keys); err != nil {
			return fmt.Errorf("delete keys: %w", err)
		}
		return nil
	})
}
