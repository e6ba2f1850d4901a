package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/resqed/resqed-bot/internal/domain/entities"
	"github.com/resqed/resqed-bot/internal/storage"
)

// HistoryRepository persists past quiz attempts, newest first.
type HistoryRepository struct {
	kv     storage.KV
	logger *zap.Logger
}

// NewHistoryRepository creates a HistoryRepository on top of the store.
func NewHistoryRepository(kv storage.KV, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{kv: kv, logger: logger}
}

// LoadHistory returns stored attempts, or none if absent or corrupt.
func (r *HistoryRepository) LoadHistory(ctx context.Context, learnerID int64) []entities.QuizHistoryEntry {
	data, err := r.kv.Get(ctx, learnerID, QuizHistoryKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("failed to read quiz history, using defaults",
				zap.Int64("user_id", learnerID),
				zap.Error(err),
			)
		}
		return []entities.QuizHistoryEntry{}
	}

	var history []entities.QuizHistoryEntry
	if err := sonic.Unmarshal(data, &history); err != nil {
		r.logger.Warn("corrupt quiz history, using defaults",
			zap.Int64("user_id", learnerID),
			zap.Error(err),
		)
		return []entities.QuizHistoryEntry{}
	}
	if history == nil {
		history = []entities.QuizHistoryEntry{}
	}

	return history
}

// AppendHistory prepends the entry so the list stays newest first.
func (r *HistoryRepository) AppendHistory(ctx context.Context, learnerID int64, entry entities.QuizHistoryEntry) error {
	history := r.LoadHistory(ctx, learnerID)

	updated := make([]entities.QuizHistoryEntry, 0, len(history)+1)
	updated = append(updated, entry)
	updated = append(updated, history...)

	data, err := sonic.Marshal(updated)
	if err != nil {
		return fmt.Errorf("marshal quiz history: %w", err)
	}

	if err := r.kv.Set(ctx, learnerID, QuizHistoryKey, data); err != nil {
		return fmt.Errorf("save quiz history: %w", err)
	}

	return nil
}
