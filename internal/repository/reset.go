package repository

import (
	"context"
	"fmt"

	"github.com/resqed/resqed-bot/internal/storage"
)

// ResetRepository clears all learner stores.
type ResetRepository struct {
	kv storage.KV
}

func NewResetRepository(kv storage.KV) *ResetRepository {
	return &ResetRepository{kv: kv}
}

// ResetUser removes progress, quiz history and quiz badges in one store operation.
func (r *ResetRepository) ResetUser(ctx context.Context, learnerID int64) error {
	if err := r.kv.Delete(ctx, learnerID, ProgressKey, QuizHistoryKey, QuizBadgesKey); err != nil {
		return fmt.Errorf("reset learner stores: %w", err)
	}
	return nil
}
