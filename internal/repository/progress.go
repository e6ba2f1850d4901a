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

// ProgressRepository persists learner module completion.
type ProgressRepository struct {
	kv     storage.KV
	logger *zap.Logger
}

// NewProgressRepository creates a ProgressRepository on top of the store.
func NewProgressRepository(kv storage.KV, logger *zap.Logger) *ProgressRepository {
	return &ProgressRepository{kv: kv, logger: logger}
}

// Load returns the stored progress with the current course totals.
// Missing or unreadable data yields empty progress.
func (r *ProgressRepository) Load(ctx context.Context, learnerID int64) *entities.Progress {
	data, err := r.kv.Get(ctx, learnerID, ProgressKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("failed to read progress, using defaults",
				zap.Int64("user_id", learnerID),
				zap.Error(err),
			)
		}
		return entities.NewProgress()
	}

	var progress entities.Progress
	if err := sonic.Unmarshal(data, &progress); err != nil {
		r.logger.Warn("corrupt progress record, using defaults",
			zap.Int64("user_id", learnerID),
			zap.Error(err),
		)
		return entities.NewProgress()
	}

	if progress.ModuleStatus == nil {
		progress.ModuleStatus = entities.ModuleStatus{}
	}
	progress.CourseTotals = entities.CourseTotals()

	return &progress
}

// Save serializes and stores the progress.
func (r *ProgressRepository) Save(ctx context.Context, learnerID int64, progress *entities.Progress) error {
	data, err := sonic.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	if err := r.kv.Set(ctx, learnerID, ProgressKey, data); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}

	return nil
}
