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

// BadgeRepository persists earned quiz badges.
type BadgeRepository struct {
	kv     storage.KV
	logger *zap.Logger
}

// NewBadgeRepository creates a BadgeRepository on top of the store.
func NewBadgeRepository(kv storage.KV, logger *zap.Logger) *BadgeRepository {
	return &BadgeRepository{kv: kv, logger: logger}
}

// LoadBadges returns the stored quiz badges, or none if absent or corrupt.
func (r *BadgeRepository) LoadBadges(ctx context.Context, learnerID int64) entities.QuizBadges {
	data, err := r.kv.Get(ctx, learnerID, QuizBadgesKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("failed to read quiz badges, using defaults",
				zap.Int64("user_id", learnerID),
				zap.Error(err),
			)
		}
		return entities.QuizBadges{}
	}

	var badges entities.QuizBadges
	if err := sonic.Unmarshal(data, &badges); err != nil || badges == nil {
		if err != nil {
			r.logger.Warn("corrupt quiz badges, using defaults",
				zap.Int64("user_id", learnerID),
				zap.Error(err),
			)
		}
		return entities.QuizBadges{}
	}

	return badges
}

// SaveBadges stores the quiz badges.
func (r *BadgeRepository) SaveBadges(ctx context.Context, learnerID int64, badges entities.QuizBadges) error {
	data, err := sonic.Marshal(badges)
	if err != nil {
		return fmt.Errorf("marshal quiz badges: %w", err)
	}

	if err := r.kv.Set(ctx, learnerID, QuizBadgesKey, data); err != nil {
		return fmt.Errorf("save quiz badges: %w", err)
	}

	return nil
}
