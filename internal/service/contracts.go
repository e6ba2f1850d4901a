package service

import (
	"context"

	"github.com/resqed/resqed-bot/internal/domain/entities"
)

type ProgressRepository interface {
	Load(ctx context.Context, learnerID int64) *entities.Progress
	Save(ctx context.Context, learnerID int64, progress *entities.Progress) error
}

type BadgeRepository interface {
	LoadBadges(ctx context.Context, learnerID int64) entities.QuizBadges
	SaveBadges(ctx context.Context, learnerID int64, badges entities.QuizBadges) error
}

type HistoryRepository interface {
	LoadHistory(ctx context.Context, learnerID int64) []entities.QuizHistoryEntry
	AppendHistory(ctx context.Context, learnerID int64, entry entities.QuizHistoryEntry) error
}

type ResetRepository interface {
	ResetUser(ctx context.Context, learnerID int64) error
}

type QuestionRepository interface {
	Fetch(ctx context.Context) (entities.QuestionBank, error)
}
