package service

import (
	"go.uber.org/zap"

	"github.com/resqed/resqed-bot/internal/domain/entities"
	"github.com/resqed/resqed-bot/internal/repository"
	"github.com/resqed/resqed-bot/internal/storage"
)

const learnerID int64 = 4242

type stores struct {
	kv       *storage.MemoryStore
	progress *repository.ProgressRepository
	badges   *repository.BadgeRepository
	history  *repository.HistoryRepository
	reset    *repository.ResetRepository
}

func newStores() *stores {
	kv := storage.NewMemoryStore()
	logger := zap.NewNop()
	return &stores{
		kv:       kv,
		progress: repository.NewProgressRepository(kv, logger),
		badges:   repository.NewBadgeRepository(kv, logger),
		history:  repository.NewHistoryRepository(kv, logger),
		reset:    repository.NewResetRepository(kv),
	}
}

type staticBank struct {
	bank   entities.QuestionBank
	loaded bool
	err    error
}

func (s *staticBank) Result() (entities.QuestionBank, bool, error) {
	return s.bank, s.loaded, s.err
}

// questions builds n questions whose first option is always correct.
func questions(n int) []entities.QuizQuestion {
	qs := make([]entities.QuizQuestion, n)
	for i := range qs {
		qs[i] = entities.QuizQuestion{
			Q:       "Question " + string(rune('A'+i)),
			Options: []string{"right", "wrong"},
			Answer:  "right",
		}
	}
	return qs
}
