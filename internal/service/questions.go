package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/resqed/resqed-bot/internal/domain/entities"
)

// QuestionBankLoader fetches the question bank once, in the background,
// and shares the outcome with every quiz engine. There is no retry.
type QuestionBankLoader struct {
	repo   QuestionRepository
	logger *zap.Logger

	once sync.Once
	done chan struct{}
	bank entities.QuestionBank
	err  error
}

func NewQuestionBankLoader(repo QuestionRepository, logger *zap.Logger) *QuestionBankLoader {
	return &QuestionBankLoader{
		repo:   repo,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start begins the fetch. Later calls do nothing.
func (l *QuestionBankLoader) Start(ctx context.Context) {
	l.once.Do(func() {
		go func() {
			defer close(l.done)

			bank, err := l.repo.Fetch(ctx)
			if err != nil {
				l.logger.Error("could not load the questions", zap.Error(err))
				l.err = err
				return
			}

			l.bank = bank
			l.logger.Info("question bank loaded", zap.Int("topics", len(bank)))
		}()
	})
}

// Result implements BankProvider.
func (l *QuestionBankLoader) Result() (entities.QuestionBank, bool, error) {
	select {
	case <-l.done:
		return l.bank, true, l.err
	default:
		return nil, false, nil
	}
}

// Wait blocks until the fetch finished or ctx is done.
func (l *QuestionBankLoader) Wait(ctx context.Context) (entities.QuestionBank, error) {
	select {
	case <-l.done:
		return l.bank, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
