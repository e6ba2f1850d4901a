package service

import (
	"context"
)

type ResetService struct {
	repo ResetRepository
	quiz *QuizService
}

func NewResetService(repo ResetRepository, quiz *QuizService) *ResetService {
	return &ResetService{repo: repo, quiz: quiz}
}

// ResetUser clears progress, quiz history and quiz badges. A running quiz
// is abandoned so it cannot write into the cleared stores afterwards.
func (s *ResetService) ResetUser(ctx context.Context, learnerID int64) error {
	if s.quiz != nil {
		s.quiz.Restart(learnerID)
	}
	return s.repo.ResetUser(ctx, learnerID)
}
