package service

import (
	"context"
	"sync"
	"time"
)

// QuizService keeps one quiz engine and at most one countdown per learner.
type QuizService struct {
	provider    BankProvider
	badgeRepo   BadgeRepository
	historyRepo HistoryRepository
	cfg         QuizConfig
	tick        time.Duration

	mu      sync.Mutex
	engines map[int64]*QuizEngine
	timers  map[int64]*countdown
}

type countdown struct {
	cancel context.CancelFunc
}

func NewQuizService(
	provider BankProvider,
	badgeRepo BadgeRepository,
	historyRepo HistoryRepository,
	cfg QuizConfig,
	tick time.Duration,
) *QuizService {
	if tick <= 0 {
		tick = time.Second
	}
	return &QuizService{
		provider:    provider,
		badgeRepo:   badgeRepo,
		historyRepo: historyRepo,
		cfg:         cfg,
		tick:        tick,
		engines:     make(map[int64]*QuizEngine),
		timers:      make(map[int64]*countdown),
	}
}

// Engine returns the learner's engine, creating an idle one on first use.
func (s *QuizService) Engine(learnerID int64) *QuizEngine {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.engines[learnerID]
	if !ok {
		e = NewQuizEngine(learnerID, s.provider, s.badgeRepo, s.historyRepo, s.cfg, nil, nil)
		s.engines[learnerID] = e
	}
	return e
}

// TickHandlers receive countdown events. OnTimeout runs once, after the
// engine finished as a timeout.
type TickHandlers struct {
	OnTick    func(timeLeft int)
	OnTimeout func(res *QuizResult, err error)
}

// StartCountdown replaces the learner's countdown with a new one. The
// countdown is released once it ends, whether by timeout or cancellation.
func (s *QuizService) StartCountdown(ctx context.Context, learnerID int64, h TickHandlers) {
	e := s.Engine(learnerID)

	s.mu.Lock()
	if c, ok := s.timers[learnerID]; ok {
		c.cancel()
	}
	tctx, cancel := context.WithCancel(ctx)
	c := &countdown{cancel: cancel}
	s.timers[learnerID] = c
	s.mu.Unlock()

	go func() {
		RunCountdown(tctx, e, s.tick, h)
		s.release(learnerID, c)
	}()
}

// release drops c if it is still the learner's current countdown.
func (s *QuizService) release(learnerID int64, c *countdown) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.cancel()
	if s.timers[learnerID] == c {
		delete(s.timers, learnerID)
	}
}

// StopCountdown cancels the learner's countdown, if any.
func (s *QuizService) StopCountdown(learnerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.timers[learnerID]; ok {
		c.cancel()
		delete(s.timers, learnerID)
	}
}

// Restart stops the countdown and returns the engine to Idle.
func (s *QuizService) Restart(learnerID int64) {
	s.StopCountdown(learnerID)
	s.Engine(learnerID).Restart()
}

// RunCountdown ticks the engine every interval until the context is done or
// the engine leaves Running.
func RunCountdown(ctx context.Context, e *QuizEngine, interval time.Duration, h TickHandlers) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			left, res, err := e.Tick(ctx)
			if res != nil {
				if h.OnTimeout != nil {
					h.OnTimeout(res, err)
				}
				return
			}
			if err != nil {
				// Finished or restarted elsewhere.
				return
			}
			if h.OnTick != nil {
				h.OnTick(left)
			}
		}
	}
}
