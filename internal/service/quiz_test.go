package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resqed/resqed-bot/internal/domain/entities"
	"github.com/resqed/resqed-bot/internal/repository"
	"github.com/resqed/resqed-bot/internal/storage"
)

var fixedNow = func() time.Time { return time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC) }

func newEngine(s *stores, provider BankProvider, cfg QuizConfig) *QuizEngine {
	return NewQuizEngine(learnerID, provider, s.badges, s.history, cfg, rand.New(rand.NewSource(1)), fixedNow)
}

func readyEngine(t *testing.T, s *stores, bank entities.QuestionBank) *QuizEngine {
	t.Helper()
	e := newEngine(s, &staticBank{bank: bank, loaded: true}, QuizConfig{})
	_, err := e.Load()
	require.NoError(t, err)
	require.Equal(t, StateReady, e.State())
	return e
}

// play answers the first `correct` questions right and the rest wrong.
func play(t *testing.T, e *QuizEngine, correct int) *QuizResult {
	t.Helper()
	for i := 0; ; i++ {
		option := 1
		if i < correct {
			option = 0
		}
		_, err := e.Answer(option)
		require.NoError(t, err)

		_, res, err := e.Next(context.Background())
		require.NoError(t, err)
		if res != nil {
			return res
		}
	}
}

func TestQuizEngine_LoadPendingThenReady(t *testing.T) {
	provider := &staticBank{}
	e := newEngine(newStores(), provider, QuizConfig{})
	assert.Equal(t, StateIdle, e.State())

	_, err := e.Load()
	assert.ErrorIs(t, err, ErrQuestionsLoading)
	assert.Equal(t, StateLoading, e.State())

	_, err = e.Start("floods", "easy")
	assert.ErrorIs(t, err, ErrInvalidState)

	provider.bank = entities.QuestionBank{"floods": {"easy": questions(3)}}
	provider.loaded = true

	_, err = e.Load()
	require.NoError(t, err)
	assert.Equal(t, StateReady, e.State())
}

func TestQuizEngine_LoadFailureIsFatal(t *testing.T) {
	provider := &staticBank{loaded: true, err: errors.New("404")}
	e := newEngine(newStores(), provider, QuizConfig{})

	_, err := e.Load()
	assert.ErrorIs(t, err, ErrBankUnavailable)
	assert.Equal(t, StateFailed, e.State())

	provider.err = nil
	provider.bank = entities.QuestionBank{"floods": {"easy": questions(3)}}

	_, err = e.Load()
	assert.ErrorIs(t, err, ErrBankUnavailable)

	e.Restart()
	assert.Equal(t, StateFailed, e.State())
}

func TestQuizEngine_StartWithoutQuestionsStaysReady(t *testing.T) {
	e := readyEngine(t, newStores(), entities.QuestionBank{"floods": {"easy": questions(3)}})

	_, err := e.Start("floods", "hard")
	assert.ErrorIs(t, err, ErrNoQuestions)
	_, err = e.Start("volcanoes", "easy")
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, StateReady, e.State())
}

func TestQuizEngine_SmallPoolUsesAllQuestions(t *testing.T) {
	e := readyEngine(t, newStores(), entities.QuestionBank{"floods": {"easy": questions(3)}})

	v, err := e.Start("floods", "easy")
	require.NoError(t, err)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 1, v.Number)
	assert.Equal(t, DefaultTimeLimit, v.TimeLeft)
	assert.Equal(t, "Floods — EASY Quiz", v.Title)
}

func TestQuizEngine_DrawsTenWithoutReplacement(t *testing.T) {
	e := readyEngine(t, newStores(), entities.QuestionBank{"floods": {"easy": questions(15)}})

	v, err := e.Start("floods", "easy")
	require.NoError(t, err)
	require.Equal(t, 10, v.Total)

	seen := map[string]bool{v.Text: true}
	for i := 1; i < v.Total; i++ {
		_, err := e.Answer(0)
		require.NoError(t, err)
		next, _, err := e.Next(context.Background())
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.False(t, seen[next.Text], next.Text)
		seen[next.Text] = true
	}
	assert.Len(t, seen, 10)
}

func TestQuizEngine_AnswerIsOneShot(t *testing.T) {
	e := readyEngine(t, newStores(), entities.QuestionBank{"floods": {"easy": questions(2)}})
	_, err := e.Start("floods", "easy")
	require.NoError(t, err)

	_, _, err = e.Next(context.Background())
	assert.ErrorIs(t, err, ErrNotAnswered)

	_, err = e.Answer(5)
	assert.ErrorIs(t, err, ErrInvalidOption)

	res, err := e.Answer(1)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "wrong", res.Selected)
	assert.Equal(t, "right", res.Answer)
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.IsLast)

	_, err = e.Answer(0)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	v, err := e.Question()
	require.NoError(t, err)
	assert.True(t, v.Answered)
	assert.Equal(t, "right", v.Answer)
	assert.False(t, v.Correct)

	next, res2, err := e.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res2)
	require.NotNil(t, next)
	assert.Equal(t, 2, next.Number)
	assert.False(t, next.Answered)

	ans, err := e.Answer(0)
	require.NoError(t, err)
	assert.True(t, ans.Correct)
	assert.True(t, ans.IsLast)
	assert.Equal(t, 1, ans.Score)
}

func TestQuizEngine_FinishWritesHistoryAndResult(t *testing.T) {
	s := newStores()
	e := readyEngine(t, s, entities.QuestionBank{"forestfire": {"easy": questions(10)}})
	_, err := e.Start("forestfire", "easy")
	require.NoError(t, err)

	res := play(t, e, 8)

	assert.Equal(t, StateFinished, e.State())
	assert.False(t, res.TimedOut)
	assert.Equal(t, 8, res.Score)
	assert.Equal(t, 10, res.Total)
	assert.InDelta(t, 80.0, res.Percentage, 1e-9)
	assert.Equal(t, entities.FeedbackExcellent, res.Feedback)
	assert.Equal(t, "You scored 8 out of 10 (80%). Excellent work!", res.Message())

	history := s.history.LoadHistory(context.Background(), learnerID)
	require.Len(t, history, 1)
	assert.Equal(t, entities.QuizHistoryEntry{Name: "Forest Fire (easy)", Date: "14 Oct 2026", Score: "8 / 10"}, history[0])

	badges := s.badges.LoadBadges(context.Background(), learnerID)
	assert.Equal(t, entities.QuizBadges{
		entities.TierSilver: {QuizName: "Forest Fire", Difficulty: "Easy"},
	}, badges)
}

func TestQuizEngine_BadgeThresholds(t *testing.T) {
	prior := entities.QuizBadge{QuizName: "Old", Difficulty: "Hard"}

	tests := []struct {
		score int
		want  entities.BadgeTier
	}{
		{10, entities.TierGold},
		{9, entities.TierGold},
		{7, entities.TierSilver},
		{5, entities.TierBronze},
		{4, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %d", tt.score), func(t *testing.T) {
			ctx := context.Background()
			s := newStores()
			prev := entities.QuizBadges{
				entities.TierGold:   prior,
				entities.TierSilver: prior,
				entities.TierBronze: prior,
			}
			require.NoError(t, s.badges.SaveBadges(ctx, learnerID, prev))

			e := readyEngine(t, s, entities.QuestionBank{"floods": {"medium": questions(10)}})
			_, err := e.Start("floods", "medium")
			require.NoError(t, err)

			res := play(t, e, tt.score)
			assert.Equal(t, tt.want, res.Awarded)

			got := s.badges.LoadBadges(ctx, learnerID)
			fresh := entities.QuizBadge{QuizName: "Floods", Difficulty: "Medium"}
			for _, tier := range entities.Tiers {
				if tier == tt.want {
					assert.Equal(t, fresh, got[tier], tier)
				} else {
					assert.Equal(t, prior, got[tier], tier)
				}
			}
		})
	}
}

func TestQuizEngine_LowScoreWritesNoBadges(t *testing.T) {
	ctx := context.Background()
	s := newStores()
	e := readyEngine(t, s, entities.QuestionBank{"floods": {"easy": questions(10)}})
	_, err := e.Start("floods", "easy")
	require.NoError(t, err)

	res := play(t, e, 4)
	assert.Empty(t, res.Awarded)
	assert.Equal(t, entities.FeedbackKeepPracticing, res.Feedback)

	_, err = s.kv.Get(ctx, learnerID, repository.QuizBadgesKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestQuizEngine_Timeout(t *testing.T) {
	ctx := context.Background()
	s := newStores()
	e := NewQuizEngine(learnerID, &staticBank{bank: entities.QuestionBank{"floods": {"easy": questions(5)}}, loaded: true},
		s.badges, s.history, QuizConfig{TimeLimit: 3}, rand.New(rand.NewSource(1)), fixedNow)
	_, err := e.Load()
	require.NoError(t, err)
	_, err = e.Start("floods", "easy")
	require.NoError(t, err)

	_, err = e.Answer(0)
	require.NoError(t, err)

	for want := 2; want >= 0; want-- {
		left, res, err := e.Tick(ctx)
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Equal(t, want, left)
	}

	left, res, err := e.Tick(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, -1, left)
	assert.True(t, res.TimedOut)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, "⏰ Time's up! You scored 1 out of 5 (20%). Keep practicing!", res.Message())
	assert.Equal(t, StateFinished, e.State())

	history := s.history.LoadHistory(ctx, learnerID)
	require.Len(t, history, 1)
	assert.Equal(t, "1 / 5", history[0].Score)

	_, res, err = e.Tick(ctx)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Nil(t, res)
	assert.Len(t, s.history.LoadHistory(ctx, learnerID), 1)
}

func TestQuizEngine_RestartKeepsHistory(t *testing.T) {
	ctx := context.Background()
	s := newStores()
	e := readyEngine(t, s, entities.QuestionBank{"floods": {"easy": questions(10)}})
	_, err := e.Start("floods", "easy")
	require.NoError(t, err)
	play(t, e, 9)

	e.Restart()
	assert.Equal(t, StateIdle, e.State())
	assert.Len(t, s.history.LoadHistory(ctx, learnerID), 1)
	assert.Contains(t, s.badges.LoadBadges(ctx, learnerID), entities.TierGold)

	_, err = e.Start("floods", "easy")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = e.Load()
	require.NoError(t, err)
	v, err := e.Start("floods", "easy")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Number)
	assert.Equal(t, DefaultTimeLimit, v.TimeLeft)
}

func TestRunCountdown_TimesOut(t *testing.T) {
	s := newStores()
	e := NewQuizEngine(learnerID, &staticBank{bank: entities.QuestionBank{"floods": {"easy": questions(2)}}, loaded: true},
		s.badges, s.history, QuizConfig{TimeLimit: 2}, rand.New(rand.NewSource(1)), fixedNow)
	_, err := e.Load()
	require.NoError(t, err)
	_, err = e.Start("floods", "easy")
	require.NoError(t, err)

	ticks := make(chan int, 10)
	done := make(chan *QuizResult, 1)

	go RunCountdown(context.Background(), e, time.Millisecond, TickHandlers{
		OnTick:    func(left int) { ticks <- left },
		OnTimeout: func(res *QuizResult, err error) { done <- res },
	})

	select {
	case res := <-done:
		assert.True(t, res.TimedOut)
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not time out")
	}

	close(ticks)
	var seen []int
	for left := range ticks {
		seen = append(seen, left)
	}
	assert.Equal(t, []int{1, 0}, seen)
}

func TestQuizService_StopCountdownPreventsTimeout(t *testing.T) {
	s := newStores()
	provider := &staticBank{bank: entities.QuestionBank{"floods": {"easy": questions(2)}}, loaded: true}
	svc := NewQuizService(provider, s.badges, s.history, QuizConfig{TimeLimit: 1}, 20*time.Millisecond)

	e := svc.Engine(learnerID)
	assert.Same(t, e, svc.Engine(learnerID))

	_, err := e.Load()
	require.NoError(t, err)
	_, err = e.Start("floods", "easy")
	require.NoError(t, err)

	timedOut := make(chan struct{}, 1)
	svc.StartCountdown(context.Background(), learnerID, TickHandlers{
		OnTimeout: func(*QuizResult, error) { timedOut <- struct{}{} },
	})
	svc.Restart(learnerID)

	select {
	case <-timedOut:
		t.Fatal("timeout fired after restart")
	case <-time.After(100 * time.Millisecond):
	}

	assert.Equal(t, StateIdle, e.State())
	assert.Empty(t, s.history.LoadHistory(context.Background(), learnerID))
}

func currentCountdown(svc *QuizService, learnerID int64) *countdown {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.timers[learnerID]
}

func TestQuizService_TimeoutReleasesCountdown(t *testing.T) {
	s := newStores()
	provider := &staticBank{bank: entities.QuestionBank{"floods": {"easy": questions(2)}}, loaded: true}
	svc := NewQuizService(provider, s.badges, s.history, QuizConfig{TimeLimit: 1}, time.Millisecond)

	e := svc.Engine(learnerID)
	_, err := e.Load()
	require.NoError(t, err)
	_, err = e.Start("floods", "easy")
	require.NoError(t, err)

	timedOut := make(chan struct{}, 1)
	svc.StartCountdown(context.Background(), learnerID, TickHandlers{
		OnTimeout: func(*QuizResult, error) { timedOut <- struct{}{} },
	})

	select {
	case <-timedOut:
	case <-time.After(time.Second):
		t.Fatal("countdown did not time out")
	}

	assert.Eventually(t, func() bool {
		return currentCountdown(svc, learnerID) == nil
	}, time.Second, time.Millisecond)
	assert.Equal(t, StateFinished, e.State())
}

func TestQuizService_ReplacedCountdownKeepsNewOne(t *testing.T) {
	s := newStores()
	provider := &staticBank{bank: entities.QuestionBank{"floods": {"easy": questions(2)}}, loaded: true}
	svc := NewQuizService(provider, s.badges, s.history, QuizConfig{TimeLimit: 60}, 20*time.Millisecond)
	t.Cleanup(func() { svc.Restart(learnerID) })

	e := svc.Engine(learnerID)
	_, err := e.Load()
	require.NoError(t, err)
	_, err = e.Start("floods", "easy")
	require.NoError(t, err)

	svc.StartCountdown(context.Background(), learnerID, TickHandlers{})
	first := currentCountdown(svc, learnerID)
	svc.StartCountdown(context.Background(), learnerID, TickHandlers{})
	second := currentCountdown(svc, learnerID)

	require.NotNil(t, first)
	require.NotSame(t, first, second)

	time.Sleep(50 * time.Millisecond)
	assert.Same(t, second, currentCountdown(svc, learnerID))
}
