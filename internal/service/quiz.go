package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/resqed/resqed-bot/internal/domain/entities"
)

var (
	ErrQuestionsLoading = errors.New("questions are still loading")
	ErrBankUnavailable  = errors.New("question bank unavailable")
	ErrNoQuestions      = errors.New("no questions available for this selection")
	ErrInvalidState     = errors.New("quiz is not in a state that allows this action")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrNotAnswered      = errors.New("question not answered yet")
	ErrInvalidOption    = errors.New("invalid option")
)

// QuizState is the state of a quiz engine.
type QuizState int

const (
	StateIdle QuizState = iota
	StateLoading
	StateReady
	StateRunning
	StateFinished
	StateFailed
)

func (s QuizState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("QuizState(%d)", int(s))
	}
}

const (
	DefaultMaxQuestions = 10
	DefaultTimeLimit    = 60
)

// QuizConfig holds quiz limits.
type QuizConfig struct {
	MaxQuestions int // questions drawn per attempt
	TimeLimit    int // countdown start, in ticks
}

func (c QuizConfig) withDefaults() QuizConfig {
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = DefaultMaxQuestions
	}
	if c.TimeLimit <= 0 {
		c.TimeLimit = DefaultTimeLimit
	}
	return c
}

// BankProvider reports the shared question bank load result.
type BankProvider interface {
	// Result returns the bank once loading finished; loaded is false while pending.
	Result() (bank entities.QuestionBank, loaded bool, err error)
}

// QuestionView is the visible state of the current question.
type QuestionView struct {
	Title    string
	Number   int // 1-based
	Total    int
	Text     string
	Options  []string
	TimeLeft int
	Answered bool
	Selected string
	Answer   string // set once answered
	Correct  bool
}

// AnswerResult is the feedback for a selected option.
type AnswerResult struct {
	Selected string
	Answer   string
	Correct  bool
	Score    int
	IsLast   bool
}

// QuizResult is the outcome of a finished attempt.
type QuizResult struct {
	Topic      string
	Difficulty string
	Score      int
	Total      int
	Percentage float64
	Feedback   entities.FeedbackTier
	TimedOut   bool
	Awarded    entities.BadgeTier // empty when no tier was earned
	Entry      entities.QuizHistoryEntry
}

// Message returns the result text shown to the learner.
func (r *QuizResult) Message() string {
	msg := ""
	if r.TimedOut {
		msg = "⏰ Time's up! "
	}
	msg += fmt.Sprintf("You scored %d out of %d (%.0f%%).", r.Score, r.Total, r.Percentage)

	switch r.Feedback {
	case entities.FeedbackExcellent:
		msg += " Excellent work!"
	case entities.FeedbackGood:
		msg += " Good job!"
	default:
		msg += " Keep practicing!"
	}

	return msg
}

// QuizEngine runs one learner's quiz attempts.
// All methods are safe for concurrent use; the countdown ticks from its own goroutine.
type QuizEngine struct {
	mu sync.Mutex

	learnerID   int64
	provider    BankProvider
	badgeRepo   BadgeRepository
	historyRepo HistoryRepository
	cfg         QuizConfig
	rng         *rand.Rand
	now         func() time.Time

	state      QuizState
	bank       entities.QuestionBank
	loadErr    error
	topic      string
	difficulty string
	questions  []entities.QuizQuestion
	index      int
	score      int
	timeLeft   int
	answered   bool
	selected   string
	result     *QuizResult
}

// NewQuizEngine creates an idle engine.
func NewQuizEngine(
	learnerID int64,
	provider BankProvider,
	badgeRepo BadgeRepository,
	historyRepo HistoryRepository,
	cfg QuizConfig,
	rng *rand.Rand,
	now func() time.Time,
) *QuizEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano() + learnerID))
	}
	if now == nil {
		now = time.Now
	}

	return &QuizEngine{
		learnerID:   learnerID,
		provider:    provider,
		badgeRepo:   badgeRepo,
		historyRepo: historyRepo,
		cfg:         cfg.withDefaults(),
		rng:         rng,
		now:         now,
		state:       StateIdle,
	}
}

// State returns the current state.
func (e *QuizEngine) State() QuizState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Load moves Idle to Loading and, once the shared bank is available, to Ready.
// A failed fetch moves the engine to Failed for good.
func (e *QuizEngine) Load() (entities.QuestionBank, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateReady:
		return e.bank, nil
	case StateFailed:
		return nil, e.loadErr
	case StateIdle, StateLoading:
	default:
		return nil, fmt.Errorf("%w: load in %s", ErrInvalidState, e.state)
	}

	e.state = StateLoading

	bank, loaded, err := e.provider.Result()
	if !loaded {
		return nil, ErrQuestionsLoading
	}
	if err != nil {
		e.state = StateFailed
		e.loadErr = fmt.Errorf("%w: %v", ErrBankUnavailable, err)
		return nil, e.loadErr
	}

	e.bank = bank
	e.state = StateReady
	return bank, nil
}

// Start draws up to MaxQuestions random questions for the pair and starts
// the countdown. With no questions for the pair the engine stays Ready.
func (e *QuizEngine) Start(topic, difficulty string) (QuestionView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return QuestionView{}, fmt.Errorf("%w: start in %s", ErrInvalidState, e.state)
	}

	pool, ok := e.bank.Pool(topic, difficulty)
	if !ok {
		return QuestionView{}, ErrNoQuestions
	}

	e.questions = e.sample(pool)
	e.topic = topic
	e.difficulty = difficulty
	e.index = 0
	e.score = 0
	e.timeLeft = e.cfg.TimeLimit
	e.answered = false
	e.selected = ""
	e.result = nil
	e.state = StateRunning

	return e.view(), nil
}

func (e *QuizEngine) sample(pool []entities.QuizQuestion) []entities.QuizQuestion {
	drawn := make([]entities.QuizQuestion, len(pool))
	copy(drawn, pool)

	e.rng.Shuffle(len(drawn), func(i, j int) {
		drawn[i], drawn[j] = drawn[j], drawn[i]
	})

	if len(drawn) > e.cfg.MaxQuestions {
		drawn = drawn[:e.cfg.MaxQuestions]
	}
	return drawn
}

// Question returns the visible state of the current question.
func (e *QuizEngine) Question() (QuestionView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return QuestionView{}, fmt.Errorf("%w: question in %s", ErrInvalidState, e.state)
	}
	return e.view(), nil
}

func (e *QuizEngine) view() QuestionView {
	q := e.questions[e.index]
	v := QuestionView{
		Title:    entities.QuizTitle(e.topic, e.difficulty),
		Number:   e.index + 1,
		Total:    len(e.questions),
		Text:     q.Q,
		Options:  q.Options,
		TimeLeft: e.timeLeft,
		Answered: e.answered,
		Selected: e.selected,
	}
	if e.answered {
		v.Answer = q.Answer
		v.Correct = q.IsCorrect(e.selected)
	}
	return v
}

// Answer selects an option of the current question by index.
// Each question accepts exactly one answer.
func (e *QuizEngine) Answer(optionIndex int) (AnswerResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return AnswerResult{}, fmt.Errorf("%w: answer in %s", ErrInvalidState, e.state)
	}
	if e.answered {
		return AnswerResult{}, ErrAlreadyAnswered
	}

	q := e.questions[e.index]
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return AnswerResult{}, fmt.Errorf("%w: %d", ErrInvalidOption, optionIndex)
	}

	selected := q.Options[optionIndex]
	correct := q.IsCorrect(selected)
	if correct {
		e.score++
	}
	e.answered = true
	e.selected = selected

	return AnswerResult{
		Selected: selected,
		Answer:   q.Answer,
		Correct:  correct,
		Score:    e.score,
		IsLast:   e.index == len(e.questions)-1,
	}, nil
}

// Next advances after an answered question. On the last question it
// finishes the attempt and returns its result.
func (e *QuizEngine) Next(ctx context.Context) (*QuestionView, *QuizResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return nil, nil, fmt.Errorf("%w: next in %s", ErrInvalidState, e.state)
	}
	if !e.answered {
		return nil, nil, ErrNotAnswered
	}

	if e.index+1 >= len(e.questions) {
		res, err := e.finish(ctx, false)
		return nil, res, err
	}

	e.index++
	e.answered = false
	e.selected = ""

	v := e.view()
	return &v, nil, nil
}

// Tick decrements the countdown. Dropping below zero finishes the attempt
// as a timeout. A tick outside Running does nothing and reports ErrInvalidState.
func (e *QuizEngine) Tick(ctx context.Context) (int, *QuizResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return 0, nil, ErrInvalidState
	}

	e.timeLeft--
	if e.timeLeft < 0 {
		res, err := e.finish(ctx, true)
		return e.timeLeft, res, err
	}

	return e.timeLeft, nil, nil
}

// finish records the attempt. The engine is Finished even if a store write fails.
func (e *QuizEngine) finish(ctx context.Context, timedOut bool) (*QuizResult, error) {
	total := len(e.questions)

	var pct float64
	if total > 0 {
		pct = float64(e.score) / float64(total) * 100
	}

	res := &QuizResult{
		Topic:      e.topic,
		Difficulty: e.difficulty,
		Score:      e.score,
		Total:      total,
		Percentage: pct,
		Feedback:   entities.FeedbackFor(pct),
		TimedOut:   timedOut,
		Entry: entities.NewQuizHistoryEntry(
			entities.AttemptName(e.topic, e.difficulty), e.now(), e.score, total,
		),
	}

	e.state = StateFinished
	e.result = res

	var errs []error
	if err := e.historyRepo.AppendHistory(ctx, e.learnerID, res.Entry); err != nil {
		errs = append(errs, err)
	}

	if tier, ok := entities.TierForScore(e.score); ok {
		res.Awarded = tier
		badges := e.badgeRepo.LoadBadges(ctx, e.learnerID)
		badges.Award(tier, entities.QuizBadge{
			QuizName:   entities.TopicName(e.topic),
			Difficulty: entities.Capitalize(e.difficulty),
		})
		if err := e.badgeRepo.SaveBadges(ctx, e.learnerID, badges); err != nil {
			errs = append(errs, err)
		}
	}

	return res, errors.Join(errs...)
}

// Result returns the outcome of the last finished attempt.
func (e *QuizEngine) Result() *QuizResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Restart returns the engine to Idle. Stored history and badges are kept.
// An engine whose bank failed to load stays Failed.
func (e *QuizEngine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateFailed {
		return
	}

	e.state = StateIdle
	e.topic = ""
	e.difficulty = ""
	e.questions = nil
	e.index = 0
	e.score = 0
	e.timeLeft = 0
	e.answered = false
	e.selected = ""
}
