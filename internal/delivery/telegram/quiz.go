package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/resqed/resqed-bot/internal/domain/entities"
	"github.com/resqed/resqed-bot/internal/service"
)

func topicDisplayName(topic string) string {
	return entities.TopicName(topic)
}

// quizTopicCourse finds the catalog course a question bank topic belongs to.
func quizTopicCourse(topic string) (string, bool) {
	return entities.IdentifyCourse(entities.TopicName(topic))
}

func difficultyLabel(difficulty string) string {
	switch difficulty {
	case "easy":
		return "🟢 Easy"
	case "medium":
		return "🟡 Medium"
	case "hard":
		return "🔴 Hard"
	default:
		return entities.Capitalize(difficulty)
	}
}

// handleQuizMenu shows the topic selection, or resumes a running quiz.
func (h *Handler) handleQuizMenu(userID int64, messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		e := h.quizService.Engine(userID)

		switch e.State() {
		case service.StateRunning:
			v, err := e.Question()
			if err != nil {
				return err
			}
			return h.drawQuestion(chatID, userID, messageID, v)
		case service.StateFinished:
			h.quizService.Restart(userID)
		}

		bank, err := e.Load()
		switch {
		case errors.Is(err, service.ErrQuestionsLoading):
			return h.send(newPlainMessage(chatID, msgQuestionsLoading))
		case errors.Is(err, service.ErrBankUnavailable):
			return h.send(newPlainMessage(chatID, msgBankUnavailable))
		case err != nil:
			return err
		}

		kb := buildTopicKeyboard(bank.Topics())
		_, err = h.show(chatID, messageID, formatTopicMenu(), &kb)
		return err
	}
}

// handleQuizCallback dispatches quiz sub-actions.
func (h *Handler) handleQuizCallback(cb *tgbotapi.CallbackQuery, data callbackData) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		userID := cb.From.ID
		messageID := cb.Message.MessageID

		switch data.param(0) {
		case quizMenu:
			h.answerCallback(cb.ID, "")
			return h.handleQuizMenu(userID, messageID)(ctx, chatID)

		case quizRestart:
			h.answerCallback(cb.ID, "")
			h.quizService.Restart(userID)
			h.forgetQuizMessage(userID)
			return h.handleQuizMenu(userID, messageID)(ctx, chatID)

		case quizTopic:
			return h.handleTopicSelected(ctx, cb, data)

		case quizDifficulty:
			return h.handleDifficultySelected(ctx, cb, data)

		case quizAnswer:
			return h.handleAnswer(cb, data)

		case quizNext:
			return h.handleNextQuestion(ctx, cb, data)

		default:
			h.logger.Warn("unknown quiz callback", zap.String("data", data.Raw))
			h.answerCallback(cb.ID, "")
			return nil
		}
	}
}

// readyBank returns the question bank of an engine that is ready to start.
// It tells the learner why when it is not.
func (h *Handler) readyBank(cb *tgbotapi.CallbackQuery) (entities.QuestionBank, bool) {
	bank, err := h.quizService.Engine(cb.From.ID).Load()
	switch {
	case err == nil:
		return bank, true
	case errors.Is(err, service.ErrQuestionsLoading):
		h.answerCallback(cb.ID, msgQuestionsLoading)
	case errors.Is(err, service.ErrBankUnavailable):
		h.answerCallback(cb.ID, msgBankUnavailable)
	default:
		h.answerCallback(cb.ID, msgQuizExpired)
	}
	return nil, false
}

func (h *Handler) handleTopicSelected(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) error {
	bank, ok := h.readyBank(cb)
	if !ok {
		return nil
	}

	topics := bank.Topics()
	ti, ok := data.intParam(1)
	if !ok || ti < 0 || ti >= len(topics) {
		h.answerCallback(cb.ID, msgNoQuestions)
		return nil
	}
	h.answerCallback(cb.ID, "")

	topic := topics[ti]
	kb := buildDifficultyKeyboard(ti, bank.Difficulties(topic))
	_, err := h.show(cb.Message.Chat.ID, cb.Message.MessageID, formatDifficultyMenu(topic), &kb)
	return err
}

func (h *Handler) handleDifficultySelected(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) error {
	bank, ok := h.readyBank(cb)
	if !ok {
		return nil
	}

	topics := bank.Topics()
	ti, okT := data.intParam(1)
	di, okD := data.intParam(2)
	if !okT || ti < 0 || ti >= len(topics) {
		h.answerCallback(cb.ID, msgNoQuestions)
		return nil
	}
	topic := topics[ti]
	difficulties := bank.Difficulties(topic)
	if !okD || di < 0 || di >= len(difficulties) {
		h.answerCallback(cb.ID, msgNoQuestions)
		return nil
	}
	difficulty := difficulties[di]

	userID := cb.From.ID
	v, err := h.quizService.Engine(userID).Start(topic, difficulty)
	if errors.Is(err, service.ErrNoQuestions) {
		h.answerCallback(cb.ID, msgNoQuestions)
		return nil
	}
	if err != nil {
		h.answerCallback(cb.ID, msgQuizExpired)
		return nil
	}
	h.answerCallback(cb.ID, "")

	h.logger.Info("quiz started",
		zap.Int64("user_id", userID),
		zap.String("topic", topic),
		zap.String("difficulty", difficulty),
		zap.Int("questions", v.Total),
	)

	if err := h.drawQuestion(cb.Message.Chat.ID, userID, cb.Message.MessageID, v); err != nil {
		return err
	}

	h.quizService.StartCountdown(ctx, userID, service.TickHandlers{
		OnTick: func(int) {
			h.redrawQuestion(userID)
		},
		OnTimeout: func(res *service.QuizResult, err error) {
			h.finishQuiz(userID, res, err)
		},
	})

	return nil
}

func (h *Handler) handleAnswer(cb *tgbotapi.CallbackQuery, data callbackData) error {
	userID := cb.From.ID
	e := h.quizService.Engine(userID)

	num, okN := data.intParam(1)
	option, okO := data.intParam(2)
	current, err := e.Question()
	if err != nil || !okN || !okO || num != current.Number {
		h.answerCallback(cb.ID, msgQuizExpired)
		return nil
	}

	res, err := e.Answer(option)
	switch {
	case errors.Is(err, service.ErrAlreadyAnswered):
		h.answerCallback(cb.ID, msgAlreadyAnswered)
		return nil
	case err != nil:
		h.answerCallback(cb.ID, msgQuizExpired)
		return nil
	}

	if res.Correct {
		h.answerCallback(cb.ID, msgCorrect)
	} else {
		h.answerCallback(cb.ID, msgIncorrect)
	}

	h.redrawQuestion(userID)
	return nil
}

func (h *Handler) handleNextQuestion(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) error {
	userID := cb.From.ID
	e := h.quizService.Engine(userID)

	num, ok := data.intParam(1)
	current, err := e.Question()
	if err != nil || !ok || num != current.Number {
		h.answerCallback(cb.ID, msgQuizExpired)
		return nil
	}

	next, res, err := e.Next(ctx)
	if errors.Is(err, service.ErrNotAnswered) {
		h.answerCallback(cb.ID, "")
		return nil
	}
	h.answerCallback(cb.ID, "")

	if res != nil {
		h.quizService.StopCountdown(userID)
		h.finishQuiz(userID, res, err)
		return nil
	}
	if err != nil {
		return err
	}

	return h.drawQuestion(cb.Message.Chat.ID, userID, cb.Message.MessageID, *next)
}

// drawQuestion shows the question and remembers where it is drawn.
func (h *Handler) drawQuestion(chatID, userID int64, messageID int, v service.QuestionView) error {
	kb := buildQuizAnswerKeyboard(v)
	id, err := h.show(chatID, messageID, formatQuizQuestion(v), &kb)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.quizMessages[userID] = quizMessage{chatID: chatID, messageID: id}
	h.mu.Unlock()

	return nil
}

// redrawQuestion refreshes the running quiz message after a tick or an answer.
func (h *Handler) redrawQuestion(userID int64) {
	qm, ok := h.quizMessage(userID)
	if !ok {
		return
	}

	v, err := h.quizService.Engine(userID).Question()
	if err != nil {
		return
	}

	kb := buildQuizAnswerKeyboard(v)
	_, _ = h.show(qm.chatID, qm.messageID, formatQuizQuestion(v), &kb)
}

// finishQuiz replaces the quiz message with the result.
func (h *Handler) finishQuiz(userID int64, res *service.QuizResult, err error) {
	if err != nil {
		h.logger.Error("failed to record quiz result",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	h.logger.Info("quiz finished",
		zap.Int64("user_id", userID),
		zap.String("topic", res.Topic),
		zap.Int("score", res.Score),
		zap.Int("total", res.Total),
		zap.Bool("timed_out", res.TimedOut),
	)
	h.metrics.QuizFinished(res.Topic, res.Difficulty, res.TimedOut, string(res.Awarded))

	qm, ok := h.quizMessage(userID)
	if !ok {
		return
	}
	h.forgetQuizMessage(userID)

	kb := buildQuizResultKeyboard()
	_, _ = h.show(qm.chatID, qm.messageID, formatQuizResult(res), &kb)
}

func (h *Handler) quizMessage(userID int64) (quizMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	qm, ok := h.quizMessages[userID]
	return qm, ok
}

func (h *Handler) forgetQuizMessage(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.quizMessages, userID)
}
