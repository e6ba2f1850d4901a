package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// quizMessage locates the message a learner's running quiz is drawn in.
type quizMessage struct {
	chatID    int64
	messageID int
}

type Handler struct {
	bot              BotAPI
	logger           *zap.Logger
	courseService    CourseService
	dashboardService DashboardService
	quizService      QuizService
	resetService     ResetService
	metrics          Recorder

	mu           sync.Mutex
	quizMessages map[int64]quizMessage
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	courseService CourseService,
	dashboardService DashboardService,
	quizService QuizService,
	resetService ResetService,
	metrics Recorder,
) *Handler {
	return &Handler{
		bot:              bot,
		logger:           logger,
		courseService:    courseService,
		dashboardService: dashboardService,
		quizService:      quizService,
		resetService:     resetService,
		metrics:          metrics,
		quizMessages:     make(map[int64]quizMessage),
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram updates channel closed")
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID

	if !update.Message.IsCommand() {
		_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	var fn HandlerFunc
	switch update.Message.Command() {
	case "start":
		fn = h.handleStart(from)
	case "help":
		fn = func(ctx context.Context, chatID int64) error {
			return h.send(newMessage(chatID, helpMessage()))
		}
	case "dashboard", "progress":
		fn = h.handleDashboard(from, 0)
	case "courses":
		fn = h.handleCourses(from.ID, 0)
	case "course":
		fn = h.handleCourseCommand(from.ID, strings.TrimSpace(update.Message.CommandArguments()))
	case "quiz":
		fn = h.handleQuizMenu(from.ID, 0)
	case "badges":
		fn = h.handleBadges(from.ID, 0)
	case "reset":
		fn = h.handleResetPrompt(0)
	default:
		_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	_ = h.withErrorHandling(fn)(ctx, chatID)
}

func (h *Handler) sendError(chatID int64, err string) {
	_ = h.send(newPlainMessage(chatID, err))
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}

// show sends text as a new message, or edits messageID when it is set.
// It returns the id of the message that now shows the text.
func (h *Handler) show(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) (int, error) {
	if messageID != 0 {
		edit := newEdit(chatID, messageID, text)
		edit.ReplyMarkup = kb
		if _, err := h.bot.Send(edit); err != nil && !isNotModified(err) {
			h.logger.Error("failed to edit telegram message",
				zap.Int64("chat_id", chatID),
				zap.Int("message_id", messageID),
				zap.Error(err),
			)
			return messageID, err
		}
		return messageID, nil
	}

	msg := newMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := h.bot.Send(msg)
	if err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return 0, err
	}
	return sent.MessageID, nil
}

// answerCallback removes the user's "clock", optionally with a toast.
func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}

// isNotModified reports Telegram's rejection of an edit that changes nothing.
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
