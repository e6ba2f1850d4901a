package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	data := decodeCallback(cb.Data)

	var fn HandlerFunc
	switch data.Action {
	case actionDashboard:
		fn = h.handleDashboard(cb.From, messageID)
	case actionCourses:
		fn = h.handleCourses(cb.From.ID, messageID)
	case actionCourse:
		fn = h.handleCourse(cb.From.ID, data.param(0), messageID)
	case actionModule:
		fn = h.handleModuleCallback(cb, data)
	case actionBadges:
		fn = h.handleBadges(cb.From.ID, messageID)
	case actionQuiz:
		fn = h.handleQuizCallback(cb, data)
	case actionReset:
		fn = h.handleResetCallback(cb, data)
	default:
		h.logger.Warn("unknown callback", zap.String("data", cb.Data))
		h.answerCallback(cb.ID, "")
		return
	}

	if !toastActions[data.Action] {
		h.answerCallback(cb.ID, "")
	}

	_ = h.withErrorHandling(fn)(ctx, chatID)
}

// toastActions lists actions whose handlers answer the callback themselves.
var toastActions = map[string]bool{
	actionModule: true,
	actionQuiz:   true,
	actionReset:  true,
}

// handleModuleCallback marks a course module complete.
func (h *Handler) handleModuleCallback(cb *tgbotapi.CallbackQuery, data callbackData) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		courseKey := data.param(0)
		index, ok := data.intParam(1)
		if !ok {
			h.logger.Warn("invalid module callback", zap.String("data", data.Raw))
			h.answerCallback(cb.ID, "")
			return nil
		}

		page, err := h.courseService.OpenCourse(ctx, cb.From.ID, courseKey)
		if err != nil {
			h.answerCallback(cb.ID, msgCourseNotFound)
			return nil
		}

		changed, err := page.Activate(ctx, index)
		if err != nil {
			h.logger.Error("failed to save module progress",
				zap.Int64("user_id", cb.From.ID),
				zap.String("course", courseKey),
				zap.Int("module_index", index),
				zap.Error(err),
			)
			h.answerCallback(cb.ID, msgSaveFailed)
			return nil
		}

		if !changed {
			h.answerCallback(cb.ID, msgAlreadyCompleted)
			return nil
		}

		h.logger.Info("module completed",
			zap.Int64("user_id", cb.From.ID),
			zap.String("course", courseKey),
			zap.String("module_id", page.Modules[index].ID),
		)
		h.metrics.ModuleCompleted(courseKey)
		h.answerCallback(cb.ID, msgProgressSaved)

		kb := buildCourseKeyboard(page)
		_, err = h.show(chatID, cb.Message.MessageID, formatCoursePage(page), &kb)
		return err
	}
}

// handleResetCallback runs the reset confirmation dialog.
func (h *Handler) handleResetCallback(cb *tgbotapi.CallbackQuery, data callbackData) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		messageID := cb.Message.MessageID

		switch data.param(0) {
		case resetAsk:
			h.answerCallback(cb.ID, "")
			return h.handleResetPrompt(messageID)(ctx, chatID)

		case resetConfirm:
			h.forgetQuizMessage(cb.From.ID)
			if err := h.resetService.ResetUser(ctx, cb.From.ID); err != nil {
				h.answerCallback(cb.ID, "")
				return err
			}
			h.logger.Info("progress reset", zap.Int64("user_id", cb.From.ID))
			h.metrics.ProgressReset()
			h.answerCallback(cb.ID, msgResetDone)
			_ = h.send(newPlainMessage(chatID, msgResetDone))
			return h.handleDashboard(cb.From, messageID)(ctx, chatID)

		case resetCancel:
			h.answerCallback(cb.ID, msgResetCancelled)
			return h.handleDashboard(cb.From, messageID)(ctx, chatID)

		default:
			h.answerCallback(cb.ID, "")
			return nil
		}
	}
}
