package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/resqed/resqed-bot/internal/domain/entities"
	"github.com/resqed/resqed-bot/internal/service"
)

// handleStart greets the learner and shows the dashboard.
func (h *Handler) handleStart(from *tgbotapi.User) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := h.send(newMessage(chatID, welcomeMessage(from.FirstName))); err != nil {
			return err
		}
		return h.handleDashboard(from, 0)(ctx, chatID)
	}
}

// handleDashboard renders the dashboard, editing messageID when set.
func (h *Handler) handleDashboard(from *tgbotapi.User, messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.logger.Debug("rendering dashboard", zap.Int64("user_id", from.ID))

		d := h.dashboardService.Build(ctx, from.ID, learnerName(from.FirstName))
		kb := buildDashboardKeyboard(d)
		_, err := h.show(chatID, messageID, formatDashboard(d), &kb)
		return err
	}
}

// handleCourses renders the course list.
func (h *Handler) handleCourses(userID int64, messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		d := h.dashboardService.Build(ctx, userID, "")
		kb := buildCourseListKeyboard(d)
		_, err := h.show(chatID, messageID, formatCourseList(d), &kb)
		return err
	}
}

// handleCourseCommand opens a course by key or by a name such as "floods" or "forest fire".
func (h *Handler) handleCourseCommand(userID int64, arg string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if arg == "" {
			return h.send(newPlainMessage(chatID, msgCourseUsage))
		}

		key, ok := resolveCourse(arg)
		if !ok {
			return h.send(newPlainMessage(chatID, msgCourseNotFound))
		}

		return h.handleCourse(userID, key, 0)(ctx, chatID)
	}
}

// resolveCourse maps a course key or free-form course name to a course key.
func resolveCourse(arg string) (string, bool) {
	for _, c := range entities.Catalog {
		if strings.EqualFold(c.Key, arg) {
			return c.Key, true
		}
	}
	return entities.IdentifyCourse(arg)
}

// handleCourse renders a course page.
func (h *Handler) handleCourse(userID int64, courseKey string, messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		page, err := h.courseService.OpenCourse(ctx, userID, courseKey)
		if errors.Is(err, service.ErrCourseNotIdentified) {
			return h.send(newPlainMessage(chatID, msgCourseNotFound))
		}
		if err != nil {
			return err
		}

		kb := buildCourseKeyboard(page)
		_, err = h.show(chatID, messageID, formatCoursePage(page), &kb)
		return err
	}
}

// handleBadges renders the badge page.
func (h *Handler) handleBadges(userID int64, messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		sc := h.dashboardService.Showcase(ctx, userID)
		kb := buildBadgesKeyboard()
		_, err := h.show(chatID, messageID, formatBadgeShowcase(sc), &kb)
		return err
	}
}

// handleResetPrompt asks for reset confirmation.
func (h *Handler) handleResetPrompt(messageID int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		kb := buildResetConfirmKeyboard()
		_, err := h.show(chatID, messageID, md(msgResetPrompt), &kb)
		return err
	}
}
