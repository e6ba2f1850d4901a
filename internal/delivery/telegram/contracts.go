package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/resqed/resqed-bot/internal/service"
)

// BotAPI is the part of *tgbotapi.BotAPI the handler uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type CourseService interface {
	OpenCourse(ctx context.Context, learnerID int64, key string) (*service.CoursePage, error)
}

type DashboardService interface {
	Build(ctx context.Context, learnerID int64, learnerName string) *service.Dashboard
	Showcase(ctx context.Context, learnerID int64) *service.BadgeShowcase
}

type QuizService interface {
	Engine(learnerID int64) *service.QuizEngine
	StartCountdown(ctx context.Context, learnerID int64, h service.TickHandlers)
	StopCountdown(learnerID int64)
	Restart(learnerID int64)
}

type ResetService interface {
	ResetUser(ctx context.Context, learnerID int64) error
}

// Recorder counts learner activity.
type Recorder interface {
	ModuleCompleted(course string)
	QuizFinished(topic, difficulty string, timedOut bool, tier string)
	ProgressReset()
}
