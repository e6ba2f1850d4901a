package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/resqed/resqed-bot/internal/config"
	"github.com/resqed/resqed-bot/internal/delivery/telegram"
	"github.com/resqed/resqed-bot/internal/infra/postgres"
	"github.com/resqed/resqed-bot/internal/infra/redis"
	"github.com/resqed/resqed-bot/internal/infra/sqlite"
	"github.com/resqed/resqed-bot/internal/logger"
	"github.com/resqed/resqed-bot/internal/metrics"
	"github.com/resqed/resqed-bot/internal/repository"
	"github.com/resqed/resqed-bot/internal/service"
	"github.com/resqed/resqed-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil && !errors.Is(err, context.Canceled) {
		lg.Fatal("bot stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = cfg.BotDebug

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "dashboard", Description: "Your progress, badges and leaderboard"},
		{Command: "courses", Description: "All disaster preparedness courses"},
		{Command: "course", Description: "Open a course (usage: /course floods)"},
		{Command: "quiz", Description: "Take a timed quiz"},
		{Command: "badges", Description: "Every badge you can earn"},
		{Command: "reset", Description: "Reset all course and quiz progress"},
		{Command: "help", Description: "Help"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	kv, closeKV, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeKV()
	lg.Info("learner storage ready", zap.String("driver", cfg.Storage.Driver))

	// Initialize repositories and services.
	progressRepo := repository.NewProgressRepository(kv, lg)
	badgeRepo := repository.NewBadgeRepository(kv, lg)
	historyRepo := repository.NewHistoryRepository(kv, lg)
	resetRepo := repository.NewResetRepository(kv)

	source, err := questionSource(cfg)
	if err != nil {
		return err
	}

	fetchCtx, cancelFetch := cfg.Quiz.FetchContext(ctx)
	defer cancelFetch()

	loader := service.NewQuestionBankLoader(repository.NewQuestionRepository(source), lg)
	loader.Start(fetchCtx)

	quizService := service.NewQuizService(
		loader,
		badgeRepo,
		historyRepo,
		service.QuizConfig{
			MaxQuestions: cfg.Quiz.MaxQuestions,
			TimeLimit:    cfg.Quiz.TimeLimit,
		},
		cfg.Quiz.Tick,
	)

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr, lg); err != nil {
				lg.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	handler := telegram.NewHandler(
		bot,
		lg,
		service.NewCourseService(progressRepo),
		service.NewDashboardService(progressRepo, badgeRepo, historyRepo, nil),
		quizService,
		service.NewResetService(resetRepo, quizService),
		m,
	)

	err = handler.Run(ctx)
	lg.Info("shutdown signal received")
	return err
}

// openStore connects the configured learner storage backend.
func openStore(ctx context.Context, cfg *config.Config) (storage.KV, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		kv := postgres.NewKVStore(pool)
		if err := kv.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return kv, pool.Close, nil

	case config.DriverRedis:
		client, err := redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return redis.NewKVStore(client), func() { _ = client.Close() }, nil

	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("sqlite: %w", err)
			}
		}
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		return sqlite.NewKVStore(db), func() { _ = db.Close() }, nil

	default:
		return storage.NewMemoryStore(), func() {}, nil
	}
}

// questionSource resolves the configured question bank location.
func questionSource(cfg *config.Config) (repository.QuestionSource, error) {
	var mc *minio.Client
	if cfg.Minio.Enabled() {
		var err error
		mc, err = minio.New(cfg.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
	}

	return repository.NewQuestionSource(cfg.Quiz.QuestionsSource, mc, &http.Client{Timeout: cfg.Quiz.FetchTimeout})
}
