package logger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/resqed/resqed-bot/internal/config"
)

// New builds the application logger. Production logs JSON at info level,
// "test" discards everything, and any other environment logs
// human-readable output at debug level.
func New(cfg *config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	switch cfg.Env {
	case "production", "prod":
		logger, err = zap.NewProduction()
	case "test":
		return zap.NewNop(), nil
	default:
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.With(
		zap.String("env", cfg.Env),
		zap.String("storage", cfg.Storage.Driver),
	), nil
}
