package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownStorageDriver        = errors.New("unknown storage driver")
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string  `mapstructure:"env"`       // current application environment (local, dev, production etc)
	TelegramAPIToken string  `mapstructure:"-"`         // Telegram API token loaded from environment
	BotDebug         bool    `mapstructure:"bot_debug"` // log raw Telegram API traffic
	Storage          Storage `mapstructure:"storage"`   // learner storage backend selection
	DB               DB      `mapstructure:"database"`  // database configuration section
	Redis            Redis   `mapstructure:"redis"`     // redis configuration section
	SQLite           SQLite  `mapstructure:"sqlite"`    // sqlite configuration section
	Quiz             Quiz    `mapstructure:"quiz"`      // quiz limits and question bank location
	Minio            Minio   `mapstructure:"minio"`     // object storage for s3:// question banks
	Metrics          Metrics `mapstructure:"metrics"`   // prometheus endpoint
}

// Storage selects the learner key-value backend.
type Storage struct {
	Driver string `mapstructure:"driver"` // memory, postgres, redis or sqlite
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SQLite struct {
	Path string `mapstructure:"path"`
}

// Quiz holds quiz limits and the question bank location.
// QuestionsSource is a file path, a file:// or http(s):// URL, or s3://bucket/object.
// TimeLimit is the countdown start in ticks. A zero FetchTimeout waits for
// the question bank indefinitely.
type Quiz struct {
	QuestionsSource string        `mapstructure:"questions_source"`
	MaxQuestions    int           `mapstructure:"max_questions"`
	TimeLimit       int           `mapstructure:"time_limit"`
	Tick            time.Duration `mapstructure:"tick"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
}

// FetchContext bounds the question bank fetch by FetchTimeout.
func (q Quiz) FetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, q.FetchTimeout)
}

type Minio struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// Metrics configures the Prometheus endpoint. An empty Addr disables it.
type Metrics struct {
	Addr string `mapstructure:"addr"`
}

// Enabled reports whether an object storage endpoint is configured.
func (m Minio) Enabled() bool {
	return m.Endpoint != ""
}

// Load reads configuration from config files and environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("bot_debug", false)
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("sqlite.path", "data/resqed.db")
	v.SetDefault("quiz.questions_source", "assets/data/questions.json")
	v.SetDefault("quiz.max_questions", 10)
	v.SetDefault("quiz.time_limit", 60)
	v.SetDefault("quiz.tick", "1s")
	v.SetDefault("quiz.fetch_timeout", "30s")
	v.SetDefault("minio.use_ssl", true)
	v.SetDefault("metrics.addr", ":9090")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("quiz.questions_source", "QUESTIONS_SOURCE")
	_ = v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	_ = v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	_ = v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	_ = v.BindEnv("metrics.addr", "METRICS_ADDR")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}

	cfg.DB.URL = v.GetString("database_url")

	switch cfg.Storage.Driver {
	case DriverMemory, DriverRedis, DriverSQLite:
	case DriverPostgres:
		if cfg.DB.URL == "" {
			return nil, fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorageDriver, cfg.Storage.Driver)
	}

	return &cfg, nil
}
