package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Database struct {
	Driver         string
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	Path           string
	ConnectRetries int
	RetryDelay     time.Duration
}

type Log struct {
	Level  string
	Format string
}

type Server struct {
	Port     string
	Database Database
	Log      Log
}

type Gateway struct {
	Port               string
	ServerURL          string
	UpstreamTimeout    time.Duration
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
	Log                Log
}

func LoadServer() Server {
	return Server{
		Port: getEnv("PORT", "9090"),
		Database: Database{
			Driver:         strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:           getEnv("DB_HOST", "postgres"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "shareit"),
			Password:       getEnv("DB_PASSWORD", "shareit"),
			Name:           getEnv("DB_NAME", "shareit"),
			Path:           getEnv("DB_PATH", "shareit.db"),
			ConnectRetries: getInt("DB_CONNECT_RETRIES", 10),
			RetryDelay:     getDuration("DB_RETRY_DELAY", 5*time.Second),
		},
		Log: loadLog(),
	}
}

func LoadGateway() Gateway {
	return Gateway{
		Port:               getEnv("PORT", "8080"),
		ServerURL:          strings.TrimRight(getEnv("SHAREIT_SERVER_URL", "http://localhost:9090"), "/"),
		UpstreamTimeout:    getDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		BreakerMaxFailures: getInt("BREAKER_MAX_FAILURES", 5),
		BreakerOpenTimeout: getDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		Log:                loadLog(),
	}
}

func loadLog() Log {
	return Log{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}
}

// NewLogger builds the process logger; unknown levels fall back to info, unknown formats to json.
func NewLogger(cfg Log) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
