package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Supported LLM providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// Supported storage backends.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	LLMProvider     string
	ModelName       string
	AnthropicAPIKey string
	GeminiAPIKey    string

	StorageBackend string
	RedisURL       string
	PostgresDSN    string
	DataDir        string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderAnthropic)),
		ModelName:       getEnv("MODEL_NAME", "claude-sonnet-4-20250514"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendRedis)),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		DataDir:        getEnv("DATA_DIR", "./data"),
	}

	switch cfg.LLMProvider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER is %q", ProviderAnthropic)
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER is %q", ProviderGemini)
		}
	case ProviderMock:
		// No credentials needed; used for local development and tests.
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER %q (supported: anthropic, gemini, mock)", cfg.LLMProvider)
	}

	switch cfg.StorageBackend {
	case BackendRedis, BackendMemory:
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required when STORAGE_BACKEND is %q", BackendPostgres)
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q (supported: redis, postgres, memory)", cfg.StorageBackend)
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
