package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration shared by every service.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Request limits
	MaxRequestBytes int64 `env:"MAX_REQUEST_BYTES" envDefault:"5242880"` // 5MB

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"` // "postgres"
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"` // "nats"
	QueueURL      string `env:"QUEUE_URL"`

	// Cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"redis"` // "redis" or "none"
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"24h"`

	// LLM
	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"openai"` // "openai" or "stub"
	OpenAIKey       string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	LLMModel        string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	MaxOutputTokens int    `env:"MAX_OUTPUT_TOKENS" envDefault:"800"`
	PromptTemplate  string `env:"PROMPT_TEMPLATE"`

	// Chunked fallback
	PacingDelay      time.Duration `env:"PACING_DELAY" envDefault:"1s"`
	ChunkTokenBudget int           `env:"CHUNK_TOKEN_BUDGET" envDefault:"3000"`
	CharsPerToken    int           `env:"CHARS_PER_TOKEN" envDefault:"4"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
