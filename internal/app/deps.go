package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"caption-digest/internal/cache"
	"caption-digest/internal/config"
	"caption-digest/internal/llm"
	"caption-digest/internal/logger"
	"caption-digest/internal/queue"
	"caption-digest/internal/store"
	"caption-digest/internal/summarize"
)

// Deps bundles the runtime dependencies shared by the gateway and workers.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Store  store.Store
	Queue  queue.Queue
}

// SummarizerDeps adds what the summarizer worker needs on top of Deps.
type SummarizerDeps struct {
	Deps
	Cache      cache.Cache
	Summarizer *summarize.Orchestrator
}

// LoadEnv reads an optional .env file, then the process environment.
func LoadEnv() (config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return config.Load(), nil
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return Deps{}, err
	}
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return Deps{Config: cfg, Log: log, Store: st, Queue: q}, nil
}

// BuildSummarizer builds Deps plus the LLM client, cache and orchestrator.
func BuildSummarizer() (SummarizerDeps, error) {
	deps, err := Build()
	if err != nil {
		return SummarizerDeps{}, err
	}
	client, err := BuildLLM(deps.Config, deps.Log)
	if err != nil {
		return SummarizerDeps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return SummarizerDeps{
		Deps:       deps,
		Cache:      buildCache(deps.Config, deps.Log),
		Summarizer: NewOrchestrator(deps.Config, deps.Log, client),
	}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

// BuildLLM returns the configured summarization client.
func BuildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	case "stub":
		log.Info("using stub LLM client")
		return llm.NewStubClient(0), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: openai, stub)", cfg.LLMProvider)
	}
}

// buildCache falls back to a no-op cache when Redis is disabled or down;
// summaries are still produced, only recomputed.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.CacheProvider != "redis" {
		log.Info("summary cache disabled", "provider", cfg.CacheProvider)
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis summary cache", "addr", cfg.RedisAddr)
	return c
}

// NewOrchestrator wires the chunked-fallback tuning from config.
func NewOrchestrator(cfg config.Config, log *slog.Logger, client llm.Client) *summarize.Orchestrator {
	return summarize.New(client, log, summarize.Options{
		PacingDelay:      cfg.PacingDelay,
		ChunkTokenBudget: cfg.ChunkTokenBudget,
		CharsPerToken:    cfg.CharsPerToken,
	})
}

// SummarySettings turns config into the per-call summarization settings.
func SummarySettings(cfg config.Config) summarize.Settings {
	template := cfg.PromptTemplate
	if template == "" {
		template = summarize.DefaultPromptTemplate
	}
	return summarize.Settings{
		Model:           cfg.LLMModel,
		MaxOutputTokens: cfg.MaxOutputTokens,
		PromptTemplate:  template,
	}
}
