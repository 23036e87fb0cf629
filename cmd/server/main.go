package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studysync/studysync/internal/ai"
	"github.com/studysync/studysync/internal/generator"
	"github.com/studysync/studysync/internal/path"
	"github.com/studysync/studysync/internal/platform/cache"
	"github.com/studysync/studysync/internal/platform/config"
	"github.com/studysync/studysync/internal/platform/database"
	"github.com/studysync/studysync/internal/resources"
	"github.com/studysync/studysync/internal/server"
	"github.com/studysync/studysync/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	router, err := buildRouter(cfg)
	if err != nil {
		slog.Error("failed to configure AI providers", "error", err)
		os.Exit(1)
	}
	usage := ai.NewUsageTracker()
	router.SetUsageTracker(usage)

	gen, err := generator.New(router)
	if err != nil {
		slog.Error("failed to build generator", "error", err)
		os.Exit(1)
	}

	readyChecks := map[string]func(context.Context) error{}

	var searchCache *cache.Cache
	if cfg.Cache.URL != "" {
		searchCache, err = cache.Connect(ctx, cfg.Cache)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer searchCache.Close()
		readyChecks["cache"] = searchCache.HealthCheck
	}

	finder, err := buildFinder(cfg, router, searchCache)
	if err != nil {
		slog.Error("failed to build resource finder", "error", err)
		os.Exit(1)
	}

	pathStore, cleanup, err := buildStore(ctx, cfg, readyChecks)
	if err != nil {
		slog.Error("failed to build store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	orchestrator, err := path.NewOrchestrator(path.OrchestratorConfig{
		Curriculum: gen,
		Quizzes:    gen,
		Resources:  finder,
	})
	if err != nil {
		slog.Error("failed to build orchestrator", "error", err)
		os.Exit(1)
	}

	api, err := server.New(server.Config{
		Store:       pathStore,
		Runner:      orchestrator,
		Assessments: gen,
		Guides:      gen,
		Usage:       usage,
		ReadyChecks: readyChecks,
	})
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     api.Handler(),
		ReadTimeout: 10 * time.Second,
		// Write timeout stays off: the SSE and WebSocket streams hold
		// their connections for the whole generation run.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	level := parseLogLevel(cfg.Level)
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildRouter registers every AI provider that has credentials configured.
// Registration order sets the fallback order.
func buildRouter(cfg *config.Config) (*ai.Router, error) {
	router := ai.NewRouter()

	if cfg.AI.Anthropic.APIKey != "" {
		provider, err := ai.NewAnthropicProvider(cfg.AI.Anthropic.APIKey)
		if err != nil {
			return nil, fmt.Errorf("anthropic provider: %w", err)
		}
		router.Register("anthropic", provider)
	}
	if cfg.AI.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.AI.OpenAI.APIKey))
	}
	if cfg.AI.DeepSeek.APIKey != "" {
		router.Register("deepseek", ai.NewDeepSeekProvider(cfg.AI.DeepSeek.APIKey))
	}

	if !router.HasProvider() {
		return nil, fmt.Errorf("no AI provider configured")
	}
	return router, nil
}

func buildFinder(cfg *config.Config, relevance resources.Completer, searchCache *cache.Cache) (*resources.Finder, error) {
	policy, err := resources.LoadPolicy(cfg.Resources.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("loading resource policy: %w", err)
	}
	return resources.NewFinder(resources.FinderConfig{
		Videos:    resources.NewYouTubeSearcher(),
		Articles:  resources.NewDuckDuckGoSearcher(),
		Policy:    policy,
		Relevance: relevance,
		Cache:     searchCache,
	})
}

// buildStore selects PostgreSQL when a database URL is configured and falls
// back to the in-memory store otherwise.
func buildStore(ctx context.Context, cfg *config.Config, readyChecks map[string]func(context.Context) error) (store.PathStore, func(), error) {
	if cfg.Database.URL == "" {
		slog.Info("no database configured, using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	pgStore, err := store.NewPostgresStore(ctx, db.Pool)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	readyChecks["database"] = db.HealthCheck
	return pgStore, db.Close, nil
}
