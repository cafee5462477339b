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

	"github.com/onyx-team/studymate/internal/agents"
	"github.com/onyx-team/studymate/internal/ai"
	"github.com/onyx-team/studymate/internal/curriculum"
	"github.com/onyx-team/studymate/internal/platform/cache"
	"github.com/onyx-team/studymate/internal/platform/config"
	"github.com/onyx-team/studymate/internal/platform/database"
	"github.com/onyx-team/studymate/internal/server"
	"github.com/onyx-team/studymate/internal/study"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(newLogger(cfg.Log))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	catalog, err := curriculum.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	registry := ai.FromCredentials(cfg.Credentials())
	for _, engine := range ai.Engines() {
		slog.Info("engine", "name", engine, "available", registry.Available(engine))
	}

	usage := ai.NewInMemoryUsage()
	registry.Instrument(usage)

	toolkit := func(provider ai.Provider) agents.Toolkit {
		return agents.NewLLMToolkit(provider, agents.WithMaxTokens(cfg.Pipeline.MaxTokens))
	}
	pipeline := study.NewPipeline(registry, toolkit,
		study.WithStepTimeout(time.Duration(cfg.Pipeline.StepTimeout)*time.Second),
	)

	opts := []server.Option{server.WithUsage(usage)}

	// Sessions live in Redis when a cache URL is configured, otherwise in
	// process memory.
	var store study.SessionStore = study.NewMemoryStore()
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			return fmt.Errorf("connecting to cache: %w", err)
		}
		defer c.Close()
		store = study.NewRedisSessionStore(c.Client, time.Duration(cfg.Cache.SessionTTL)*time.Hour)
		opts = append(opts, server.WithReadinessCheck("cache", c.HealthCheck))
		slog.Info("session store: redis")
	} else {
		slog.Info("session store: memory")
	}

	// Run history goes to Postgres when a database URL is configured.
	var history study.HistoryLogger = study.NewMemoryHistoryLogger()
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		pg := study.NewPostgresHistoryLogger(db.Pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
		history = pg
		opts = append(opts, server.WithReadinessCheck("database", db.HealthCheck))
		slog.Info("history logger: postgres")
	} else {
		slog.Info("history logger: memory")
	}

	opts = append(opts, server.WithHistoryLogger(history))
	srv := server.New(store, pipeline, catalog, opts...)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
