package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/gcsearch-plugin/internal/cache/memory"
	"github.com/kitbuilder587/gcsearch-plugin/internal/config"
	"github.com/kitbuilder587/gcsearch-plugin/internal/metrics"
	"github.com/kitbuilder587/gcsearch-plugin/internal/plugin"
	"github.com/kitbuilder587/gcsearch-plugin/internal/ratelimit"
	"github.com/kitbuilder587/gcsearch-plugin/internal/repository"
	"github.com/kitbuilder587/gcsearch-plugin/internal/repository/postgres"
	"github.com/kitbuilder587/gcsearch-plugin/internal/search/google"
	"github.com/kitbuilder587/gcsearch-plugin/internal/server"
	"github.com/kitbuilder587/gcsearch-plugin/internal/service"
	"github.com/kitbuilder587/gcsearch-plugin/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gcsearch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	repo, closeRepo, err := openRepository(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	factory := google.NewFactory(google.Config{
		BaseURL:  cfg.Google.BaseURL,
		Timeout:  cfg.Google.Timeout,
		Language: cfg.Google.Language,
	}, logger)

	provider, err := plugin.New(factory, plugin.ToolConfig{Language: cfg.Google.Language}, logger)
	if err != nil {
		return fmt.Errorf("load plugin manifest: %w", err)
	}

	fallback, ok := cfg.DefaultCredentials()
	if !ok {
		logger.Info("no default google credentials configured, callers must supply their own")
	}

	credSvc := service.NewCredentialService(service.CredentialServiceDeps{
		Repo:      repo,
		Validator: provider,
		Logger:    logger,
		Metrics:   m,
		Default:   fallback,
	})

	var cache *memory.Cache[string]
	if cfg.Cache.TTL > 0 {
		cache = memory.NewWithContext[string](ctx, time.Minute)
		defer cache.Stop()
	}

	searchSvc := service.NewSearchService(service.SearchServiceDeps{
		Tool:        provider.Tool(),
		Credentials: credSvc,
		Logger:      logger,
		Metrics:     m,
		RateLimiter: ratelimit.New(ctx, ratelimit.Config{RequestsPerMinute: cfg.RateLimit.RequestsPerMinute}),
		Cache:       cache,
		CacheTTL:    cfg.Cache.TTL,
	})

	g, ctx := errgroup.WithContext(ctx)

	srv := server.New(cfg.HTTP.Addr, server.Deps{
		Provider:    provider,
		Credentials: credSvc,
		Search:      searchSvc,
		Metrics:     m,
		Logger:      logger,
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})

	if cfg.Telegram.Token != "" {
		bot, err := telegram.New(telegram.BotConfig{
			Token: cfg.Telegram.Token,
			Debug: cfg.Telegram.Debug,
		}, credSvc, searchSvc, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			err := bot.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	logger.Info("gcsearch started",
		zap.String("http_addr", cfg.HTTP.Addr),
		zap.Bool("telegram", cfg.Telegram.Token != ""),
		zap.Bool("postgres", cfg.Database.URL != ""),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
	)

	if err := g.Wait(); err != nil {
		logger.Error("stopped with error", zap.Error(err))
		return err
	}

	logger.Info("gcsearch stopped")
	return nil
}

// openRepository - Postgres если задан DATABASE_URL, иначе память процесса.
func openRepository(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repository.CredentialRepository, func(), error) {
	if cfg.URL == "" {
		logger.Warn("DATABASE_URL is not set, stored credentials live in memory only")
		return repository.NewMemoryCredentialRepository(), func() {}, nil
	}

	db, err := postgres.New(ctx, cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	return postgres.NewCredentialRepo(db), db.Close, nil
}
