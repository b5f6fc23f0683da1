package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/adapter/ai"
	httpadapter "github.com/hx-natthawat/poc-ai-incident-document-generator/internal/adapter/http"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/adapter/persistence"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/adapter/render"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/apikey"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/config"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ports"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ratelimit"
	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := newLogger(cfg.Logging)
	logger.WithField("environment", cfg.Server.Environment).Info("Starting incident report service")

	runs, dbCloser, err := newRunRepository(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize run repository")
	}
	if dbCloser != nil {
		defer dbCloser()
	}

	limiter, err := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
		Enabled:  cfg.RateLimit.Enabled,
		RedisURL: cfg.RateLimit.RedisURL,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize rate limiting")
	}

	keys, err := apikey.Open(cfg.Auth.KeysFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open API key store")
	}
	if cfg.Auth.Enabled && len(keys.List()) == 0 {
		logger.WithField("keys_file", cfg.Auth.KeysFile).
			Warn("Authentication enabled but no API keys issued; use genkey to issue one")
	}

	provider := newSummaryProvider(cfg, logger)
	renderer := render.NewWkhtmltopdfRenderer(cfg.Renderer.WkhtmltopdfPath, logger)
	if err := renderer.Validate(context.Background()); err != nil {
		logger.WithError(err).Warn("wkhtmltopdf unavailable, PDF requests will fall back to markdown")
	}

	reportUC := usecase.NewReportUseCase(provider, renderer, runs, logger, cfg.Report.OutputDir, cfg.Report.RecentLimit)
	reportHandler := httpadapter.NewReportHandler(reportUC, logger)

	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		reportHandler,
		httpadapter.NewAPIKeyMiddleware(keys, cfg.Auth.Enabled),
		httpadapter.NewRateLimitMiddleware(limiter, logger, cfg.RateLimit.Requests, cfg.RateLimit.Window),
		logger,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Fatal("Server error")
		}
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("Shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Graceful shutdown failed")
		}
	}

	logger.Info("Server stopped")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// newRunRepository connects to Postgres when configured, otherwise falls back
// to the in-memory repository
func newRunRepository(cfg config.DatabaseConfig, logger *logrus.Logger) (ports.ReportRunRepository, func(), error) {
	if !cfg.Enabled {
		logger.Info("No database configured, keeping run history in memory")
		return persistence.NewMemoryReportRunRepository(), nil, nil
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	repo := persistence.NewPostgresReportRunRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	logger.Info("Connected to database")
	return repo, func() { db.Close() }, nil
}

func newSummaryProvider(cfg *config.Config, logger *logrus.Logger) ports.SummaryProvider {
	if cfg.Summary.Provider == "openai" {
		logger.WithField("model", cfg.Summary.Model).Info("Using OpenAI summary provider")
		return ai.NewOpenAIProvider(cfg.ToSummaryConfig())
	}
	logger.Info("Using mock summary provider")
	return ai.NewMockSummaryProvider()
}
