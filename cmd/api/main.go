package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bennettabowman-ui/conkord/internal/api"
	"github.com/bennettabowman-ui/conkord/internal/billing"
	"github.com/bennettabowman-ui/conkord/internal/config"
	"github.com/bennettabowman-ui/conkord/internal/llm"
	"github.com/bennettabowman-ui/conkord/internal/observability"
	"github.com/bennettabowman-ui/conkord/internal/repository/postgres"
	rediscache "github.com/bennettabowman-ui/conkord/internal/repository/redis"
	"github.com/bennettabowman-ui/conkord/internal/services/analyzer"
	"github.com/bennettabowman-ui/conkord/internal/services/crawler"
	"github.com/bennettabowman-ui/conkord/internal/services/enrich"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
	"github.com/bennettabowman-ui/conkord/internal/storage"
)

func main() {
	// Load .env if present; environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.App.Environment, cfg.GetLogLevel())
	defer logger.Sync()

	logger.Info("Starting Conkord API",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// Connect to PostgreSQL (optional; anonymous scans work without it)
	var db *postgres.DB
	var repos *postgres.Repositories
	db, err = postgres.New(cfg.Database)
	if err != nil {
		logger.Warn("Failed to connect to database, persistence disabled", zap.Error(err))
		db = nil
	} else {
		defer db.Close()
		repos = postgres.NewRepositories(db.DB)
		logger.Info("Connected to PostgreSQL",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
		)
	}

	// Connect to Redis (optional)
	var cache *rediscache.Cache
	cache, err = rediscache.New(cfg.Redis)
	if err != nil {
		logger.Warn("Failed to connect to Redis, caching disabled", zap.Error(err))
		cache = nil
	} else {
		defer cache.Close()
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	// Claude client (optional; the pipeline falls back to deterministic
	// summaries without it)
	var claudeClient *llm.ClaudeClient
	if cfg.Claude.APIKey != "" {
		claudeClient, err = llm.NewClaudeClient(llm.Config{
			APIKey:       cfg.Claude.APIKey,
			Model:        cfg.Claude.Model,
			Timeout:      cfg.Claude.Timeout,
			RateLimitRPM: cfg.Claude.RateLimitRPM,
			CacheTTL:     cfg.Claude.CacheTTL,
		})
		if err != nil {
			logger.Warn("Failed to create Claude client, AI enrichment disabled", zap.Error(err))
			claudeClient = nil
		} else {
			logger.Info("Claude client ready", zap.String("model", claudeClient.GetModel()))
		}
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, AI enrichment disabled")
	}

	// Report storage (optional; share links need it)
	var reports *storage.ReportStore
	if cfg.Storage.Endpoint != "" {
		reports, err = storage.New(cfg.Storage)
		if err != nil {
			logger.Warn("Failed to create report store, share links disabled", zap.Error(err))
			reports = nil
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := reports.EnsureBucket(ctx); err != nil {
				logger.Warn("Failed to ensure report bucket, share links disabled", zap.Error(err))
				reports = nil
			}
			cancel()
		}
	}

	// Stripe billing (optional)
	var billingService *billing.Service
	if cfg.Stripe.SecretKey != "" {
		stripeClient := billing.NewStripeClient(billing.StripeConfig{
			SecretKey:      cfg.Stripe.SecretKey,
			PremiumPriceID: cfg.Stripe.PriceID,
		})
		billingService = billing.NewService(stripeClient, billing.StripeConfig{
			SecretKey:      cfg.Stripe.SecretKey,
			PremiumPriceID: cfg.Stripe.PriceID,
		}, logger)
		logger.Info("Stripe billing enabled")
	}

	metrics := observability.NewMetrics(cfg.App.Name)

	// Analysis pipeline
	crawl := crawler.New(cfg.Crawler, logger)
	extract := extractor.New()
	var enricher *enrich.Service
	if claudeClient != nil {
		enricher = enrich.New(claudeClient, logger)
	} else {
		enricher = enrich.New(nil, logger)
	}
	analyze := analyzer.New(crawl, extract, enricher, logger)

	router := api.NewRouter(api.RouterConfig{
		Analyzer:   analyze,
		Crawler:    crawl,
		Extractor:  extract,
		Enricher:   enricher,
		DB:         db,
		Repos:      repos,
		Cache:      cache,
		Reports:    reports,
		Billing:    billingService,
		Metrics:    metrics,
		Stripe:     cfg.Stripe,
		Logger:     logger,
		EnableCORS: true,
		RateLimit:  cfg.RateLimits.RequestsPerMin,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
		// WriteTimeout must cover a full streamed analysis.
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", zap.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatal("Server error", zap.Error(err))

	case sig := <-shutdown:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed, forcing close", zap.Error(err))
			server.Close()
		}

		logger.Info("Server stopped gracefully")
	}
}

// initLogger creates a configured zap logger
func initLogger(env, level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var logConfig zap.Config
	if env == "production" {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := logConfig.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}
