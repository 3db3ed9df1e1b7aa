package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/api/handlers"
	"github.com/bennettabowman-ui/conkord/internal/api/middleware"
	"github.com/bennettabowman-ui/conkord/internal/billing"
	"github.com/bennettabowman-ui/conkord/internal/config"
	"github.com/bennettabowman-ui/conkord/internal/observability"
	"github.com/bennettabowman-ui/conkord/internal/repository/postgres"
	rediscache "github.com/bennettabowman-ui/conkord/internal/repository/redis"
	"github.com/bennettabowman-ui/conkord/internal/services/analyzer"
	"github.com/bennettabowman-ui/conkord/internal/services/enrich"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
	"github.com/bennettabowman-ui/conkord/internal/storage"
	"github.com/bennettabowman-ui/conkord/pkg/httputil"
)

// Router holds the HTTP router and its dependencies.
type Router struct {
	chi.Router
	logger *zap.Logger
}

// RouterConfig contains configuration for the router. Repos, Cache, Reports,
// Billing, and Metrics are each optional; the analysis stream works with all
// of them absent.
type RouterConfig struct {
	Analyzer   *analyzer.Analyzer
	Crawler    analyzer.Crawler
	Extractor  *extractor.Extractor
	Enricher   *enrich.Service
	DB         *postgres.DB
	Repos      *postgres.Repositories
	Cache      *rediscache.Cache
	Reports    *storage.ReportStore
	Billing    *billing.Service
	Metrics    *observability.Metrics
	Stripe     config.StripeConfig
	Logger     *zap.Logger
	EnableCORS bool
	RateLimit  int
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Handler)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Handler)

	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Identity-Token", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	var users middleware.UserResolver
	if cfg.Repos != nil {
		users = cfg.Repos.Users
	}
	r.Use(middleware.NewIdentityMiddleware(users, cfg.Logger).Handler)

	if cfg.Cache != nil && cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimitMiddleware(cfg.Cache, cfg.RateLimit, true).Handler)
	}

	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.HTTPMiddleware)
		r.Method("GET", "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(cfg.DB, cfg.Cache))

	analysisHandler := handlers.NewAnalysisHandler(cfg.Analyzer, cfg.Repos, cfg.Cache, cfg.Reports, cfg.Metrics, cfg.Logger)
	generateHandler := handlers.NewGenerateHandler(cfg.Crawler, cfg.Extractor, cfg.Enricher, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", analysisHandler.Analyze)
			r.Get("/", analysisHandler.List)
			r.Get("/{id}", analysisHandler.Get)
			r.Post("/{id}/share", analysisHandler.Share)
		})

		r.Route("/generate", func(r chi.Router) {
			r.Post("/schema", generateHandler.Schema)
			r.Post("/llms-txt", generateHandler.LLMSTxt)
		})

		if cfg.Billing != nil {
			billingHandler := handlers.NewBillingHandler(cfg.Billing, cfg.Stripe, cfg.Logger)
			r.Route("/billing", func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Post("/checkout", billingHandler.Checkout)
				r.Get("/subscription", billingHandler.Subscription)
			})
		}
	})

	return &Router{
		Router: r,
		logger: cfg.Logger,
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "conkord-api",
	})
}

// readyHandler checks optional dependencies. Absent collaborators count as
// ready; configured ones must respond.
func readyHandler(db *postgres.DB, cache *rediscache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string)
		allHealthy := true

		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				checks["database"] = "unhealthy: " + err.Error()
				allHealthy = false
			} else {
				checks["database"] = "healthy"
			}
		} else {
			checks["database"] = "not configured"
		}

		if cache != nil {
			if err := cache.Health(r.Context()); err != nil {
				checks["redis"] = "unhealthy: " + err.Error()
				allHealthy = false
			} else {
				checks["redis"] = "healthy"
			}
		} else {
			checks["redis"] = "not configured"
		}

		status := http.StatusOK
		statusText := "ready"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			statusText = "not ready"
		}

		httputil.JSON(w, status, map[string]any{
			"status": statusText,
			"checks": checks,
		})
	}
}
