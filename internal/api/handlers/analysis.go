package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/api/middleware"
	"github.com/bennettabowman-ui/conkord/internal/billing"
	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/observability"
	"github.com/bennettabowman-ui/conkord/internal/repository/postgres"
	rediscache "github.com/bennettabowman-ui/conkord/internal/repository/redis"
	"github.com/bennettabowman-ui/conkord/internal/services/analyzer"
	"github.com/bennettabowman-ui/conkord/internal/services/crawler"
	"github.com/bennettabowman-ui/conkord/internal/storage"
	"github.com/bennettabowman-ui/conkord/pkg/httputil"
)

// AnalysisHandler runs analyses and serves persisted runs.
type AnalysisHandler struct {
	analyzer *analyzer.Analyzer
	repos    *postgres.Repositories
	cache    *rediscache.Cache
	reports  *storage.ReportStore
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAnalysisHandler creates an analysis handler. repos, cache, reports, and
// metrics may each be nil; the pipeline itself never depends on them.
func NewAnalysisHandler(
	a *analyzer.Analyzer,
	repos *postgres.Repositories,
	cache *rediscache.Cache,
	reports *storage.ReportStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: a,
		repos:    repos,
		cache:    cache,
		reports:  reports,
		metrics:  metrics,
		logger:   logger,
	}
}

type analyzeRequest struct {
	URL string `json:"url"`
}

// Analyze handles POST /api/v1/analyses. It streams NDJSON progress events
// followed by one terminal complete or error event.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		httputil.ErrorFromDomain(w, domain.ValidationError("url", "url is required"))
		return
	}

	user, _ := middleware.GetUser(r.Context())
	if err := billing.CheckEligibility(user); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	stream, ok := httputil.NewNDJSONWriter(w)
	if !ok {
		httputil.JSONError(w, http.StatusInternalServerError, domain.ErrCodeInternal, "Streaming unsupported", nil)
		return
	}

	start := time.Now()
	for event := range h.analyzer.Analyze(r.Context(), req.URL) {
		if err := stream.Write(event); err != nil {
			h.logger.Debug("client dropped analysis stream", zap.Error(err))
			return
		}

		switch ev := event.(type) {
		case domain.CompleteEvent:
			h.recordComplete(r, user, ev.Result, start)
		case domain.ErrorEvent:
			if h.metrics != nil {
				h.metrics.RecordAnalysis("error", time.Since(start), 0, 0)
			}
		}
	}
}

// recordComplete persists and caches a successful run; failures here are
// logged but never surfaced into an already-delivered result.
func (h *AnalysisHandler) recordComplete(r *http.Request, user *domain.User, result *domain.AnalysisResult, start time.Time) {
	if h.metrics != nil {
		h.metrics.RecordAnalysis("complete", time.Since(start), result.PagesAnalyzed, result.Scores.Total)
		for _, b := range result.Blockers {
			h.metrics.RecordBlocker(string(b.Pillar))
		}
	}

	if h.cache != nil {
		if origin, err := crawler.NormalizeOrigin(result.URL); err == nil {
			if err := h.cache.SetResult(r.Context(), origin, result); err != nil {
				h.logger.Warn("caching result failed", zap.Error(err))
			}
		}
	}

	if user == nil || h.repos == nil {
		return
	}

	analysis := domain.NewAnalysis(user.ID, result)
	if err := h.repos.Analyses.Save(r.Context(), analysis); err != nil {
		h.logger.Error("saving analysis failed", zap.Error(err), zap.String("url", result.URL))
		return
	}
	if err := h.repos.Users.IncrementScanCount(r.Context(), user.ID); err != nil {
		h.logger.Error("incrementing scan count failed", zap.Error(err), zap.String("user_id", user.ID.String()))
	}
}

// List handles GET /api/v1/analyses.
func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || h.repos == nil {
		httputil.JSONError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "Identity token required", nil)
		return
	}

	pagination := httputil.GetPagination(r, 20, 100)

	analyses, err := h.repos.Analyses.ListByUser(r.Context(), user.ID, pagination.PerPage, pagination.Offset)
	if err != nil {
		h.logger.Error("listing analyses failed", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	total, err := h.repos.Analyses.CountByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("counting analyses failed", zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, analyses, &httputil.Meta{
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		Total:      total,
		TotalPages: httputil.CalculateTotalPages(total, pagination.PerPage),
	})
}

// Get handles GET /api/v1/analyses/{id}.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.ownedAnalysis(w, r)
	if !ok {
		return
	}

	httputil.JSON(w, http.StatusOK, analysis)
}

// Share handles POST /api/v1/analyses/{id}/share: exports the report JSON to
// object storage and returns the share link.
func (h *AnalysisHandler) Share(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.ownedAnalysis(w, r)
	if !ok {
		return
	}

	if h.reports == nil {
		httputil.JSONError(w, http.StatusServiceUnavailable, domain.ErrCodeInternal, "Report storage not configured", nil)
		return
	}

	shareURL, err := h.reports.ShareReport(r.Context(), analysis)
	if err != nil {
		h.logger.Error("sharing report failed", zap.Error(err), zap.String("analysis_id", analysis.ID.String()))
		httputil.JSONError(w, http.StatusBadGateway, domain.ErrCodeExternalAPI, "Could not export report", nil)
		return
	}

	if err := h.repos.Analyses.SetShareURL(r.Context(), analysis.ID, shareURL); err != nil {
		h.logger.Error("recording share url failed", zap.Error(err))
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"share_url": shareURL})
}

// ownedAnalysis loads the path analysis and enforces ownership.
func (h *AnalysisHandler) ownedAnalysis(w http.ResponseWriter, r *http.Request) (*domain.Analysis, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || h.repos == nil {
		httputil.JSONError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "Identity token required", nil)
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.JSONError(w, http.StatusBadRequest, domain.ErrCodeValidation, "Invalid analysis ID", nil)
		return nil, false
	}

	analysis, err := h.repos.Analyses.GetByID(r.Context(), id)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return nil, false
	}

	if analysis.UserID != user.ID {
		httputil.JSONError(w, http.StatusForbidden, domain.ErrCodeForbidden, "Access denied", nil)
		return nil, false
	}

	return analysis, true
}
