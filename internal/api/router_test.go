package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/services/analyzer"
	"github.com/bennettabowman-ui/conkord/internal/services/crawler"
	"github.com/bennettabowman-ui/conkord/internal/services/enrich"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
)

type stubCrawler struct{}

func (s *stubCrawler) Crawl(_ context.Context, _ string) (*crawler.Result, error) {
	return &crawler.Result{
		BaseURL:   "https://example.com",
		CrawledAt: time.Now().UTC(),
		Pages: []crawler.Page{
			{
				URL:      "https://example.com/",
				PageType: "homepage",
				HTML:     `<html><head><title>Acme</title></head><body><h1>Close the books in hours</h1></body></html>`,
			},
		},
	}, nil
}

func testRouter() *Router {
	c := &stubCrawler{}
	ex := extractor.New()
	en := enrich.New(nil, zap.NewNop())

	return NewRouter(RouterConfig{
		Analyzer:  analyzer.New(c, ex, en, zap.NewNop()),
		Crawler:   c,
		Extractor: ex,
		Enricher:  en,
		Logger:    zap.NewNop(),
	})
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestReady_WithoutCollaborators(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Data.Status)
	assert.Equal(t, "not configured", resp.Data.Checks["database"])
	assert.Equal(t, "not configured", resp.Data.Checks["redis"])
}

func TestAnalysisRouteStreams(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader(`{"url": "example.com"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 6)
}

func TestBillingRoutesAbsentWithoutService(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsRouteAbsentWithoutMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
