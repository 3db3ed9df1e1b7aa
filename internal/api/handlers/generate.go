package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/services/analyzer"
	"github.com/bennettabowman-ui/conkord/internal/services/enrich"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
	"github.com/bennettabowman-ui/conkord/pkg/httputil"
)

// GenerateHandler serves the content-generation helpers: schema.org markup
// and llms.txt bodies derived from a fresh crawl of the target site.
type GenerateHandler struct {
	crawler   analyzer.Crawler
	extractor *extractor.Extractor
	enricher  *enrich.Service
	logger    *zap.Logger
}

// NewGenerateHandler creates a generation handler.
func NewGenerateHandler(c analyzer.Crawler, ex *extractor.Extractor, en *enrich.Service, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		crawler:   c,
		extractor: ex,
		enricher:  en,
		logger:    logger,
	}
}

type generateRequest struct {
	URL string `json:"url"`
}

// Schema handles POST /api/v1/generate/schema.
func (h *GenerateHandler) Schema(w http.ResponseWriter, r *http.Request) {
	site, und, ok := h.prepare(w, r)
	if !ok {
		return
	}

	markup := h.enricher.GenerateSchemaMarkup(r.Context(), site, und)
	httputil.JSON(w, http.StatusOK, map[string]string{"schema": markup})
}

// LLMSTxt handles POST /api/v1/generate/llms-txt.
func (h *GenerateHandler) LLMSTxt(w http.ResponseWriter, r *http.Request) {
	site, und, ok := h.prepare(w, r)
	if !ok {
		return
	}

	body := h.enricher.GenerateLLMSTxt(r.Context(), site, und)
	httputil.JSON(w, http.StatusOK, map[string]string{"llms_txt": body})
}

// prepare crawls and understands the requested site.
func (h *GenerateHandler) prepare(w http.ResponseWriter, r *http.Request) (*extractor.SiteData, domain.Understanding, bool) {
	var req generateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return nil, domain.Understanding{}, false
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		httputil.ErrorFromDomain(w, domain.ValidationError("url", "url is required"))
		return nil, domain.Understanding{}, false
	}

	crawled, err := h.crawler.Crawl(r.Context(), req.URL)
	if err != nil {
		h.logger.Warn("generation crawl failed", zap.String("url", req.URL), zap.Error(err))
		httputil.ErrorFromDomain(w, domain.ErrCrawlFailed(req.URL, err))
		return nil, domain.Understanding{}, false
	}

	pages := make([]*extractor.PageExtraction, 0, len(crawled.Pages))
	for _, page := range crawled.Pages {
		extracted, err := h.extractor.Extract(page.HTML, page.URL, page.PageType)
		if err != nil {
			continue
		}
		pages = append(pages, extracted)
	}

	site := extractor.Aggregate(pages)
	und := h.enricher.Understand(r.Context(), site)

	return site, und, true
}
