// Package analyzer orchestrates one analysis run: crawl, extract, understand,
// identify, score. Each run emits exactly five step events followed by one
// terminal complete or error event.
package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/services/crawler"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
	"github.com/bennettabowman-ui/conkord/internal/services/rules"
)

// Crawler fetches a site's pages.
type Crawler interface {
	Crawl(ctx context.Context, rawURL string) (*crawler.Result, error)
}

// Enricher supplies the LLM-backed synthesis steps.
type Enricher interface {
	Understand(ctx context.Context, site *extractor.SiteData) domain.Understanding
	EnrichBlockers(ctx context.Context, blockers []domain.Blocker, site *extractor.SiteData) []domain.Blocker
}

// Analyzer runs the full pipeline.
type Analyzer struct {
	crawler   Crawler
	extractor *extractor.Extractor
	enricher  Enricher
	logger    *zap.Logger
}

// New creates an analyzer.
func New(c Crawler, ex *extractor.Extractor, en Enricher, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		crawler:   c,
		extractor: ex,
		enricher:  en,
		logger:    logger,
	}
}

// Analyze runs the pipeline and streams events on the returned channel. The
// channel is closed after the terminal event. A panic anywhere in the run is
// recovered into a generic error event so the stream always terminates.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) <-chan any {
	events := make(chan any, 8)

	go func() {
		defer close(events)
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("analysis panicked", zap.Any("panic", r), zap.String("url", rawURL))
				events <- domain.ErrorEvent{Type: "error", Error: "analysis failed unexpectedly"}
			}
		}()

		a.run(ctx, rawURL, events)
	}()

	return events
}

func (a *Analyzer) run(ctx context.Context, rawURL string, events chan<- any) {
	start := time.Now()

	step := func(n int) {
		events <- domain.StepEvent{Type: "step", Step: n, Message: domain.StepMessages[n]}
	}

	step(domain.StepCrawl)
	crawled, err := a.crawler.Crawl(ctx, rawURL)
	if err != nil {
		a.logger.Warn("crawl failed", zap.String("url", rawURL), zap.Error(err))
		events <- domain.ErrorEvent{Type: "error", Error: "could not fetch the site: " + err.Error()}
		return
	}

	step(domain.StepExtract)
	pages := make([]*extractor.PageExtraction, 0, len(crawled.Pages))
	for _, page := range crawled.Pages {
		extracted, err := a.extractor.Extract(page.HTML, page.URL, page.PageType)
		if err != nil {
			a.logger.Debug("page extraction failed", zap.String("url", page.URL), zap.Error(err))
			continue
		}
		pages = append(pages, extracted)
	}
	site := extractor.Aggregate(pages)

	step(domain.StepUnderstand)
	understanding := a.enricher.Understand(ctx, site)

	step(domain.StepIdentify)
	manifest := rules.AnalyzeManifest(crawled.LLMSTxt, site, understanding)
	blockers := rules.Blockers(site, manifest)
	strengths := rules.Strengths(site, manifest)
	blockers = a.enricher.EnrichBlockers(ctx, blockers, site)

	step(domain.StepScore)
	scores := rules.CalculateScores(blockers, manifest.Modifier)

	result := &domain.AnalysisResult{
		Success:        true,
		URL:            crawled.BaseURL,
		AnalyzedAt:     start.UTC(),
		ElapsedSeconds: time.Since(start).Seconds(),
		PagesAnalyzed:  len(pages),
		Scores:         scores,
		Understanding:  understanding,
		Blockers:       blockers,
		Strengths:      strengths,
		LLMSTxt:        manifest,
	}

	a.logger.Info("analysis complete",
		zap.String("url", crawled.BaseURL),
		zap.Int("pages", len(pages)),
		zap.Int("score", scores.Total),
		zap.Float64("elapsed_seconds", result.ElapsedSeconds),
	)

	events <- domain.CompleteEvent{Type: "complete", Result: result}
}
