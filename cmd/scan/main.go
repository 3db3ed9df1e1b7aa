package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/config"
	"github.com/bennettabowman-ui/conkord/internal/domain"
	"github.com/bennettabowman-ui/conkord/internal/llm"
	"github.com/bennettabowman-ui/conkord/internal/services/analyzer"
	"github.com/bennettabowman-ui/conkord/internal/services/crawler"
	"github.com/bennettabowman-ui/conkord/internal/services/enrich"
	"github.com/bennettabowman-ui/conkord/internal/services/extractor"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
	bold   = color.New(color.Bold)
	dim    = color.New(color.Faint)
)

func main() {
	godotenv.Load()

	targetURL := flag.String("url", "", "Website URL to analyze")
	maxPages := flag.Int("max-pages", 8, "Maximum pages to crawl")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall analysis timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	if *targetURL == "" {
		if flag.NArg() > 0 {
			*targetURL = flag.Arg(0)
		} else {
			red.Println("Usage: scan -url https://example.com")
			os.Exit(1)
		}
	}

	var logger *zap.Logger
	if *verbose {
		logger, _ = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"/dev/null"}
		logger, _ = cfg.Build()
	}
	defer logger.Sync()

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		red.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Crawler.MaxPages = *maxPages

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
			yellow.Printf("Claude client unavailable, using deterministic fallback: %v\n", err)
			claudeClient = nil
		}
	} else {
		yellow.Println("ANTHROPIC_API_KEY not set, using deterministic fallback")
	}

	var enricher *enrich.Service
	if claudeClient != nil {
		enricher = enrich.New(claudeClient, logger)
	} else {
		enricher = enrich.New(nil, logger)
	}

	pipeline := analyzer.New(
		crawler.New(cfg.Crawler, logger),
		extractor.New(),
		enricher,
		logger,
	)

	printBanner(*targetURL)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	bar := progressbar.NewOptions(5,
		progressbar.OptionSetDescription("   Starting..."),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	var result *domain.AnalysisResult
	for event := range pipeline.Analyze(ctx, *targetURL) {
		switch e := event.(type) {
		case domain.StepEvent:
			bar.Describe(fmt.Sprintf("   %s...", e.Message))
			bar.Set(e.Step)
		case domain.CompleteEvent:
			bar.Finish()
			fmt.Println()
			result = e.Result
		case domain.ErrorEvent:
			bar.Finish()
			fmt.Println()
			red.Printf("❌ Analysis failed: %s\n", e.Error)
			os.Exit(1)
		}
	}

	if result == nil {
		red.Println("❌ Analysis produced no result")
		os.Exit(1)
	}

	printResult(result)
}

func printBanner(url string) {
	fmt.Println()
	cyan.Println("  ╔═══════════════════════════════════════╗")
	cyan.Println("  ║   Conkord — AI Readiness Analyzer     ║")
	cyan.Println("  ╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("🎯 Target: %s\n", url)
	fmt.Println()
}

func printResult(result *domain.AnalysisResult) {
	bold.Printf("Overall score: ")
	scoreColor(result.Scores.Total).Printf("%d/100\n", result.Scores.Total)
	fmt.Println()

	for _, pillar := range domain.Pillars() {
		score := result.Scores.Pillars.Get(pillar)
		fmt.Printf("   %-12s ", titleCase(string(pillar)))
		scoreColor(score).Printf("%3d", score)
		dim.Printf("  %s\n", scoreGauge(score))
	}
	fmt.Println()

	bold.Println("What an AI sees:")
	fmt.Printf("   %s\n", result.Understanding.OneLiner)
	if result.Understanding.Category != "" {
		dim.Printf("   Category: %s\n", result.Understanding.Category)
	}
	dim.Printf("   Confidence: %s (%d)\n",
		result.Understanding.Confidence.Level,
		result.Understanding.Confidence.Score)
	fmt.Println()

	if len(result.Blockers) > 0 {
		bold.Printf("Blockers (%d):\n", len(result.Blockers))
		for i, b := range result.Blockers {
			if i >= 10 {
				dim.Printf("   ... and %d more\n", len(result.Blockers)-i)
				break
			}
			red.Printf("   ▼ ")
			fmt.Printf("%s ", b.Title)
			dim.Printf("[%s, severity %d]\n", b.Pillar, b.Severity)
			if b.FixStrategy != "" {
				dim.Printf("     Fix: %s\n", b.FixStrategy)
			}
		}
		fmt.Println()
	}

	if len(result.Strengths) > 0 {
		bold.Printf("Strengths (%d):\n", len(result.Strengths))
		for i, s := range result.Strengths {
			if i >= 10 {
				dim.Printf("   ... and %d more\n", len(result.Strengths)-i)
				break
			}
			green.Printf("   ▲ ")
			fmt.Printf("%s ", s.Title)
			dim.Printf("[%s]\n", s.Pillar)
		}
		fmt.Println()
	}

	if result.LLMSTxt.Present {
		if result.LLMSTxt.Aligned != nil && *result.LLMSTxt.Aligned {
			green.Printf("llms.txt: present and aligned (+%d)\n", result.LLMSTxt.Modifier)
		} else {
			yellow.Printf("llms.txt: present but misaligned (%d)\n", result.LLMSTxt.Modifier)
		}
	} else {
		dim.Println("llms.txt: not found")
	}

	fmt.Println()
	dim.Printf("Analyzed %d pages in %.1fs\n", result.PagesAnalyzed, result.ElapsedSeconds)
}

func scoreColor(score int) *color.Color {
	switch {
	case score >= 70:
		return green
	case score >= 40:
		return yellow
	default:
		return red
	}
}

func scoreGauge(score int) string {
	filled := score / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
