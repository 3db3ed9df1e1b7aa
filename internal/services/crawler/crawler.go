package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/config"
)

// priorityPaths are checked first, in this order, before homepage links.
var priorityPaths = []string{
	"/",
	"/about",
	"/about-us",
	"/pricing",
	"/features",
	"/product",
	"/solutions",
	"/faq",
}

// skipExtensions are static-asset suffixes that never hold analyzable content.
var skipExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp",
	".css", ".js", ".ico", ".xml", ".json", ".zip",
	".woff", ".woff2", ".ttf", ".eot", ".mp4", ".webm",
}

// skipPrefixes are non-content path prefixes.
var skipPrefixes = []string{
	"/admin", "/login", "/signin", "/signup", "/cart",
	"/checkout", "/account", "/wp-",
}

// skipSegments are listing paths (tag/category/author archives).
var skipSegments = []string{"/tag/", "/tags/", "/category/", "/categories/", "/author/"}

// pageTypeKeywords maps path keywords to page types, checked in priority order.
var pageTypeKeywords = []struct {
	keyword  string
	pageType string
}{
	{"pricing", "pricing"},
	{"about", "about"},
	{"features", "features"},
	{"product", "product"},
	{"faq", "faq"},
}

// Crawler fetches a bounded set of pages from a target site.
type Crawler struct {
	client *http.Client
	cfg    config.CrawlerConfig
	logger *zap.Logger
}

// New creates a crawler. The http.Client carries no global timeout; each fetch
// gets its own deadline from the crawl context.
func New(cfg config.CrawlerConfig, logger *zap.Logger) *Crawler {
	return &Crawler{
		client: &http.Client{},
		cfg:    cfg,
		logger: logger,
	}
}

// Crawl fetches the homepage plus up to MaxPages-1 additional same-origin
// pages, and best-effort the llms.txt manifest. Only a homepage failure is
// fatal; every other page error degrades to a smaller page set.
func (c *Crawler) Crawl(ctx context.Context, rawURL string) (*Result, error) {
	start := time.Now()

	origin, err := NormalizeOrigin(rawURL)
	if err != nil {
		return nil, fmt.Errorf("normalizing url: %w", err)
	}

	homeHTML, err := c.fetch(ctx, origin+"/")
	if err != nil {
		return nil, err
	}

	result := &Result{
		BaseURL:   origin,
		CrawledAt: time.Now().UTC(),
	}
	result.Pages = append(result.Pages, Page{
		URL:      origin + "/",
		PageType: "homepage",
		HTML:     homeHTML,
	})

	// Manifest fetch is best-effort; absence is not a failure.
	if manifest, err := c.fetch(ctx, origin+"/llms.txt"); err == nil {
		result.LLMSTxt = manifest
	} else {
		c.logger.Debug("no llms.txt manifest", zap.String("origin", origin), zap.Error(err))
	}

	for _, path := range c.discoverPaths(homeHTML, origin) {
		if len(result.Pages) >= c.cfg.MaxPages {
			break
		}

		// Politeness throttle between non-homepage fetches.
		select {
		case <-ctx.Done():
			result.Duration = time.Since(start)
			return result, nil
		case <-time.After(c.cfg.FetchDelay):
		}

		pageURL := origin + path
		html, err := c.fetch(ctx, pageURL)
		if err != nil {
			c.logger.Debug("page fetch skipped", zap.String("url", pageURL), zap.Error(err))
			continue
		}

		result.Pages = append(result.Pages, Page{
			URL:      pageURL,
			PageType: ClassifyPageType(path),
			HTML:     html,
		})
	}

	result.Duration = time.Since(start)
	c.logger.Info("crawl complete",
		zap.String("origin", origin),
		zap.Int("pages", len(result.Pages)),
		zap.Bool("manifest", result.HasManifest()),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// fetch retrieves one URL with the per-page timeout and custom headers.
func (c *Crawler) fetch(ctx context.Context, pageURL string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return string(body), nil
}

// discoverPaths merges the fixed priority list with same-origin anchor hrefs
// from the homepage, deduplicated in discovery order, excluded paths dropped.
func (c *Crawler) discoverPaths(homeHTML, origin string) []string {
	seen := map[string]bool{"/": true} // homepage already fetched
	var paths []string

	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		if ShouldCrawl(path) {
			paths = append(paths, path)
		}
	}

	for _, p := range priorityPaths {
		if p != "/" {
			add(p)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(homeHTML))
	if err != nil {
		return paths
	}

	base, _ := url.Parse(origin)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		// Cross-origin links are discarded.
		if resolved.Host != base.Host {
			return
		}
		if resolved.RawQuery != "" || resolved.Fragment != "" {
			return
		}

		add(strings.TrimSuffix(resolved.Path, "/"))
	})

	return paths
}

// NormalizeOrigin converts user input into an absolute origin, prepending
// https:// when no scheme is present.
func NormalizeOrigin(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("empty url")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host in url %q", rawURL)
	}

	return parsed.Scheme + "://" + parsed.Host, nil
}

// ShouldCrawl checks the path exclusion policy.
func ShouldCrawl(path string) bool {
	if path == "" {
		return false
	}
	if strings.ContainsAny(path, "?#") {
		return false
	}

	lower := strings.ToLower(path)

	for _, ext := range skipExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	for _, seg := range skipSegments {
		if strings.Contains(lower, seg) {
			return false
		}
	}

	return true
}

// ClassifyPageType maps a path to a page type by first keyword match, checked
// in fixed priority order.
func ClassifyPageType(path string) string {
	if path == "" || path == "/" {
		return "homepage"
	}

	lower := strings.ToLower(path)
	for _, entry := range pageTypeKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.pageType
		}
	}

	return "other"
}
