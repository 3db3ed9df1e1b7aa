package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bennettabowman-ui/conkord/internal/config"
)

func testCrawler(maxPages int) *Crawler {
	return New(config.CrawlerConfig{
		MaxPages:     maxPages,
		FetchTimeout: 5 * time.Second,
		FetchDelay:   time.Millisecond,
		UserAgent:    "conkord-test/1.0",
	}, zap.NewNop())
}

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare domain", "example.com", "https://example.com", false},
		{"with scheme", "http://example.com", "http://example.com", false},
		{"path stripped", "https://example.com/pricing?x=1", "https://example.com", false},
		{"whitespace trimmed", "  example.com  ", "https://example.com", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"no host", "https://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeOrigin(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShouldCrawl(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/about", true},
		{"/pricing", true},
		{"/blog/launch-post", true},
		{"", false},
		{"/logo.png", false},
		{"/styles.CSS", false},
		{"/admin/users", false},
		{"/login", false},
		{"/wp-admin", false},
		{"/blog/tag/go", false},
		{"/blog/category/news", false},
		{"/search?q=x", false},
		{"/docs#install", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldCrawl(tt.path))
		})
	}
}

func TestClassifyPageType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", "homepage"},
		{"/", "homepage"},
		{"/pricing", "pricing"},
		{"/Pricing-Plans", "pricing"},
		{"/about-us", "about"},
		{"/features", "features"},
		{"/product/widgets", "product"},
		{"/faq", "faq"},
		{"/blog/post", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPageType(tt.path))
		})
	}
}

func TestCrawl(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><body><h1>Home</h1><a href="/docs">Docs</a></body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>About us</h1></body></html>`))
	})
	mux.HandleFunc("/pricing", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Pricing</h1></body></html>`))
	})
	mux.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Docs</h1></body></html>`))
	})
	mux.HandleFunc("/llms.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# Acme\n> Billing for accountants\n"))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	result, err := testCrawler(8).Crawl(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, result.BaseURL)
	assert.True(t, result.HasManifest())
	assert.Contains(t, result.LLMSTxt, "# Acme")

	require.NotEmpty(t, result.Pages)
	assert.Equal(t, srv.URL+"/", result.Pages[0].URL)
	assert.Equal(t, "homepage", result.Pages[0].PageType)
	assert.Contains(t, result.Pages[0].HTML, "<h1>Home</h1>")

	byURL := map[string]Page{}
	for _, p := range result.Pages {
		byURL[p.URL] = p
	}
	require.Contains(t, byURL, srv.URL+"/about")
	assert.Equal(t, "about", byURL[srv.URL+"/about"].PageType)
	require.Contains(t, byURL, srv.URL+"/pricing")
	require.Contains(t, byURL, srv.URL+"/docs")
	assert.Equal(t, "other", byURL[srv.URL+"/docs"].PageType)
}

func TestCrawl_MaxPagesCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Page</h1></body></html>`))
	}))
	defer srv.Close()

	result, err := testCrawler(3).Crawl(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, result.Pages, 3)
}

func TestCrawl_HomepageErrorFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	result, err := testCrawler(8).Crawl(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestCrawl_MissingManifestNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte(`<html><body><h1>Home</h1></body></html>`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	result, err := testCrawler(8).Crawl(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, result.HasManifest())
	assert.Len(t, result.Pages, 1)
}

func TestCrawl_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			gotUA = r.Header.Get("User-Agent")
		}
		w.Write([]byte(`<html><body><h1>Home</h1></body></html>`))
	}))
	defer srv.Close()

	_, err := testCrawler(1).Crawl(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "conkord-test/1.0", gotUA)
}

func TestCrawl_InvalidURL(t *testing.T) {
	_, err := testCrawler(8).Crawl(context.Background(), "")
	require.Error(t, err)
}
