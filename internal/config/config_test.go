package config

import (
	"strings"
	"testing"
)

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "conkord",
		Password: "secret",
		Database: "conkord",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=conkord password=secret dbname=conkord sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	if got := cfg.Addr(); got != "cache.internal:6380" {
		t.Errorf("Addr() = %q, want %q", got, "cache.internal:6380")
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		debug    bool
		want     string
	}{
		{"default", "info", false, "info"},
		{"explicit warn", "warn", false, "warn"},
		{"debug overrides", "info", true, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel, Debug: tt.debug}
			if got := cfg.GetLogLevel(); got != tt.want {
				t.Errorf("GetLogLevel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:     EnvDevelopment,
			Crawler: CrawlerConfig{MaxPages: 8},
		}
	}

	t.Run("development defaults pass", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("max pages below one", func(t *testing.T) {
		cfg := base()
		cfg.Crawler.MaxPages = 0
		err := cfg.Validate()
		if err == nil {
			t.Fatal("Validate() = nil, want error")
		}
		if !strings.Contains(err.Error(), "CRAWL_MAX_PAGES") {
			t.Errorf("error %q should mention CRAWL_MAX_PAGES", err)
		}
	})

	t.Run("production requires secrets", func(t *testing.T) {
		cfg := base()
		cfg.Env = EnvProduction
		err := cfg.Validate()
		if err == nil {
			t.Fatal("Validate() = nil, want error")
		}
		if !strings.Contains(err.Error(), "DB_PASSWORD") {
			t.Errorf("error %q should mention DB_PASSWORD", err)
		}
		if !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
			t.Errorf("error %q should mention ANTHROPIC_API_KEY", err)
		}
	})

	t.Run("production with secrets passes", func(t *testing.T) {
		cfg := base()
		cfg.Env = EnvProduction
		cfg.Database.Password = "secret"
		cfg.Claude.APIKey = "sk-ant-test"
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})
}

func TestEnvironmentHelpers(t *testing.T) {
	dev := &Config{Env: EnvDevelopment}
	if !dev.IsDevelopment() || dev.IsProduction() {
		t.Error("development environment misreported")
	}

	prod := &Config{Env: EnvProduction}
	if prod.IsDevelopment() || !prod.IsProduction() {
		t.Error("production environment misreported")
	}
}
