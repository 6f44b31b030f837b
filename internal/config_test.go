package internal

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("port 0 should fail validation")
	}
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("port 70000 should fail validation")
	}
}

func TestSQLiteConfig_PathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty sqlite path should fail validation")
	}
}

func TestScrapeConfig_URLRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Scrape.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty scrape url should fail validation")
	}
}

func TestScrapeConfig_Timeout(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Scrape.Timeout() != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.Scrape.Timeout())
	}
	cfg.Scrape.TimeoutSeconds = 500
	if err := cfg.Validate(); err == nil {
		t.Fatal("excessive timeout should fail validation")
	}
}
