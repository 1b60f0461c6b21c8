package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load with missing file: %v", err)
	}
	if cfg.DatabasePath == "" {
		t.Error("expected default database path")
	}
	if cfg.DateFormat != "2006-01-02 15:04:05" {
		t.Errorf("unexpected default date format: %q", cfg.DateFormat)
	}
	if cfg.Schedule.DailyCron == "" {
		t.Error("expected default daily cron")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("database_path: /tmp/custom.db\nmarket_api_url: https://example.test/markets\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MARKET_API_URL", "https://override.test/markets")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabasePath != "/tmp/custom.db" {
		t.Errorf("file value not applied: %q", cfg.DatabasePath)
	}
	if cfg.MarketAPIURL != "https://override.test/markets" {
		t.Errorf("env override not applied: %q", cfg.MarketAPIURL)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.DatabasePath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty database_path")
	}

	cfg, _ = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.MarketAPIURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty market_api_url")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database_path: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
