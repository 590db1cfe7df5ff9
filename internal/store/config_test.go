package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	p := writeConfig(t, `
mode: DRY_RUN
mapping_path: ticker_mapping.json
feed:
  url: https://example.com/feed
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Notional != 1000 {
		t.Errorf("expected default notional 1000, got %.2f", cfg.Notional)
	}
	if cfg.DedupPath != "seen_posts.json" {
		t.Errorf("expected default dedup path, got %s", cfg.DedupPath)
	}
	if cfg.Poll.MinWaitSeconds != 45 || cfg.Poll.MaxWaitSeconds != 180 {
		t.Errorf("expected default poll window [45,180], got [%d,%d]",
			cfg.Poll.MinWaitSeconds, cfg.Poll.MaxWaitSeconds)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("expected default model, got %s", cfg.LLM.Model)
	}
}

func TestLoadConfigInvalidMode(t *testing.T) {
	p := writeConfig(t, `
mode: PAPER
mapping_path: ticker_mapping.json
feed:
  url: https://example.com/feed
`)
	if _, err := LoadConfig(p); err == nil {
		t.Fatal("expected validation error for invalid mode")
	}
}

func TestLoadConfigBadPollWindow(t *testing.T) {
	p := writeConfig(t, `
mode: LIVE
mapping_path: ticker_mapping.json
feed:
  url: https://example.com/feed
poll:
  min_wait_seconds: 120
  max_wait_seconds: 30
`)
	if _, err := LoadConfig(p); err == nil {
		t.Fatal("expected validation error for inverted poll window")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
