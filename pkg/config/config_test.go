package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
journal:
  backend: clickhouse
strategy:
  lead: GLD
  lag: GDX
alpaca:
  api_key: key
  secret_key: secret
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Strategy.Capital != 1_000_000 {
		t.Fatalf("expected default capital, got %v", cfg.Strategy.Capital)
	}
	if cfg.Strategy.Lookback != 20 || cfg.Strategy.HoldDays != 1 {
		t.Fatalf("unexpected strategy defaults: %+v", cfg.Strategy)
	}
	if cfg.Strategy.MaxLeverage != 3 {
		t.Fatalf("expected default max leverage 3, got %v", cfg.Strategy.MaxLeverage)
	}
	if cfg.Scheduler.Interval != 24*time.Hour {
		t.Fatalf("expected daily scheduler default, got %v", cfg.Scheduler.Interval)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadTreatsZeroThresholdAsUnset(t *testing.T) {
	body := `
environment: test
journal:
  backend: clickhouse
strategy:
  lead: GLD
  lag: GDX
  gap_threshold: 0
  zscore_threshold: 0
alpaca:
  api_key: key
  secret_key: secret
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Strategy.GapThreshold != 0.01 {
		t.Fatalf("expected zero gap threshold to default, got %v", cfg.Strategy.GapThreshold)
	}
	if cfg.Strategy.ZScoreThreshold != 1 {
		t.Fatalf("expected zero zscore threshold to default, got %v", cfg.Strategy.ZScoreThreshold)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	body := `
environment: test
journal:
  backend: postgres
strategy:
  lead: GLD
  lag: GDX
alpaca:
  api_key: key
  secret_key: secret
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for unknown journal backend")
	}
}

func TestLoadRejectsSameLeadAndLag(t *testing.T) {
	body := `
environment: test
journal:
  backend: kafka
strategy:
  lead: GLD
  lag: GLD
alpaca:
  api_key: key
  secret_key: secret
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for identical pair legs")
	}
}

func TestLoadRejectsMissingCredentials(t *testing.T) {
	body := `
environment: test
journal:
  backend: clickhouse
strategy:
  lead: GLD
  lag: GDX
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("APCA_API_KEY_ID", "env-key")
	t.Setenv("JOURNAL_BACKEND", "kafka")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Alpaca.APIKey != "env-key" {
		t.Fatalf("expected env key override, got %q", cfg.Alpaca.APIKey)
	}
	if cfg.Journal.Backend != "kafka" {
		t.Fatalf("expected env backend override, got %q", cfg.Journal.Backend)
	}
}
