package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"c79sniper/src/errs"
)

const minimalYAML = `
broker:
  bridge_url: http://127.0.0.1:6542
  symbol: XAUUSD
  timeframe: M5
  magic_number: 79001
telegram:
  token: 123:abc
  chat_id: 99
news:
  currencies: [USD, EUR]
  cache_file: state/news_cache.json
watchdog:
  restart_command: ["/usr/local/bin/c79sniper", "bot"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMinimalWithDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Broker.Symbol != "XAUUSD" || cfg.Broker.MagicNumber != 79001 {
		t.Fatalf("broker section lost: %+v", cfg.Broker)
	}
	if cfg.Trading.PollInterval != 30*time.Second {
		t.Fatalf("expected default poll interval, got %s", cfg.Trading.PollInterval)
	}
	if cfg.Strategy.MinConditions != 3 {
		t.Fatalf("expected default min conditions, got %d", cfg.Strategy.MinConditions)
	}
	if cfg.News.MinImpact != "High" {
		t.Fatalf("expected default min impact, got %s", cfg.News.MinImpact)
	}
	if cfg.Profit.PacingMode != "adaptive" {
		t.Fatalf("expected default pacing mode, got %s", cfg.Profit.PacingMode)
	}
	if cfg.System.HistoryLimit != 500 {
		t.Fatalf("expected default history limit, got %d", cfg.System.HistoryLimit)
	}
	if cfg.RolloverLocation() != time.UTC {
		t.Fatalf("expected UTC rollover default, got %v", cfg.RolloverLocation())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTelegramTokenEnvOverride(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "env-token")

	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Fatalf("expected env token to win, got %q", cfg.Telegram.Token)
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing symbol", func(c *Config) { c.Broker.Symbol = "" }, "symbol"},
		{"missing magic", func(c *Config) { c.Broker.MagicNumber = 0 }, "magic_number"},
		{"bad timezone", func(c *Config) { c.Trading.RolloverTimezone = "Mars/Olympus" }, "rollover_timezone"},
		{"bad sizing mode", func(c *Config) { c.Risk.SizingMode = "martingale" }, "sizing_mode"},
		{"risk pct out of range", func(c *Config) { c.Risk.RiskPct = 150 }, "risk_pct"},
		{"fast MA not below slow", func(c *Config) { c.Strategy.MAFastPeriod = 50 }, "ma_fast_period"},
		{"no currencies", func(c *Config) { c.News.Currencies = nil }, "currencies"},
		{"bad impact", func(c *Config) { c.News.MinImpact = "Critical" }, "min_impact"},
		{"bad pacing mode", func(c *Config) { c.Profit.PacingMode = "yolo" }, "pacing_mode"},
		{"no restart command", func(c *Config) { c.Watchdog.RestartCommand = nil }, "restart_command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, minimalYAML))
			if err != nil {
				t.Fatalf("base config must load: %v", err)
			}

			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}

			var confErr *errs.ConfigurationError
			if !errors.As(err, &confErr) {
				t.Fatalf("expected configuration error, got %T: %v", err, err)
			}
			if confErr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, confErr.Field)
			}
		})
	}
}

func TestFixedModeRequiresLots(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	cfg.Risk.SizingMode = "fixed"
	cfg.Risk.FixedLots = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("fixed mode without lots must fail")
	}

	cfg.Risk.FixedLots = 0.1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid fixed mode, got %v", err)
	}
}
