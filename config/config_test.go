package config

import (
	"os"
	"testing"

	"github.com/monkbacktest/engine/simerrors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URI", "HTTP_PROXY", "FREQUENCY", "START_TIME", "END_TIME",
		"RUN_TYPE", "TICK_TYPE", "STRATEGY", "DATA_DIR", "EXCHANGES",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		os.Unsetenv(key)
	}
}

func TestLoadRequiresStartAndEndTime(t *testing.T) {
	clearEnv(t)
	os.Setenv("STRATEGY", "noop")
	defer clearEnv(t)

	_, err := Load()
	if kind, ok := simerrors.KindOf(err); !ok || kind != simerrors.SettingError {
		t.Fatalf("err = %v, want setting-error", err)
	}
}

func TestLoadDefaultsAndExchanges(t *testing.T) {
	clearEnv(t)
	os.Setenv("STRATEGY", "noop")
	os.Setenv("START_TIME", "2018-01-01T00:00:00Z")
	os.Setenv("END_TIME", "2018-01-05T00:00:00Z")
	defer clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Frequency != "1d" {
		t.Errorf("Frequency = %q, want 1d default", cfg.Frequency)
	}
	if cfg.RunType != RunTypeBacktest {
		t.Errorf("RunType = %q, want BACKTEST default", cfg.RunType)
	}
	sim, ok := cfg.Exchanges["sim"]
	if !ok || sim.Engine != "sim" {
		t.Errorf("Exchanges[sim] = %+v, want default sim exchange", sim)
	}
}

func TestLoadRejectsUnsupportedRunType(t *testing.T) {
	clearEnv(t)
	os.Setenv("STRATEGY", "noop")
	os.Setenv("START_TIME", "2018-01-01T00:00:00Z")
	os.Setenv("END_TIME", "2018-01-05T00:00:00Z")
	os.Setenv("RUN_TYPE", "REALTIME")
	defer clearEnv(t)

	_, err := Load()
	if kind, ok := simerrors.KindOf(err); !ok || kind != simerrors.SettingError {
		t.Fatalf("err = %v, want setting-error", err)
	}
}

func TestParseExchangesCustomMapping(t *testing.T) {
	exchanges, err := parseExchanges(`{"bitmex": {"engine": "bitmex", "IS_TEST": false, "API_KEY": "k", "API_SECRET": "s"}}`)
	if err != nil {
		t.Fatalf("parseExchanges: %v", err)
	}
	got, ok := exchanges["bitmex"]
	if !ok || got.Engine != "bitmex" || got.APIKey != "k" {
		t.Errorf("parsed = %+v", got)
	}
}
