// Package config implements the engine's configuration surface (spec.md
// §6): an explicit value built once from the environment, never a
// package-level singleton, so a process can run more than one simulation
// without hidden shared state.
package config

import (
	"os"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/monkbacktest/engine/decimalx"
	"github.com/monkbacktest/engine/exchange"
	"github.com/monkbacktest/engine/simerrors"
	"github.com/monkbacktest/engine/timedriver"
)

// RunType selects backtest vs realtime execution. Only BACKTEST is
// implemented; REALTIME is declared because the option table names it, but
// Load rejects it, like any other value but BACKTEST, with setting-error.
type RunType string

const (
	RunTypeBacktest RunType = "BACKTEST"
	RunTypeRealtime RunType = "REALTIME"
)

// ExchangeConfig is one entry of the EXCHANGES mapping.
type ExchangeConfig struct {
	Engine    string `json:"engine"`
	IsTest    bool   `json:"IS_TEST"`
	APIKey    string `json:"API_KEY"`
	APISecret string `json:"API_SECRET"`
}

// Config is the engine's full configuration, covering every option
// spec.md §6 names.
type Config struct {
	DatabaseURI string
	HTTPProxy   string

	Frequency timedriver.Frequency
	StartTime time.Time
	EndTime   time.Time

	RunType  RunType
	TickType exchange.TickType

	Strategy string
	DataDir  string

	Exchanges map[string]ExchangeConfig

	TelegramToken  string
	TelegramChatID string
}

// Load builds a Config from the process environment. It never exits the
// process: invalid or missing required values are reported as
// setting-error, letting the caller decide whether to abort.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURI: os.Getenv("DATABASE_URI"),
		HTTPProxy:   os.Getenv("HTTP_PROXY"),
		Strategy:    os.Getenv("STRATEGY"),
		DataDir:     getEnv("DATA_DIR", "."),

		RunType:  RunType(getEnv("RUN_TYPE", string(RunTypeBacktest))),
		TickType: exchange.TickType(getEnv("TICK_TYPE", string(exchange.TickTypeTick))),

		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
	}

	freq := getEnv("FREQUENCY", "1d")
	cfg.Frequency = timedriver.Frequency(freq)

	start, err := parseTimeEnv("START_TIME")
	if err != nil {
		return nil, err
	}
	end, err := parseTimeEnv("END_TIME")
	if err != nil {
		return nil, err
	}
	cfg.StartTime = start
	cfg.EndTime = end

	if cfg.RunType != RunTypeBacktest {
		return nil, simerrors.Newf(simerrors.SettingError, "RUN_TYPE %q is not implemented, only %q", cfg.RunType, RunTypeBacktest)
	}
	if cfg.Strategy == "" {
		return nil, simerrors.New(simerrors.SettingError, "STRATEGY is required")
	}

	exchanges, err := parseExchanges(os.Getenv("EXCHANGES"))
	if err != nil {
		return nil, err
	}
	cfg.Exchanges = exchanges

	return cfg, nil
}

// parseExchanges decodes the EXCHANGES mapping (spec.md §6): a JSON object
// of {name: {engine, IS_TEST, API_KEY, API_SECRET}}. Unset or empty
// defaults to a single in-memory simulated exchange.
func parseExchanges(raw string) (map[string]ExchangeConfig, error) {
	if raw == "" {
		return map[string]ExchangeConfig{"sim": {Engine: "sim", IsTest: true}}, nil
	}
	var exchanges map[string]ExchangeConfig
	if err := json.Unmarshal([]byte(raw), &exchanges); err != nil {
		return nil, simerrors.Newf(simerrors.SettingError, "EXCHANGES: invalid JSON: %v", err)
	}
	return exchanges, nil
}

func parseTimeEnv(key string) (time.Time, error) {
	value := os.Getenv(key)
	if value == "" {
		return time.Time{}, simerrors.Newf(simerrors.SettingError, "%s is required", key)
	}
	t, err := decimalx.ParseISO8601(value)
	if err != nil {
		return time.Time{}, simerrors.Newf(simerrors.SettingError, "%s: invalid ISO-8601 instant %q: %v", key, value, err)
	}
	return t, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

