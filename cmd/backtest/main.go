// Command backtest is the engine's CLI entry point: loads configuration,
// wires the instrument registry, data loader, account, exchange and
// strategy engine together, and drives a simulation to completion.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/monkbacktest/engine/config"
	"github.com/monkbacktest/engine/exchange"
	"github.com/monkbacktest/engine/instrument"
	"github.com/monkbacktest/engine/marketdata"
	"github.com/monkbacktest/engine/notify"
	"github.com/monkbacktest/engine/storage"
	"github.com/monkbacktest/engine/strategy"
	"github.com/monkbacktest/engine/timedriver"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using environment variables")
	}
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := rootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("backtest failed")
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "backtest",
		Short: "monkbacktest runs an event-driven derivatives backtest",
	}
	root.AddCommand(runCmd())
	root.AddCommand(notYetSupportedCmd("download", "fetches historical quote/trade/k-line archives"))
	root.AddCommand(notYetSupportedCmd("generate-settings", "writes a template configuration file"))
	return root
}

func notYetSupportedCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short + " (not yet supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("%s: not yet supported", use)
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "runs a simulation to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBacktest()
		},
	}
}

func runBacktest() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := storage.New(cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	registry := instrument.NewRegistry()
	if snapshot, err := db.LatestInstrumentSnapshot(); err != nil {
		return fmt.Errorf("load instrument snapshot: %w", err)
	} else if snapshot != nil {
		if err := registry.LoadSnapshot(snapshot); err != nil {
			return fmt.Errorf("parse instrument snapshot: %w", err)
		}
	}

	driver, err := timedriver.NewDriver(cfg.StartTime, cfg.EndTime, cfg.Frequency)
	if err != nil {
		return fmt.Errorf("build time driver: %w", err)
	}

	loader, err := newLoader(db, registry)
	if err != nil {
		return fmt.Errorf("hydrate market data: %w", err)
	}
	ex := exchange.New(registry, loader, startingBalance())

	strat, err := strategy.Resolve(cfg.Strategy)
	if err != nil {
		return err
	}

	notifier, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		return fmt.Errorf("telegram notifier: %w", err)
	}

	engine := strategy.NewEngine(driver, ex, strat, cfg.TickType, notifier)
	if err := engine.Run(); err != nil {
		notifier.NotifyError(err)
		return fmt.Errorf("simulation aborted: %w", err)
	}

	acct := ex.GetAccount()
	log.Info().
		Str("wallet_balance", acct.WalletBalance.String()).
		Str("unrealised_pnl", acct.UnrealisedPnL().String()).
		Msg("simulation complete")
	return nil
}

func startingBalance() decimal.Decimal {
	return decimal.NewFromInt(100000)
}

func newLoader(db *storage.Database, registry *instrument.Registry) (*marketdata.MemoryLoader, error) {
	loader := marketdata.NewMemoryLoader()
	symbols := make([]string, 0, len(registry.All()))
	for _, inst := range registry.All() {
		symbols = append(symbols, inst.Symbol)
	}
	if err := db.HydrateLoader(loader, symbols); err != nil {
		return nil, err
	}
	return loader, nil
}
