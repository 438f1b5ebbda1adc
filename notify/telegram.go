// Package notify implements an optional trade/liquidation notifier over
// Telegram: fills, liquidations and end-of-run account snapshots pushed to
// a chat, the way a live trading deployment would want to watch a backtest
// run.
package notify

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/monkbacktest/engine/order"
	"github.com/monkbacktest/engine/position"
)

// TradeNotifier is what the strategy engine pushes fills and account
// events through. A nil or disabled *Telegram satisfies it as a no-op, so
// wiring a notifier is always optional.
type TradeNotifier interface {
	NotifyFill(trade *order.Trade, effect position.Effect)
	NotifyLiquidation(symbol string, price decimal.Decimal)
	NotifyError(err error)
	NotifyRunSummary(walletBalance, unrealisedPnL decimal.Decimal, tradeCount int)
}

// Telegram pushes notifications to one chat. Disabled (every call a no-op)
// when constructed with an empty token or chat ID — most backtest runs
// have nothing to notify and shouldn't need credentials to start.
type Telegram struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
}

// NewTelegram returns a disabled notifier if token or chatID is empty,
// otherwise one wired to that bot/chat.
func NewTelegram(token, chatID string) (*Telegram, error) {
	if token == "" || chatID == "" {
		return &Telegram{enabled: false}, nil
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("telegram notifier ready")
	return &Telegram{api: api, chatID: id, enabled: true}, nil
}

// NotifyFill reports one executed trade and the position effect it had.
func (t *Telegram) NotifyFill(trade *order.Trade, effect position.Effect) {
	side := "BUY"
	if trade.Order.Side == order.Sell {
		side = "SELL"
	}
	msg := fmt.Sprintf("*FILL* %s %s\nqty: %s @ %s\neffect: %s\ncommission: %s",
		trade.Order.Instrument.Symbol, side,
		trade.ExecQuantity.Abs(), trade.ExecPrice,
		effect, trade.Commission)
	t.sendMarkdown(msg)
}

// NotifyLiquidation reports a forced close.
func (t *Telegram) NotifyLiquidation(symbol string, price decimal.Decimal) {
	msg := fmt.Sprintf("*LIQUIDATION* %s\nforced close at %s", symbol, price)
	t.sendMarkdown(msg)
}

// NotifyError reports a simulation-ending error.
func (t *Telegram) NotifyError(err error) {
	t.sendMarkdown(fmt.Sprintf("*ERROR*\n`%s`", err.Error()))
}

// NotifyRunSummary reports the account state at the end of a simulation.
func (t *Telegram) NotifyRunSummary(walletBalance, unrealisedPnL decimal.Decimal, tradeCount int) {
	msg := fmt.Sprintf("*RUN COMPLETE*\nwallet: %s\nunrealised P&L: %s\ntrades: %d",
		walletBalance, unrealisedPnL, tradeCount)
	t.sendMarkdown(msg)
}

func (t *Telegram) sendMarkdown(text string) {
	if t == nil || !t.enabled {
		return
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := t.api.Send(msg); err != nil {
		log.Error().Err(err).Msg("failed to send telegram notification")
	}
}
