package account

import (
	"github.com/monkbacktest/engine/decimalx"
	"github.com/monkbacktest/engine/order"
	"github.com/monkbacktest/engine/position"
)

// ApplyTrade realises P&L for a closing or flipping trade, always debits
// commission, and finally mutates the position. The realised-P&L
// computation reads the position's pre-trade direction and open price —
// it must run before the position mutates, not after.
func (a *Account) ApplyTrade(trade *order.Trade) {
	pos := a.Positions.Get(trade.Order.Instrument)
	effect := pos.PositionEffect(trade.ExecQuantity)

	if effect != position.Open && effect != position.GetMore {
		var profitQuantity = decimalx.Abs(trade.ExecQuantity)
		if effect != position.Close && effect != position.ClosePart {
			// CLOSE_AND_OPEN: only the portion that closed the prior
			// position realises P&L: it cannot exceed the prior size.
			profitQuantity = decimalx.Abs(pos.Quantity)
		}

		var profit = trade.ExecPrice.Sub(pos.OpenPrice).Mul(profitQuantity)
		if pos.Direction() == order.Short {
			profit = pos.OpenPrice.Sub(trade.ExecPrice).Mul(profitQuantity)
		}
		a.WalletBalance = a.WalletBalance.Add(profit)
	}

	a.WalletBalance = a.WalletBalance.Sub(trade.Commission)
	pos.ApplyTrade(trade.ExecQuantity, trade.ExecPrice)
}
