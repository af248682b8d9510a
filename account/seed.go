// account/seed.go
package account

import (
	"time"

	"github.com/rustyeddy/paperdesk/ledger"
)

// SeedState builds the demo account used when the snapshot store has
// nothing usable: no open positions, a short plausible trade history, and
// a balance that already includes those trades' P&L so the invariants hold
// from the first render. Bump store.DemoGeneration when this changes.
func SeedState(startingBalance float64, newID func() string, now time.Time) ledger.AccountState {
	state := ledger.NewAccountState(startingBalance)

	demo := []ledger.ClosedTrade{
		{
			Symbol:     "ES",
			Side:       ledger.Long,
			Size:       2,
			EntryPrice: 5850.25,
			ExitPrice:  5861.75,
			Pnl:        1148.76,
			PnlPoints:  11.5,
			Commission: 2.48,
		},
		{
			Symbol:     "NQ",
			Side:       ledger.Short,
			Size:       1,
			EntryPrice: 20510.50,
			ExitPrice:  20475.25,
			Pnl:        704.38,
			PnlPoints:  35.25,
			Commission: 1.24,
		},
		{
			Symbol:     "GC",
			Side:       ledger.Long,
			Size:       1,
			EntryPrice: 2645.80,
			ExitPrice:  2639.30,
			Pnl:        -651.24,
			PnlPoints:  -6.5,
			Commission: 2.48,
		},
	}

	// Spread the demo history over the preceding days, oldest first.
	opened := now.Add(-72 * time.Hour)
	for i := range demo {
		demo[i].ID = newID()
		demo[i].EntryTime = opened
		demo[i].ExitTime = opened.Add(45 * time.Minute)
		opened = opened.Add(24 * time.Hour)

		state.Balance += demo[i].Pnl
	}

	state.TradeHistory = demo
	state.Equity = state.Balance
	return state
}
