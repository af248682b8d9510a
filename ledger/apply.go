// ledger/apply.go
package ledger

import (
	"time"

	"github.com/rustyeddy/paperdesk/contract"
	"github.com/rustyeddy/paperdesk/fees"
)

// Env supplies the pure reducer with everything that is not state: contract
// lookup, the commission model, a clock and an id source. Tests substitute
// fixed clocks and counters here.
type Env struct {
	Contracts       *contract.Registry
	Fees            fees.Model
	Now             func() time.Time
	NewID           func() string
	StartingBalance float64
}

// Result reports what a command did, for journaling and mirroring. The
// reducer itself has no side effects.
type Result struct {
	Opened   *Position
	Closed   []ClosedTrade
	Replaced bool
}

// Apply is the single state transition: next = Apply(prev, cmd). The input
// state is never mutated. Aggregates (unrealized P&L, equity) are
// recomputed before returning, never carried over stale.
func Apply(s AccountState, cmd Command, env Env) (AccountState, Result) {
	next := s.Clone()
	var res Result

	switch c := cmd.(type) {
	case OpenPosition:
		entryCommission := env.Fees.Total(c.Symbol, c.Size)
		p := Position{
			ID:             env.NewID(),
			Symbol:         c.Symbol,
			Side:           c.Side,
			Size:           c.Size,
			EntryPrice:     c.Price,
			EntryTime:      env.Now(),
			StopLoss:       c.StopLoss,
			TakeProfit:     c.TakeProfit,
			CommissionPaid: entryCommission,
		}
		next.Balance -= entryCommission
		next.Positions = append(next.Positions, p)
		opened := p
		res.Opened = &opened

	case ClosePosition:
		if _, ok := next.Position(c.ID); !ok {
			return s, res
		}
		res.Closed = closeWhere(&next, c.Price, env, func(p Position) bool {
			return p.ID == c.ID
		})
		// Remaining positions in the same symbol re-mark at the close
		// price; other symbols keep their last independent mark.
		symbol := res.Closed[0].Symbol
		markSymbol(&next, symbol, c.Price, env)

	case CloseAll:
		res.Closed = closeWhere(&next, c.Price, env, func(Position) bool {
			return true
		})

	case CloseProfitable:
		res.Closed = closeWhere(&next, c.Price, env, func(p Position) bool {
			pv := env.Contracts.Lookup(p.Symbol).PointValue
			return UnrealizedPL(p, c.Price, pv) > 0
		})
		remarkAll(&next, c.Price, env)

	case CloseLosing:
		res.Closed = closeWhere(&next, c.Price, env, func(p Position) bool {
			pv := env.Contracts.Lookup(p.Symbol).PointValue
			return UnrealizedPL(p, c.Price, pv) < 0
		})
		remarkAll(&next, c.Price, env)

	case MarkPrice:
		markSymbol(&next, c.Symbol, c.Price, env)

	case Reset:
		next = NewAccountState(env.StartingBalance)
		res.Replaced = true

	case SetBalance:
		next = NewAccountState(c.Amount)
		res.Replaced = true
	}

	recompute(&next)
	return next, res
}

// closeWhere removes every open position matching the predicate, books its
// realized P&L to balance and appends the ClosedTrade records in position
// order. The exit commission is netted into Pnl; Commission reports the
// full round trip.
func closeWhere(next *AccountState, price float64, env Env, match func(Position) bool) []ClosedTrade {
	var closed []ClosedTrade
	remaining := next.Positions[:0:0]

	for _, p := range next.Positions {
		if !match(p) {
			remaining = append(remaining, p)
			continue
		}

		spec := env.Contracts.Lookup(p.Symbol)
		exitCommission := env.Fees.Total(p.Symbol, p.Size)
		pnl := UnrealizedPL(p, price, spec.PointValue) - exitCommission

		ct := ClosedTrade{
			ID:         p.ID,
			Symbol:     p.Symbol,
			Side:       p.Side,
			Size:       p.Size,
			EntryPrice: p.EntryPrice,
			ExitPrice:  price,
			EntryTime:  p.EntryTime,
			ExitTime:   env.Now(),
			StopLoss:   p.StopLoss,
			TakeProfit: p.TakeProfit,
			Pnl:        pnl,
			PnlPoints:  pnlPoints(p, price),
			Commission: p.CommissionPaid + exitCommission,
		}

		next.Balance += pnl
		next.TradeHistory = append(next.TradeHistory, ct)
		closed = append(closed, ct)
	}

	next.Positions = remaining
	return closed
}

func markSymbol(next *AccountState, symbol string, price float64, env Env) {
	for i := range next.Positions {
		p := &next.Positions[i]
		if p.Symbol != symbol {
			continue
		}
		pv := env.Contracts.Lookup(p.Symbol).PointValue
		p.UnrealizedPnl = UnrealizedPL(*p, price, pv)
	}
}

// remarkAll re-marks every surviving position at the price that was just
// used to partition them, so the aggregate reflects the same mark.
func remarkAll(next *AccountState, price float64, env Env) {
	for i := range next.Positions {
		p := &next.Positions[i]
		pv := env.Contracts.Lookup(p.Symbol).PointValue
		p.UnrealizedPnl = UnrealizedPL(*p, price, pv)
	}
}

// recompute is the aggregation step run after every transition:
// unrealized = sum over open positions, equity = balance + unrealized.
func recompute(s *AccountState) {
	var unrealized float64
	for _, p := range s.Positions {
		unrealized += p.UnrealizedPnl
	}
	s.UnrealizedPnl = unrealized
	s.Equity = s.Balance + unrealized
}
