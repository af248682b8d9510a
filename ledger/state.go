// ledger/state.go
package ledger

import "time"

type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// Position is an open simulated exposure. It is created by OpenPosition,
// re-marked by MarkPrice, and destroyed exactly once by a close command,
// at which point it becomes a ClosedTrade with the same ID.
type Position struct {
	ID             string    `json:"id"`
	Symbol         string    `json:"symbol"`
	Side           Side      `json:"side"`
	Size           float64   `json:"size"`
	EntryPrice     float64   `json:"entryPrice"`
	EntryTime      time.Time `json:"entryTime"`
	StopLoss       *float64  `json:"stopLoss,omitempty"`
	TakeProfit     *float64  `json:"takeProfit,omitempty"`
	CommissionPaid float64   `json:"commissionPaid"`
	UnrealizedPnl  float64   `json:"unrealizedPnl"`
}

// ClosedTrade is the immutable historical record of a closed position.
// Commission is the full round trip: entry plus exit side.
type ClosedTrade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Size       float64   `json:"size"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  float64   `json:"exitPrice"`
	EntryTime  time.Time `json:"entryTime"`
	ExitTime   time.Time `json:"exitTime"`
	StopLoss   *float64  `json:"stopLoss,omitempty"`
	TakeProfit *float64  `json:"takeProfit,omitempty"`
	Pnl        float64   `json:"pnl"`
	PnlPoints  float64   `json:"pnlPoints"`
	Commission float64   `json:"commission"`
}

// AccountState is the full account snapshot. Apply treats it as immutable:
// every command produces a fresh value, the previous one is never touched.
//
// Invariants after every Apply:
//   - Equity == Balance + UnrealizedPnl
//   - UnrealizedPnl == sum of Positions[i].UnrealizedPnl
//   - every position id appears in at most one of Positions/TradeHistory
type AccountState struct {
	Balance       float64       `json:"balance"`
	Equity        float64       `json:"equity"`
	UnrealizedPnl float64       `json:"unrealizedPnl"`
	Positions     []Position    `json:"positions"`
	TradeHistory  []ClosedTrade `json:"tradeHistory"`
}

// NewAccountState returns a fresh account with the given balance, no open
// positions and no history.
func NewAccountState(balance float64) AccountState {
	return AccountState{Balance: balance, Equity: balance}
}

// Position returns the open position with the given id, if any.
func (s AccountState) Position(id string) (Position, bool) {
	for _, p := range s.Positions {
		if p.ID == id {
			return p, true
		}
	}
	return Position{}, false
}

// Clone deep-copies the snapshot so callers can hold it without aliasing
// the engine's published state.
func (s AccountState) Clone() AccountState {
	next := s
	next.Positions = make([]Position, len(s.Positions))
	copy(next.Positions, s.Positions)
	next.TradeHistory = make([]ClosedTrade, len(s.TradeHistory))
	copy(next.TradeHistory, s.TradeHistory)
	return next
}
