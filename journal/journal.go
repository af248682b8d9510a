// journal/journal.go
package journal

import (
	"time"

	"github.com/rustyeddy/paperdesk/ledger"
)

// TradeRecord is the durable row written for every closed trade. Pnl nets
// the exit commission; Commission is the full round trip.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Side       string
	Size       float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	Pnl        float64
	PnlPoints  float64
	Commission float64
}

// EquitySnapshot is appended after every account mutation, open or close
// or re-mark, so the equity curve has a point per transition.
type EquitySnapshot struct {
	Time          time.Time
	Balance       float64
	Equity        float64
	UnrealizedPnl float64
	OpenPositions int
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// FromClosedTrade converts a ledger close result into its journal row.
func FromClosedTrade(ct ledger.ClosedTrade) TradeRecord {
	return TradeRecord{
		TradeID:    ct.ID,
		Symbol:     ct.Symbol,
		Side:       string(ct.Side),
		Size:       ct.Size,
		EntryPrice: ct.EntryPrice,
		ExitPrice:  ct.ExitPrice,
		EntryTime:  ct.EntryTime,
		ExitTime:   ct.ExitTime,
		Pnl:        ct.Pnl,
		PnlPoints:  ct.PnlPoints,
		Commission: ct.Commission,
	}
}

// Discard swallows every record. Used when no journal is configured.
type Discard struct{}

func (Discard) RecordTrade(TradeRecord) error     { return nil }
func (Discard) RecordEquity(EquitySnapshot) error { return nil }
func (Discard) Close() error                      { return nil }
