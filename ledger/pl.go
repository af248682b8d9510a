// ledger/pl.go
package ledger

// pnlPoints is the only place the long/short sign convention lives.
func pnlPoints(p Position, markPrice float64) float64 {
	if p.Side == Short {
		return p.EntryPrice - markPrice
	}
	return markPrice - p.EntryPrice
}

// UnrealizedPL marks an open position against the given price. Every P&L
// number in the ledger, including realized P&L at close and the bulk-close
// partitioning, routes through this function.
func UnrealizedPL(p Position, markPrice, pointValue float64) float64 {
	return pnlPoints(p, markPrice) * p.Size * pointValue
}
