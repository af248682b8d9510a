// ledger/command.go
package ledger

// Command is the closed set of account transitions. Each variant carries
// the caller-supplied fill price; the ledger never fetches prices itself.
type Command interface {
	isCommand()
}

// OpenPosition opens a new exposure at Price and charges the entry
// commission. Size must be validated positive before it reaches Apply.
type OpenPosition struct {
	Symbol     string
	Side       Side
	Size       float64
	Price      float64
	StopLoss   *float64
	TakeProfit *float64
}

// ClosePosition closes one position by id at Price. An unknown id is a
// no-op, not an error.
type ClosePosition struct {
	ID    string
	Price float64
}

// CloseAll closes every open position at Price as one snapshot transition.
type CloseAll struct {
	Price float64
}

// CloseProfitable closes exactly the positions whose unrealized P&L at
// Price is strictly positive. Flat positions stay open.
type CloseProfitable struct {
	Price float64
}

// CloseLosing closes exactly the positions whose unrealized P&L at Price
// is strictly negative. Flat positions stay open.
type CloseLosing struct {
	Price float64
}

// MarkPrice re-marks every open position in Symbol at Price. Balance is
// untouched. An empty symbol matches nothing.
type MarkPrice struct {
	Symbol string
	Price  float64
}

// Reset replaces the whole account with a fresh one at the environment's
// starting balance.
type Reset struct{}

// SetBalance replaces the whole account with a fresh one at Amount.
type SetBalance struct {
	Amount float64
}

func (OpenPosition) isCommand()    {}
func (ClosePosition) isCommand()   {}
func (CloseAll) isCommand()        {}
func (CloseProfitable) isCommand() {}
func (CloseLosing) isCommand()     {}
func (MarkPrice) isCommand()       {}
func (Reset) isCommand()           {}
func (SetBalance) isCommand()      {}
