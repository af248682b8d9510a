// fees/fees.go
package fees

import "github.com/rustyeddy/paperdesk/contract"

// Defaults approximate a retail futures commission schedule: heavier
// contracts cost proportionally more, small instruments pay the floor.
const (
	DefaultRate  = 0.0124
	DefaultFloor = 0.62
)

// Model derives the simulated commission charged per unit of size, per
// side. A round trip always pays the model twice: once at entry, once at
// exit.
type Model struct {
	Rate      float64
	Floor     float64
	Contracts *contract.Registry
}

func NewModel(reg *contract.Registry) Model {
	return Model{Rate: DefaultRate, Floor: DefaultFloor, Contracts: reg}
}

// PerUnit is max(Floor, PointValue*Rate) for the symbol's contract.
func (m Model) PerUnit(symbol string) float64 {
	c := m.Contracts.Lookup(symbol).PointValue * m.Rate
	if c < m.Floor {
		c = m.Floor
	}
	return c
}

// Total is the one-side commission for a fill of the given size.
func (m Model) Total(symbol string, size float64) float64 {
	return m.PerUnit(symbol) * size
}
