// contract/contract.go
package contract

// Spec holds the static trading parameters of one instrument. PointValue is
// the account-currency value of a one-point move for one unit of size.
type Spec struct {
	Symbol     string  `json:"symbol" yaml:"symbol"`
	PointValue float64 `json:"point_value" yaml:"point_value"`
	MinTick    float64 `json:"min_tick" yaml:"min_tick"`
}

// Default is the spec assumed for symbols that were never configured. A
// point value of 1 treats the instrument like a plain share, which is the
// conservative choice for P&L.
var Default = Spec{PointValue: 1, MinTick: 0.01}

// Registry resolves symbols to contract specs. Lookup is total: unknown
// symbols get Default rather than an error, so P&L math never fails.
type Registry struct {
	specs map[string]Spec
}

func NewRegistry(specs ...Spec) *Registry {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		r.specs[s.Symbol] = s
	}
	return r
}

// Builtin returns a registry preloaded with the common futures contracts
// the dashboard ships with. Equities fall through to Default.
func Builtin() *Registry {
	return NewRegistry(
		Spec{Symbol: "ES", PointValue: 50, MinTick: 0.25},
		Spec{Symbol: "NQ", PointValue: 20, MinTick: 0.25},
		Spec{Symbol: "YM", PointValue: 5, MinTick: 1},
		Spec{Symbol: "RTY", PointValue: 50, MinTick: 0.1},
		Spec{Symbol: "CL", PointValue: 1000, MinTick: 0.01},
		Spec{Symbol: "GC", PointValue: 100, MinTick: 0.1},
	)
}

// Lookup never fails. Unknown symbols resolve to Default with the Symbol
// field filled in so callers can still report what they asked for.
func (r *Registry) Lookup(symbol string) Spec {
	if s, ok := r.specs[symbol]; ok {
		return s
	}
	s := Default
	s.Symbol = symbol
	return s
}

// Add registers or replaces a spec. Intended for config loading before the
// registry is handed to the engine; the registry is not mutated at runtime.
func (r *Registry) Add(s Spec) {
	r.specs[s.Symbol] = s
}

func (r *Registry) Len() int { return len(r.specs) }
