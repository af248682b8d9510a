package ledger

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/paperdesk/contract"
	"github.com/rustyeddy/paperdesk/fees"
)

func testEnv() Env {
	reg := contract.NewRegistry(
		contract.Spec{Symbol: "ES", PointValue: 50, MinTick: 0.25},
		contract.Spec{Symbol: "GC", PointValue: 100, MinTick: 0.1},
	)
	n := 0
	return Env{
		Contracts: reg,
		Fees:      fees.Model{Rate: 0.0124, Floor: 0.62, Contracts: reg},
		Now: func() time.Time {
			return time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
		},
		NewID: func() string {
			n++
			return fmt.Sprintf("pos-%d", n)
		},
		StartingBalance: 25_000,
	}
}

func checkInvariants(t *testing.T, s AccountState) {
	t.Helper()

	var sum float64
	seen := map[string]bool{}
	for _, p := range s.Positions {
		sum += p.UnrealizedPnl
		assert.False(t, seen[p.ID], "duplicate position id %s", p.ID)
		seen[p.ID] = true
	}
	for _, ct := range s.TradeHistory {
		assert.False(t, seen[ct.ID], "id %s in both positions and history", ct.ID)
		seen[ct.ID] = true
	}

	assert.InDelta(t, sum, s.UnrealizedPnl, 1e-9)
	assert.InDelta(t, s.Balance+s.UnrealizedPnl, s.Equity, 1e-9)
}

func TestOpenPosition(t *testing.T) {
	env := testEnv()
	s0 := NewAccountState(25_000)

	sl := 5880.0
	s1, res := Apply(s0, OpenPosition{Symbol: "ES", Side: Long, Size: 2, Price: 5900, StopLoss: &sl}, env)

	require.NotNil(t, res.Opened)
	require.Len(t, s1.Positions, 1)

	p := s1.Positions[0]
	assert.Equal(t, "pos-1", p.ID)
	assert.Equal(t, Long, p.Side)
	assert.InDelta(t, 5900.0, p.EntryPrice, 1e-9)
	assert.InDelta(t, 0.0, p.UnrealizedPnl, 1e-9)
	require.NotNil(t, p.StopLoss)
	assert.InDelta(t, 5880.0, *p.StopLoss, 1e-9)

	// ES per-unit commission is max(0.62, 50*0.0124) = 0.62, size 2.
	assert.InDelta(t, 1.24, p.CommissionPaid, 1e-9)
	assert.InDelta(t, 25_000-1.24, s1.Balance, 1e-9)
	assert.InDelta(t, s1.Balance, s1.Equity, 1e-9)

	// The prior snapshot is untouched.
	assert.Len(t, s0.Positions, 0)
	assert.InDelta(t, 25_000.0, s0.Balance, 1e-9)

	checkInvariants(t, s1)
}

func TestCloseUnknownIDIsNoop(t *testing.T) {
	env := testEnv()
	s0 := NewAccountState(25_000)
	s0, _ = Apply(s0, OpenPosition{Symbol: "ES", Side: Long, Size: 1, Price: 5900}, env)

	s1, res := Apply(s0, ClosePosition{ID: "no-such-id", Price: 5910}, env)

	assert.Nil(t, res.Closed)
	assert.Equal(t, s0, s1)
}

func TestCloseRemarksSameSymbolOnly(t *testing.T) {
	env := testEnv()
	s := NewAccountState(25_000)
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Long, Size: 1, Price: 5900}, env)
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Long, Size: 1, Price: 5902}, env)
	s, _ = Apply(s, OpenPosition{Symbol: "GC", Side: Short, Size: 1, Price: 2650}, env)

	// Mark gold first so it has a non-zero unrealized value to keep.
	s, _ = Apply(s, MarkPrice{Symbol: "GC", Price: 2648}, env)
	gcBefore := s.Positions[2].UnrealizedPnl
	assert.InDelta(t, 200.0, gcBefore, 1e-9)

	id := s.Positions[0].ID
	s, res := Apply(s, ClosePosition{ID: id, Price: 5910}, env)
	require.Len(t, res.Closed, 1)
	require.Len(t, s.Positions, 2)

	// Surviving ES position re-marked at the close price.
	assert.Equal(t, "ES", s.Positions[0].Symbol)
	assert.InDelta(t, (5910.0-5902.0)*50, s.Positions[0].UnrealizedPnl, 1e-9)

	// GC keeps its independent mark.
	assert.InDelta(t, gcBefore, s.Positions[1].UnrealizedPnl, 1e-9)

	checkInvariants(t, s)
}

func TestClosePositionBooksPnl(t *testing.T) {
	env := testEnv()
	s := NewAccountState(25_000)
	s, res := Apply(s, OpenPosition{Symbol: "ES", Side: Short, Size: 2, Price: 5900}, env)
	id := res.Opened.ID
	balanceAfterOpen := s.Balance

	s, res = Apply(s, ClosePosition{ID: id, Price: 5890}, env)
	require.Len(t, res.Closed, 1)
	ct := res.Closed[0]

	// Short 2 ES, 10 points in favor: 10 * 2 * 50 = 1000 gross, minus the
	// 1.24 exit commission.
	assert.InDelta(t, 10.0, ct.PnlPoints, 1e-9)
	assert.InDelta(t, 998.76, ct.Pnl, 1e-9)
	assert.InDelta(t, 2.48, ct.Commission, 1e-9)
	assert.InDelta(t, balanceAfterOpen+998.76, s.Balance, 1e-9)

	assert.Len(t, s.Positions, 0)
	require.Len(t, s.TradeHistory, 1)
	assert.Equal(t, id, s.TradeHistory[0].ID)

	checkInvariants(t, s)
}

func TestRoundTripAtConstantPrice(t *testing.T) {
	env := testEnv()
	s := NewAccountState(25_000)

	s, res := Apply(s, OpenPosition{Symbol: "GC", Side: Long, Size: 3, Price: 2650}, env)
	s, res = Apply(s, ClosePosition{ID: res.Opened.ID, Price: 2650}, env)

	// GC per-unit is max(0.62, 100*0.0124) = 1.24; three units, two sides.
	entryCommission := 3 * 1.24
	exitCommission := 3 * 1.24
	assert.InDelta(t, -exitCommission, res.Closed[0].Pnl, 1e-9)
	assert.InDelta(t, 25_000-entryCommission-exitCommission, s.Balance, 1e-9)
	assert.InDelta(t, entryCommission+exitCommission, res.Closed[0].Commission, 1e-9)
}

func TestCloseAllClearsState(t *testing.T) {
	env := testEnv()
	s := NewAccountState(25_000)
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Long, Size: 1, Price: 5900}, env)
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Short, Size: 2, Price: 5905}, env)
	s, _ = Apply(s, OpenPosition{Symbol: "GC", Side: Long, Size: 1, Price: 2650}, env)

	s, res := Apply(s, CloseAll{Price: 5910}, env)

	assert.Len(t, s.Positions, 0)
	assert.Len(t, res.Closed, 3)
	assert.Len(t, s.TradeHistory, 3)
	assert.InDelta(t, 0.0, s.UnrealizedPnl, 1e-9)
	assert.InDelta(t, s.Balance, s.Equity, 1e-9)

	checkInvariants(t, s)
}

func TestCloseProfitablePartition(t *testing.T) {
	env := testEnv()
	s := NewAccountState(25_000)
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Long, Size: 1, Price: 5900}, env)  // +500 at 5910
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Short, Size: 1, Price: 5905}, env) // -250 at 5910
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Long, Size: 2, Price: 5910}, env)  // flat at 5910

	s, res := Apply(s, CloseProfitable{Price: 5910}, env)

	require.Len(t, res.Closed, 1)
	assert.InDelta(t, 10.0, res.Closed[0].PnlPoints, 1e-9)

	// Flat positions stay open; everything left is <= 0 at the price.
	require.Len(t, s.Positions, 2)
	for _, p := range s.Positions {
		pv := env.Contracts.Lookup(p.Symbol).PointValue
		assert.LessOrEqual(t, UnrealizedPL(p, 5910, pv), 0.0)
	}

	checkInvariants(t, s)
}

func TestCloseLosingPartition(t *testing.T) {
	env := testEnv()
	s := NewAccountState(25_000)
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Long, Size: 1, Price: 5900}, env)
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Short, Size: 1, Price: 5905}, env)
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Long, Size: 2, Price: 5910}, env)

	s, res := Apply(s, CloseLosing{Price: 5910}, env)

	require.Len(t, res.Closed, 1)
	assert.Equal(t, Short, res.Closed[0].Side)

	require.Len(t, s.Positions, 2)
	for _, p := range s.Positions {
		pv := env.Contracts.Lookup(p.Symbol).PointValue
		assert.GreaterOrEqual(t, UnrealizedPL(p, 5910, pv), 0.0)
	}

	checkInvariants(t, s)
}

func TestMarkPriceIsSymbolScoped(t *testing.T) {
	env := testEnv()
	s := NewAccountState(25_000)
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Long, Size: 1, Price: 5900}, env)
	s, _ = Apply(s, OpenPosition{Symbol: "GC", Side: Long, Size: 1, Price: 2650}, env)

	s, _ = Apply(s, MarkPrice{Symbol: "ES", Price: 5912}, env)

	assert.InDelta(t, 600.0, s.Positions[0].UnrealizedPnl, 1e-9)
	assert.InDelta(t, 0.0, s.Positions[1].UnrealizedPnl, 1e-9)

	balance := s.Balance
	s, _ = Apply(s, MarkPrice{Symbol: "GC", Price: 2655}, env)
	assert.InDelta(t, balance, s.Balance, 1e-9) // marks never touch balance
	assert.InDelta(t, 500.0, s.Positions[1].UnrealizedPnl, 1e-9)

	// Empty symbol marks nothing.
	before := s
	s, _ = Apply(s, MarkPrice{Symbol: "", Price: 1}, env)
	assert.Equal(t, before.UnrealizedPnl, s.UnrealizedPnl)

	checkInvariants(t, s)
}

func TestResetAndSetBalance(t *testing.T) {
	env := testEnv()
	s := NewAccountState(25_000)
	s, _ = Apply(s, OpenPosition{Symbol: "ES", Side: Long, Size: 1, Price: 5900}, env)

	s, res := Apply(s, Reset{}, env)
	assert.True(t, res.Replaced)
	assert.Len(t, s.Positions, 0)
	assert.Len(t, s.TradeHistory, 0)
	assert.InDelta(t, 25_000.0, s.Balance, 1e-9)
	assert.InDelta(t, 25_000.0, s.Equity, 1e-9)

	s, res = Apply(s, SetBalance{Amount: 50_000}, env)
	assert.True(t, res.Replaced)
	assert.InDelta(t, 50_000.0, s.Balance, 1e-9)
	assert.InDelta(t, 50_000.0, s.Equity, 1e-9)
}

// TestConcreteScenario follows one round trip through an unlisted equity
// symbol: the default contract (point value 1) and the commission floor.
func TestConcreteScenario(t *testing.T) {
	env := testEnv()
	s := NewAccountState(25_000)

	s, res := Apply(s, OpenPosition{Symbol: "AAPL", Side: Long, Size: 10, Price: 150.00}, env)
	id := res.Opened.ID

	assert.InDelta(t, 24_993.8, s.Balance, 1e-9)
	assert.InDelta(t, 0.0, s.Positions[0].UnrealizedPnl, 1e-9)

	s, _ = Apply(s, MarkPrice{Symbol: "AAPL", Price: 155.00}, env)
	assert.InDelta(t, 50.0, s.Positions[0].UnrealizedPnl, 1e-9)
	assert.InDelta(t, 25_043.8, s.Equity, 1e-9)

	s, res = Apply(s, ClosePosition{ID: id, Price: 155.00}, env)
	require.Len(t, res.Closed, 1)
	assert.InDelta(t, 43.8, res.Closed[0].Pnl, 1e-9)
	assert.InDelta(t, 12.4, res.Closed[0].Commission, 1e-9)
	assert.InDelta(t, 25_037.6, s.Balance, 1e-9)
	assert.Len(t, s.Positions, 0)
}

// TestInvariantsUnderRandomSequence drives a deterministic pseudo-random
// command stream and checks the account invariants after every step.
func TestInvariantsUnderRandomSequence(t *testing.T) {
	env := testEnv()
	rng := rand.New(rand.NewSource(42))
	symbols := []string{"ES", "GC", "AAPL"}

	s := NewAccountState(100_000)
	for i := 0; i < 500; i++ {
		sym := symbols[rng.Intn(len(symbols))]
		price := 100 + rng.Float64()*100

		var cmd Command
		switch rng.Intn(10) {
		case 0, 1, 2, 3:
			side := Long
			if rng.Intn(2) == 0 {
				side = Short
			}
			cmd = OpenPosition{Symbol: sym, Side: side, Size: float64(1 + rng.Intn(5)), Price: price}
		case 4, 5, 6:
			cmd = MarkPrice{Symbol: sym, Price: price}
		case 7:
			if len(s.Positions) > 0 {
				cmd = ClosePosition{ID: s.Positions[rng.Intn(len(s.Positions))].ID, Price: price}
			} else {
				cmd = MarkPrice{Symbol: sym, Price: price}
			}
		case 8:
			cmd = CloseProfitable{Price: price}
		default:
			cmd = CloseLosing{Price: price}
		}

		s, _ = Apply(s, cmd, env)
		checkInvariants(t, s)
		if t.Failed() {
			t.Fatalf("invariants broken after step %d (%T)", i, cmd)
		}
	}

	// Final sweep leaves a clean account.
	s, _ = Apply(s, CloseAll{Price: 150}, env)
	assert.Len(t, s.Positions, 0)
	assert.InDelta(t, 0.0, s.UnrealizedPnl, 1e-9)
	assert.False(t, math.IsNaN(s.Balance))
}
