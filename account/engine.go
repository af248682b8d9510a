// account/engine.go
package account

import (
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/paperdesk/contract"
	"github.com/rustyeddy/paperdesk/fees"
	"github.com/rustyeddy/paperdesk/journal"
	"github.com/rustyeddy/paperdesk/ledger"
	"github.com/rustyeddy/paperdesk/mirror"
	"github.com/rustyeddy/paperdesk/pkg/id"
	"github.com/rustyeddy/paperdesk/store"
)

const DefaultStartingBalance = 25_000

// Config wires the engine's collaborators. Every field has a working
// default so tests can construct an engine from a zero Config.
type Config struct {
	Contracts       *contract.Registry
	Fees            *fees.Model
	Store           store.SnapshotStore
	Journal         journal.Journal
	Mirror          mirror.Publisher
	StartingBalance float64

	// Clock and id source, overridable in tests.
	Now   func() time.Time
	NewID func() string
}

// Engine owns the account snapshot and serializes every public operation
// behind one mutex: read snapshot, Apply, publish. Two racing callers can
// never observe a half-applied transition. Snapshot saves and remote
// mirroring happen after the transition commits and never gate it.
type Engine struct {
	mu      sync.Mutex
	state   ledger.AccountState
	env     ledger.Env
	store   store.SnapshotStore
	journal journal.Journal
	mirror  mirror.Publisher
}

// New builds an engine, loading the persisted snapshot if the store has a
// usable one and seeding demo data otherwise. Load failures fall through
// to seeding; they never surface as a crash.
func New(cfg Config) (*Engine, error) {
	if cfg.Contracts == nil {
		cfg.Contracts = contract.Builtin()
	}
	if cfg.Fees == nil {
		m := fees.NewModel(cfg.Contracts)
		cfg.Fees = &m
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}
	if cfg.Journal == nil {
		cfg.Journal = journal.Discard{}
	}
	if cfg.Mirror == nil {
		cfg.Mirror = mirror.Noop{}
	}
	if cfg.StartingBalance <= 0 {
		cfg.StartingBalance = DefaultStartingBalance
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = id.New
	}

	e := &Engine{
		env: ledger.Env{
			Contracts:       cfg.Contracts,
			Fees:            *cfg.Fees,
			Now:             cfg.Now,
			NewID:           cfg.NewID,
			StartingBalance: cfg.StartingBalance,
		},
		store:   cfg.Store,
		journal: cfg.Journal,
		mirror:  cfg.Mirror,
	}

	loaded, err := e.store.Load()
	if err == nil && loaded != nil {
		e.state = *loaded
	} else {
		e.state = SeedState(cfg.StartingBalance, cfg.NewID, cfg.Now())
		snap := e.state.Clone()
		go func() { _ = e.store.Save(snap) }()
	}

	return e, nil
}

// State returns a read-only copy of the current snapshot.
func (e *Engine) State() ledger.AccountState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// PlaceTrade opens a position and charges the entry commission. It returns
// the new position id. Size must be positive; that is the one input the
// caller layer is expected to have validated, and the engine rejects it
// here rather than clamping.
func (e *Engine) PlaceTrade(symbol string, side ledger.Side, size, price float64, stopLoss, takeProfit *float64) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("place trade: size must be positive, got %v", size)
	}
	if side != ledger.Long && side != ledger.Short {
		return "", fmt.Errorf("place trade: unknown side %q", side)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, res := ledger.Apply(e.state, ledger.OpenPosition{
		Symbol:     symbol,
		Side:       side,
		Size:       size,
		Price:      price,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	}, e.env)

	if err := e.commit(next, res); err != nil {
		return "", err
	}
	return res.Opened.ID, nil
}

// ClosePosition closes one position at the given price. An id that is not
// open is a no-op, not an error: the close may simply have raced an
// earlier bulk close.
func (e *Engine) ClosePosition(id string, price float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.state.Position(id); !ok {
		return nil
	}

	next, res := ledger.Apply(e.state, ledger.ClosePosition{ID: id, Price: price}, e.env)
	return e.commit(next, res)
}

// CloseAllPositions closes every open position at price as one atomic
// snapshot transition, not N separate ones.
func (e *Engine) CloseAllPositions(price float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.state.Positions) == 0 {
		return nil
	}

	next, res := ledger.Apply(e.state, ledger.CloseAll{Price: price}, e.env)
	return e.commit(next, res)
}

// CloseAllProfitable closes exactly the positions with positive unrealized
// P&L at price. Flat positions stay open.
func (e *Engine) CloseAllProfitable(price float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, res := ledger.Apply(e.state, ledger.CloseProfitable{Price: price}, e.env)
	return e.commit(next, res)
}

// CloseAllLosing closes exactly the positions with negative unrealized P&L
// at price.
func (e *Engine) CloseAllLosing(price float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, res := ledger.Apply(e.state, ledger.CloseLosing{Price: price}, e.env)
	return e.commit(next, res)
}

// UpdatePrices re-marks every open position in symbol at price. Balance is
// never touched by a mark. The symbol is required; an empty symbol marks
// nothing.
func (e *Engine) UpdatePrices(symbol string, price float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, res := ledger.Apply(e.state, ledger.MarkPrice{Symbol: symbol, Price: price}, e.env)
	return e.commit(next, res)
}

// ResetAccount replaces the account with a fresh one at the configured
// starting balance: no positions, no history.
func (e *Engine) ResetAccount() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, res := ledger.Apply(e.state, ledger.Reset{}, e.env)
	return e.commit(next, res)
}

// SetBalance replaces the account with a fresh one at the given balance.
func (e *Engine) SetBalance(amount float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, res := ledger.Apply(e.state, ledger.SetBalance{Amount: amount}, e.env)
	return e.commit(next, res)
}

// Close flushes the final snapshot synchronously and releases the ports.
func (e *Engine) Close() error {
	e.mu.Lock()
	snap := e.state.Clone()
	e.mu.Unlock()

	_ = e.store.Save(snap)
	e.mirror.Close()
	if err := e.journal.Close(); err != nil {
		return err
	}
	return e.store.Close()
}

// commit publishes the new snapshot and performs the post-transition
// effects: trade records and an equity snapshot to the journal
// (synchronous, errors surface to the caller), then a best-effort save
// and mirror push that never gate or roll back the transition.
func (e *Engine) commit(next ledger.AccountState, res ledger.Result) error {
	e.state = next

	for _, ct := range res.Closed {
		if err := e.journal.RecordTrade(journal.FromClosedTrade(ct)); err != nil {
			return fmt.Errorf("journal trade: %w", err)
		}
	}

	now := e.env.Now()
	if err := e.journal.RecordEquity(journal.EquitySnapshot{
		Time:          now,
		Balance:       next.Balance,
		Equity:        next.Equity,
		UnrealizedPnl: next.UnrealizedPnl,
		OpenPositions: len(next.Positions),
	}); err != nil {
		return fmt.Errorf("journal equity: %w", err)
	}

	snap := next.Clone()
	go func() { _ = e.store.Save(snap) }()

	if res.Opened != nil {
		e.mirror.Publish(mirror.Event{Type: mirror.PositionOpened, Time: now, Position: res.Opened})
	}
	for i := range res.Closed {
		ct := res.Closed[i]
		e.mirror.Publish(mirror.Event{Type: mirror.PositionClosed, Time: now, Trade: &ct})
	}
	if res.Replaced {
		st := next.Clone()
		e.mirror.Publish(mirror.Event{Type: mirror.StateReplaced, Time: now, State: &st})
	}

	return nil
}
