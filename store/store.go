// store/store.go
package store

import (
	"sync"

	"github.com/rustyeddy/paperdesk/ledger"
)

// SnapshotStore is the persistence port for the full account snapshot.
// Load returns (nil, nil) when there is no usable snapshot (missing,
// malformed, or written by a stale format or demo generation), which
// tells the caller to seed demo data instead. Save is best effort: a failed
// save must never affect the in-memory account.
type SnapshotStore interface {
	Load() (*ledger.AccountState, error)
	Save(ledger.AccountState) error
	Close() error
}

// Memory keeps the snapshot in process. Used by tests and for runs with
// no db configured.
type Memory struct {
	mu    sync.Mutex
	state *ledger.AccountState
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load() (*ledger.AccountState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, nil
	}
	s := *m.state
	return &s, nil
}

func (m *Memory) Save(s ledger.AccountState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &s
	return nil
}

func (m *Memory) Close() error { return nil }
