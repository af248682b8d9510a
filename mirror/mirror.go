// mirror/mirror.go
//
// Package mirror forwards a one-way description of each account mutation
// to a remote store. The remote side never feeds back into the ledger:
// publishes are queued behind the state transition and dropped on any
// failure, so a dead endpoint cannot slow down or roll back the account.
package mirror

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rustyeddy/paperdesk/ledger"
)

type EventType string

const (
	PositionOpened EventType = "position_opened"
	PositionClosed EventType = "position_closed"
	StateReplaced  EventType = "state_replaced"
)

type Event struct {
	Type     EventType           `json:"type"`
	Time     time.Time           `json:"time"`
	Position *ledger.Position    `json:"position,omitempty"`
	Trade    *ledger.ClosedTrade `json:"trade,omitempty"`
	State    *ledger.AccountState `json:"state,omitempty"`
}

// Publisher receives events after every committed transition. Publish must
// never block the caller.
type Publisher interface {
	Publish(Event)
	Close() error
}

type Noop struct{}

func (Noop) Publish(Event) {}
func (Noop) Close() error  { return nil }

// HTTP posts events as JSON to a single endpoint from a background worker.
// A full queue or a failed request drops the event.
type HTTP struct {
	url    string
	client *http.Client

	mu     sync.Mutex
	queue  chan Event
	closed bool
	done   chan struct{}
}

const DefaultQueueSize = 256

func NewHTTP(url string, queueSize int) *HTTP {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	h := &HTTP{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *HTTP) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	select {
	case h.queue <- ev:
	default:
		// Queue full: drop. The local ledger is authoritative.
	}
}

func (h *HTTP) run() {
	defer close(h.done)
	for ev := range h.queue {
		h.post(ev)
	}
}

func (h *HTTP) post(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	resp, err := h.client.Post(h.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return
	}
	// Response content is irrelevant; drain so the connection is reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// Close stops accepting events and waits for queued ones to flush.
func (h *HTTP) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.queue)
	h.mu.Unlock()

	<-h.done
	return nil
}
