package mirror

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/paperdesk/ledger"
)

func TestHTTPPostsEvents(t *testing.T) {
	var mu sync.Mutex
	var got []Event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, 16)
	h.Publish(Event{Type: PositionOpened, Time: time.Now(), Position: &ledger.Position{ID: "pos-1", Symbol: "ES"}})
	h.Publish(Event{Type: PositionClosed, Time: time.Now(), Trade: &ledger.ClosedTrade{ID: "pos-1", Pnl: 42}})

	// Close waits for the queue to drain.
	require.NoError(t, h.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, PositionOpened, got[0].Type)
	assert.Equal(t, "pos-1", got[0].Position.ID)
	assert.Equal(t, PositionClosed, got[1].Type)
	assert.InDelta(t, 42.0, got[1].Trade.Pnl, 1e-9)
}

func TestHTTPPublishAfterCloseIsSafe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	h := NewHTTP(srv.URL, 4)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	// Must not panic on the closed queue.
	h.Publish(Event{Type: StateReplaced, Time: time.Now()})
}

func TestHTTPDeadEndpointDoesNotBlock(t *testing.T) {
	h := NewHTTP("http://127.0.0.1:1/nowhere", 4)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(Event{Type: PositionOpened, Time: time.Now()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("publish blocked on dead endpoint")
	}
	_ = h.Close()
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var n Noop
	n.Publish(Event{Type: PositionOpened})
	assert.NoError(t, n.Close())
}
