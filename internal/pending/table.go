package pending

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wagiedev/mcp-test-go/internal/errors"
)

// Result is the terminal value delivered to the caller of a request.
// Exactly one of Value and Err is meaningful.
type Result struct {
	Value json.RawMessage
	Err   error
}

// entry is the bookkeeping record for one in-flight request.
type entry struct {
	method string
	done   chan Result
	timer  *time.Timer
}

// Table maps request ids to in-flight requests.
//
// All mutations happen under one mutex; completion values are delivered after
// the entry has been removed, so a racing response and timeout cannot both
// settle the same request.
type Table struct {
	log *slog.Logger

	mu       sync.Mutex
	entries  map[int64]*entry
	closed   bool
	closeErr error
}

// NewTable creates an empty table.
func NewTable(log *slog.Logger) *Table {
	return &Table{
		log:     log.With("component", "pending"),
		entries: make(map[int64]*entry, 16),
	}
}

// Register inserts a new entry for id and starts its timeout timer.
//
// The returned channel receives exactly one Result. A zero or negative timeout
// disables the timer. Register fails with ErrDuplicateRequestID when id is
// already pending. After Close it fails with an error matching both
// errors.ErrNotRunning and the close cause.
func (t *Table) Register(id int64, method string, timeout time.Duration) (<-chan Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, fmt.Errorf("%w: %w", errors.ErrNotRunning, t.closeErr)
	}

	if _, exists := t.entries[id]; exists {
		return nil, fmt.Errorf("%w: %d", errors.ErrDuplicateRequestID, id)
	}

	e := &entry{
		method: method,
		done:   make(chan Result, 1),
	}

	if timeout > 0 {
		e.timer = time.AfterFunc(timeout, func() {
			if t.Reject(id, &errors.TimeoutError{Method: method, Timeout: timeout}) {
				t.log.Warn("Request timed out", "id", id, "method", method, "timeout", timeout)
			}
		})
	}

	t.entries[id] = e

	return e.done, nil
}

// Resolve settles id with a successful value. It returns false when id is
// not pending (unknown, already settled, or timed out).
func (t *Table) Resolve(id int64, value json.RawMessage) bool {
	e := t.take(id)
	if e == nil {
		return false
	}

	e.done <- Result{Value: value}

	return true
}

// Reject settles id with err. It returns false when id is not pending.
func (t *Table) Reject(id int64, err error) bool {
	e := t.take(id)
	if e == nil {
		return false
	}

	e.done <- Result{Err: err}

	return true
}

// DrainAndRejectAll rejects every pending entry with err and empties the
// table. It returns the number of entries rejected and is safe to call on an
// empty table.
func (t *Table) DrainAndRejectAll(err error) int {
	t.mu.Lock()
	drained := t.drainLocked()
	t.mu.Unlock()

	for _, e := range drained {
		e.done <- Result{Err: err}
	}

	return len(drained)
}

// Close drains the table with err and refuses further registrations,
// returning err from Register. Only the first cause is kept.
func (t *Table) Close(err error) int {
	t.mu.Lock()

	if !t.closed {
		t.closed = true
		t.closeErr = err
	}

	drained := t.drainLocked()
	t.mu.Unlock()

	for _, e := range drained {
		e.done <- Result{Err: err}
	}

	return len(drained)
}

// Len returns the number of pending entries.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

// Method returns the method name of a pending entry.
func (t *Table) Method(id int64) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return "", false
	}

	return e.method, true
}

// take removes and returns the entry for id, stopping its timer.
func (t *Table) take(id int64) *entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return nil
	}

	delete(t.entries, id)

	if e.timer != nil {
		e.timer.Stop()
	}

	return e
}

// drainLocked removes all entries. Caller must hold t.mu.
func (t *Table) drainLocked() []*entry {
	if len(t.entries) == 0 {
		return nil
	}

	drained := make([]*entry, 0, len(t.entries))

	for id, e := range t.entries {
		if e.timer != nil {
			e.timer.Stop()
		}

		drained = append(drained, e)
		delete(t.entries, id)
	}

	return drained
}
