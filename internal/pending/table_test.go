package pending

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/mcp-test-go/internal/errors"
)

func newTestTable() *Table {
	return NewTable(slog.Default())
}

func receive(t *testing.T, ch <-chan Result) Result {
	t.Helper()

	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("result was not delivered")

		return Result{}
	}
}

func requireNoResult(t *testing.T, ch <-chan Result) {
	t.Helper()

	select {
	case res := <-ch:
		t.Fatalf("unexpected second result: %+v", res)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestTable_RegisterResolve(t *testing.T) {
	table := newTestTable()

	ch, err := table.Register(1, "echo", time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	method, ok := table.Method(1)
	require.True(t, ok)
	require.Equal(t, "echo", method)

	require.True(t, table.Resolve(1, json.RawMessage(`{"message":"hi"}`)))
	require.Zero(t, table.Len())

	res := receive(t, ch)
	require.NoError(t, res.Err)
	require.JSONEq(t, `{"message":"hi"}`, string(res.Value))
}

func TestTable_RegisterReject(t *testing.T) {
	table := newTestTable()

	ch, err := table.Register(1, "x", time.Second)
	require.NoError(t, err)

	rpcErr := &errors.RPCError{Code: -32601, Message: "Unknown method: x"}
	require.True(t, table.Reject(1, rpcErr))

	res := receive(t, ch)
	require.Same(t, rpcErr, res.Err)
}

func TestTable_DuplicateRegister(t *testing.T) {
	table := newTestTable()

	_, err := table.Register(5, "a", time.Second)
	require.NoError(t, err)

	_, err = table.Register(5, "b", time.Second)
	require.ErrorIs(t, err, errors.ErrDuplicateRequestID)
}

func TestTable_UnknownIDIsDropped(t *testing.T) {
	table := newTestTable()

	require.False(t, table.Resolve(42, json.RawMessage(`null`)))
	require.False(t, table.Reject(42, stderrors.New("x")))
}

func TestTable_SettlesOnce(t *testing.T) {
	table := newTestTable()

	ch, err := table.Register(1, "echo", time.Second)
	require.NoError(t, err)

	require.True(t, table.Resolve(1, json.RawMessage(`1`)))
	require.False(t, table.Resolve(1, json.RawMessage(`2`)))
	require.False(t, table.Reject(1, stderrors.New("late")))

	res := receive(t, ch)
	require.JSONEq(t, `1`, string(res.Value))
	requireNoResult(t, ch)
}

func TestTable_Timeout(t *testing.T) {
	table := newTestTable()

	timeout := 50 * time.Millisecond
	start := time.Now()

	ch, err := table.Register(1, "tools/list", timeout)
	require.NoError(t, err)

	res := receive(t, ch)
	elapsed := time.Since(start)

	timeoutErr, ok := stderrors.AsType[*errors.TimeoutError](res.Err)
	require.True(t, ok)
	require.Equal(t, "tools/list", timeoutErr.Method)
	require.Equal(t, timeout, timeoutErr.Timeout)
	require.ErrorIs(t, res.Err, errors.ErrRequestTimeout)
	require.GreaterOrEqual(t, elapsed, timeout)
	require.Less(t, elapsed, timeout+time.Second)
	require.Zero(t, table.Len())
}

func TestTable_ResponseAfterTimeoutIsDropped(t *testing.T) {
	table := newTestTable()

	ch, err := table.Register(1, "slow", 10*time.Millisecond)
	require.NoError(t, err)

	res := receive(t, ch)
	require.ErrorIs(t, res.Err, errors.ErrRequestTimeout)

	require.False(t, table.Resolve(1, json.RawMessage(`{}`)))
	requireNoResult(t, ch)
}

func TestTable_ResolveCancelsTimer(t *testing.T) {
	table := newTestTable()

	ch, err := table.Register(1, "fast", 30*time.Millisecond)
	require.NoError(t, err)

	require.True(t, table.Resolve(1, json.RawMessage(`true`)))

	res := receive(t, ch)
	require.NoError(t, res.Err)

	// The timer would have fired by now if it had not been stopped.
	time.Sleep(60 * time.Millisecond)
	requireNoResult(t, ch)
}

func TestTable_ZeroTimeoutNeverFires(t *testing.T) {
	table := newTestTable()

	ch, err := table.Register(1, "forever", 0)
	require.NoError(t, err)

	requireNoResult(t, ch)
	require.Equal(t, 1, table.Len())
}

func TestTable_DrainAndRejectAll(t *testing.T) {
	table := newTestTable()

	ch1, err := table.Register(1, "a", time.Second)
	require.NoError(t, err)

	ch2, err := table.Register(2, "b", time.Second)
	require.NoError(t, err)

	exitErr := &errors.ProcessError{ExitCode: 1}
	require.Equal(t, 2, table.DrainAndRejectAll(exitErr))
	require.Zero(t, table.Len())

	require.Same(t, exitErr, receive(t, ch1).Err)
	require.Same(t, exitErr, receive(t, ch2).Err)

	// Idempotent on an empty table.
	require.Zero(t, table.DrainAndRejectAll(exitErr))

	// Draining does not close the table.
	_, err = table.Register(3, "c", time.Second)
	require.NoError(t, err)
}

func TestTable_Close(t *testing.T) {
	table := newTestTable()

	ch, err := table.Register(1, "a", time.Second)
	require.NoError(t, err)

	require.Equal(t, 1, table.Close(errors.ErrSessionClosed))
	require.ErrorIs(t, receive(t, ch).Err, errors.ErrSessionClosed)

	_, err = table.Register(2, "b", time.Second)
	require.ErrorIs(t, err, errors.ErrSessionClosed)
	require.ErrorIs(t, err, errors.ErrNotStarted)

	// The first cause wins.
	require.Zero(t, table.Close(stderrors.New("second")))

	_, err = table.Register(3, "c", time.Second)
	require.ErrorIs(t, err, errors.ErrSessionClosed)
}

// TestTable_ResponseTimeoutRace races a response against a timeout many
// times and checks that every request settles exactly once.
func TestTable_ResponseTimeoutRace(t *testing.T) {
	table := newTestTable()

	var settledTwice atomic.Int32

	var wg sync.WaitGroup

	for i := range int64(200) {
		id := i + 1

		ch, err := table.Register(id, "race", time.Millisecond)
		require.NoError(t, err)

		wg.Go(func() {
			time.Sleep(time.Duration(id%3) * 500 * time.Microsecond)
			table.Resolve(id, json.RawMessage(`{}`))
		})

		wg.Go(func() {
			<-ch

			select {
			case <-ch:
				settledTwice.Add(1)
			case <-time.After(10 * time.Millisecond):
			}
		})
	}

	wg.Wait()

	require.Zero(t, settledTwice.Load())
	require.Zero(t, table.Len())
}
