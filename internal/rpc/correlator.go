package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/wagiedev/mcp-test-go/internal/jsonrpc"
	"github.com/wagiedev/mcp-test-go/internal/pending"
)

// Transport defines the minimal interface needed to send requests.
//
// This interface is satisfied by subprocess.Supervisor but allows for
// testing with in-memory transports.
type Transport interface {
	Write(ctx context.Context, data []byte) error
	Pending() *pending.Table
}

// Correlator issues requests over a Transport and matches responses by id.
type Correlator struct {
	log       *slog.Logger
	transport Transport
	timeout   time.Duration

	nextID atomic.Int64
}

// NewCorrelator creates a correlator that applies timeout to every request
// sent with Send. A zero timeout disables the per-request timer.
func NewCorrelator(log *slog.Logger, transport Transport, timeout time.Duration) *Correlator {
	return &Correlator{
		log:       log.With("component", "rpc"),
		transport: transport,
		timeout:   timeout,
	}
}

// Send issues a request and waits for its result using the default timeout.
func (c *Correlator) Send(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return c.SendWithTimeout(ctx, method, params, c.timeout)
}

// SendWithTimeout issues a request and waits for its result.
//
// The result is returned verbatim. An error response from the peer is
// returned as *errors.RPCError; an expired timer as *errors.TimeoutError;
// a cancelled context as ctx.Err(). If the process stops first, the
// supervisor's stop cause is returned.
func (c *Correlator) SendWithTimeout(
	ctx context.Context,
	method string,
	params any,
	timeout time.Duration,
) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := c.nextID.Add(1)

	req, err := jsonrpc.NewRequest(id, method, params)
	if err != nil {
		return nil, err
	}

	data, err := jsonrpc.Encode(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	table := c.transport.Pending()

	// Register before writing so a fast response always finds its entry.
	done, err := table.Register(id, method, timeout)
	if err != nil {
		c.log.Debug("Request refused", "id", id, "method", method, "error", err)

		return nil, err
	}

	c.log.Debug("Sending request", "id", id, "method", method)

	if err := c.transport.Write(ctx, data); err != nil {
		table.Reject(id, err)

		c.log.Warn("Failed to send request", "id", id, "method", method, "error", err)

		return nil, fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case res := <-done:
		if res.Err != nil {
			c.log.Debug("Request failed", "id", id, "method", method, "error", res.Err)

			return nil, res.Err
		}

		c.log.Debug("Request completed", "id", id, "method", method)

		return res.Value, nil

	case <-ctx.Done():
		table.Reject(id, ctx.Err())

		c.log.Debug("Request cancelled", "id", id, "method", method)

		return nil, ctx.Err()
	}
}

// Notify sends a notification. Notifications carry no id and get no response.
func (c *Correlator) Notify(ctx context.Context, method string, params any) error {
	req, err := jsonrpc.NewNotification(method, params)
	if err != nil {
		return err
	}

	data, err := jsonrpc.Encode(req)
	if err != nil {
		return fmt.Errorf("encode %s notification: %w", method, err)
	}

	c.log.Debug("Sending notification", "method", method)

	if err := c.transport.Write(ctx, data); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}

	return nil
}

// LastID returns the most recently allocated request id, or 0 if none.
func (c *Correlator) LastID() int64 {
	return c.nextID.Load()
}
