package mcptest

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// WithTestServer manages server lifecycle with automatic cleanup.
//
// This helper creates a server, starts it with the provided options, executes
// the callback function, and ensures proper cleanup via Close() when done.
// If Close() fails, a warning is logged but does not override the callback's
// error.
//
// Example usage:
//
//	err := mcptest.WithTestServer(ctx, func(s *mcptest.TestServer) error {
//	    tools, err := s.ListTools(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(len(tools), "tools")
//	    return nil
//	},
//	    mcptest.WithCommand("./my-server"),
//	    mcptest.WithLogger(log),
//	)
func WithTestServer(ctx context.Context, fn func(*TestServer) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	server := New(opts...)

	if _, err := server.Start(ctx); err != nil {
		_ = server.Close()

		return fmt.Errorf("failed to start server: %w", err)
	}

	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Warn("failed to close server", "error", closeErr)
		}
	}()

	return fn(server)
}

// StartForTest starts a server for the duration of a test.
//
// The server is closed by t.Cleanup. If it fails to start the test stops
// with t.Fatal. Whenever the test has failed, the server's stderr is logged
// during cleanup.
func StartForTest(t testing.TB, opts ...Option) *TestServer {
	t.Helper()

	server := New(opts...)

	t.Cleanup(func() {
		if t.Failed() {
			logStderr(t, server)
		}

		if err := server.Close(); err != nil {
			t.Logf("close MCP server: %v", err)
		}
	})

	if _, err := server.Start(t.Context()); err != nil {
		t.Fatalf("start MCP server: %v", err)
	}

	return server
}

func logStderr(t testing.TB, server *TestServer) {
	t.Helper()

	if text := strings.TrimSpace(strings.Join(server.Stderr(), "")); text != "" {
		t.Logf("MCP server stderr:\n%s", text)
	}
}
