package mcptest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcptest "github.com/wagiedev/mcp-test-go"
)

func TestWithTestServer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mcptest.WithTestServer(ctx, func(_ *mcptest.TestServer) error {
		t.Error("callback should not be called with cancelled context")

		return nil
	}, echoServer()...)

	require.ErrorIs(t, err, context.Canceled)
}

func TestWithTestServer_RunsCallbackAndCloses(t *testing.T) {
	var captured *mcptest.TestServer

	err := mcptest.WithTestServer(context.Background(), func(s *mcptest.TestServer) error {
		captured = s

		tools, err := s.ListTools(context.Background())
		if err != nil {
			return err
		}

		assert.NotEmpty(t, tools)

		return nil
	}, echoServer()...)
	require.NoError(t, err)

	// The server was closed on return.
	_, err = captured.ListTools(context.Background())
	require.ErrorIs(t, err, mcptest.ErrNotInitialized)
}

func TestWithTestServer_CallbackError(t *testing.T) {
	sentinel := errors.New("callback failed")

	err := mcptest.WithTestServer(context.Background(), func(_ *mcptest.TestServer) error {
		return sentinel
	}, echoServer()...)

	require.ErrorIs(t, err, sentinel)
}

func TestWithTestServer_StartError(t *testing.T) {
	err := mcptest.WithTestServer(context.Background(), func(_ *mcptest.TestServer) error {
		t.Error("callback should not be called when start fails")

		return nil
	}, mcptest.WithCommand("/nonexistent/mcp-server"))

	var startErr *mcptest.StartError
	require.ErrorAs(t, err, &startErr)
	assert.Contains(t, err.Error(), "failed to start server")
}

func TestStartForTest(t *testing.T) {
	server := mcptest.StartForTest(t, echoServer()...)

	require.NoError(t, server.Ping(t.Context()))
	assert.NotNil(t, server.Done())
}
