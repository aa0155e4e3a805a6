package mcptest_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	mcptest "github.com/wagiedev/mcp-test-go"
	"github.com/wagiedev/mcp-test-go/internal/echoserver"
	"github.com/wagiedev/mcp-test-go/internal/testpeer"
)

// envHelperMode selects which peer the helper process runs.
const envHelperMode = "MCPTEST_HELPER_MODE"

// TestHelperProcess is not a real test. When the test binary is
// re-executed as a server, it serves either the example echo server or the
// scripted peer.
func TestHelperProcess(t *testing.T) {
	if !testpeer.IsHelperProcess() {
		return
	}

	if os.Getenv(envHelperMode) == "echo" {
		if err := echoserver.Run(context.Background(), slog.New(slog.DiscardHandler), os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "echoserver: %v\n", err)
		}

		os.Exit(0)
	}

	testpeer.Main()
}

// echoServer returns options that start the example echo server.
func echoServer(extra ...mcptest.Option) []mcptest.Option {
	command, args, env := testpeer.Command(testpeer.Config{})
	env[envHelperMode] = "echo"

	return append([]mcptest.Option{
		mcptest.WithCommand(command),
		mcptest.WithArgs(args...),
		mcptest.WithEnv(env),
	}, extra...)
}

// scriptedPeer returns options that start the scripted peer with cfg.
func scriptedPeer(cfg testpeer.Config, extra ...mcptest.Option) []mcptest.Option {
	command, args, env := testpeer.Command(cfg)

	return append([]mcptest.Option{
		mcptest.WithCommand(command),
		mcptest.WithArgs(args...),
		mcptest.WithEnv(env),
	}, extra...)
}
