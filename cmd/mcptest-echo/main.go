// Command mcptest-echo serves the example MCP server on stdio.
//
// It is the reference peer for mcptest: point the harness or the probe CLI
// at it to see every operation succeed.
//
//	mcptest probe -- mcptest-echo
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/mcp-test-go/internal/config"
	"github.com/wagiedev/mcp-test-go/internal/echoserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mcptest-echo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, envErr := config.LoadEnvDefaults()

	level, err := config.ParseLogLevel(env.LogLevel)
	if err != nil {
		return err
	}

	// Stdout carries the protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if envErr != nil {
		log.Warn("Ignoring malformed environment defaults", "error", envErr)
	}

	log.Info("Serving example MCP server on stdio", "name", echoserver.Name, "version", echoserver.Version)

	return echoserver.New(log).Run(ctx, &mcp.StdioTransport{})
}
