// Command mcptest probes MCP servers over stdio from the shell.
//
//	mcptest probe -- ./my-server --flag
//	mcptest call echo --args '{"message":"hi"}' -- ./my-server
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wagiedev/mcp-test-go/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, version, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
