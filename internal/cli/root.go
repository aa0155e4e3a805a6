package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wagiedev/mcp-test-go/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a failure, including a tool that reported isError.
	ExitCodeError = 1
)

// errToolReportedError is returned by call when the tool result has isError set.
// The result has already been printed, so Run does not print it again.
var errToolReportedError = stderrors.New("tool reported an error")

// app holds state shared by all commands.
type app struct {
	version  string
	logLevel string
	log      *slog.Logger
}

// NewRootCmd creates the mcptest command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version, log: slog.New(slog.DiscardHandler)}

	env, envErr := config.LoadEnvDefaults()

	root := &cobra.Command{
		Use:   "mcptest",
		Short: "Exercise MCP servers over stdio",
		Long: `mcptest spawns an MCP server, performs the initialize handshake and
calls its tools, resources and prompts, printing what the server returns.`,
		Version: version,
		// Errors are printed once by Run.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := config.ParseLogLevel(a.logLevel)
			if err != nil {
				return err
			}

			a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			if envErr != nil {
				a.log.Warn("Ignoring malformed environment defaults", "error", envErr)
			}

			return nil
		},
	}

	root.SetVersionTemplate(`{{printf "mcptest version %s\n" .Version}}`)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", env.LogLevel,
		"log level: debug, info, warn or error (env MCPTEST_LOG_LEVEL)")

	root.AddCommand(newProbeCmd(a))
	root.AddCommand(newCallCmd(a))
	root.AddCommand(newVersionCmd(a))

	return root
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)

	switch {
	case err == nil:
		return ExitCodeSuccess
	case stderrors.Is(err, errToolReportedError):
		return ExitCodeError
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return ExitCodeError
	}
}
