package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	mcptest "github.com/wagiedev/mcp-test-go"
	"github.com/wagiedev/mcp-test-go/internal/errors"
	"github.com/wagiedev/mcp-test-go/internal/message"
)

func newCallCmd(a *app) *cobra.Command {
	var (
		server   serverFlags
		format   string
		rawInput string
	)

	cmd := &cobra.Command{
		Use:   "call TOOL [flags] -- COMMAND [ARGS...]",
		Short: "Call one tool and print its result",
		Long: `Call starts the server, calls TOOL with the JSON object given by --args
and prints the result. The exit code is 1 when the tool reports isError.`,
		Example: `  mcptest call echo --args '{"message":"hi"}' -- ./echo-server`,
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, command := splitAtDash(cmd, args)
			if len(positional) != 1 {
				return fmt.Errorf("expected exactly one tool name before --, got %d", len(positional))
			}

			if err := validateFormat(format); err != nil {
				return err
			}

			toolArgs, err := parseToolArgs(rawInput)
			if err != nil {
				return err
			}

			o, err := server.resolve(command)
			if err != nil {
				return err
			}

			name := positional[0]
			a.log.Debug("Calling tool", "tool", name, "command", describeCommand(o))

			var result *message.ToolResult

			err = mcptest.WithTestServer(cmd.Context(), func(s *mcptest.TestServer) error {
				var callErr error

				result, callErr = s.CallTool(cmd.Context(), name, toolArgs)

				return callErr
			}, sessionOptions(a.log, o)...)
			if err != nil {
				return err
			}

			if format == FormatTable {
				renderToolResultTable(cmd.OutOrStdout(), name, result)
			} else if err := writeStructured(cmd.OutOrStdout(), format, result); err != nil {
				return err
			}

			if result.IsError {
				return errToolReportedError
			}

			return nil
		},
	}

	server.register(cmd)
	cmd.Flags().StringVarP(&format, "output", "o", FormatTable, "output format: table, json or yaml")
	cmd.Flags().StringVarP(&rawInput, "args", "a", "", "tool arguments as a JSON object")

	return cmd
}

func parseToolArgs(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, &errors.ConfigError{Field: "args", Reason: fmt.Sprintf("must be a JSON object: %v", err)}
	}

	if args == nil {
		args = map[string]any{}
	}

	return args, nil
}
