package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	mcptest "github.com/wagiedev/mcp-test-go"
	"github.com/wagiedev/mcp-test-go/internal/message"
)

// probeReport is everything probe learns about a server.
type probeReport struct {
	Server          message.ServerInfo `json:"server"`
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    []string           `json:"capabilities"`
	Instructions    string             `json:"instructions,omitempty"`
	Tools           []message.Tool     `json:"tools"`
	Resources       []message.Resource `json:"resources"`
	Prompts         []message.Prompt   `json:"prompts"`
}

func newProbeCmd(a *app) *cobra.Command {
	var (
		server serverFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "probe [flags] -- COMMAND [ARGS...]",
		Short: "Start a server and list what it offers",
		Long: `Probe starts the server, performs the initialize handshake and lists
the tools, resources and prompts for every capability the server advertises.`,
		Example: `  mcptest probe -- npx -y @modelcontextprotocol/server-everything
  mcptest probe -o yaml --config server.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, command := splitAtDash(cmd, args)
			if len(positional) > 0 {
				return fmt.Errorf("unexpected arguments %v: put the server command after --", positional)
			}

			if err := validateFormat(format); err != nil {
				return err
			}

			o, err := server.resolve(command)
			if err != nil {
				return err
			}

			a.log.Debug("Probing server", "command", describeCommand(o))

			report, err := probe(cmd, sessionOptions(a.log, o))
			if err != nil {
				return err
			}

			if format == FormatTable {
				renderProbeTable(cmd.OutOrStdout(), report)

				return nil
			}

			return writeStructured(cmd.OutOrStdout(), format, report)
		},
	}

	server.register(cmd)
	cmd.Flags().StringVarP(&format, "output", "o", FormatTable, "output format: table, json or yaml")

	return cmd
}

func probe(cmd *cobra.Command, opts []mcptest.Option) (*probeReport, error) {
	var report *probeReport

	err := mcptest.WithTestServer(cmd.Context(), func(s *mcptest.TestServer) error {
		ctx := cmd.Context()
		result := s.InitializeResult()
		caps := result.Capabilities

		report = &probeReport{
			Server:          result.ServerInfo,
			ProtocolVersion: result.ProtocolVersion,
			Capabilities:    capabilityNames(caps),
			Instructions:    result.Instructions,
			Tools:           []message.Tool{},
			Resources:       []message.Resource{},
			Prompts:         []message.Prompt{},
		}

		var err error

		if caps.HasTools() {
			if report.Tools, err = s.ListTools(ctx); err != nil {
				return err
			}
		}

		if caps.HasResources() {
			if report.Resources, err = s.ListResources(ctx); err != nil {
				return err
			}
		}

		if caps.HasPrompts() {
			if report.Prompts, err = s.ListPrompts(ctx); err != nil {
				return err
			}
		}

		return nil
	}, opts...)

	return report, err
}

func capabilityNames(caps message.ServerCapabilities) []string {
	names := []string{}

	for name, present := range map[string]bool{
		"completions": caps.Completions != nil,
		"logging":     caps.Logging != nil,
		"prompts":     caps.HasPrompts(),
		"resources":   caps.HasResources(),
		"tools":       caps.HasTools(),
	} {
		if present {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}
