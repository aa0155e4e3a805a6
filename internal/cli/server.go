package cli

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/spf13/cobra"

	mcptest "github.com/wagiedev/mcp-test-go"
	"github.com/wagiedev/mcp-test-go/internal/config"
	"github.com/wagiedev/mcp-test-go/internal/errors"
)

// serverFlags are the flags that describe which server to start.
type serverFlags struct {
	configFile string
	timeout    time.Duration
	env        map[string]string
	cwd        string
}

func (f *serverFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.configFile, "config", "c", "", "server file (.yaml, .yml or .toml) with command, args, env, cwd and timeout")
	flags.DurationVar(&f.timeout, "timeout", 0, "per-request timeout (default 10s, env MCPTEST_TIMEOUT)")
	flags.StringToStringVarP(&f.env, "env", "e", nil, "extra environment for the server, KEY=VALUE (repeatable)")
	flags.StringVar(&f.cwd, "cwd", "", "working directory for the server")
}

// resolve merges the server command, the flags and the server file.
// Values given on the command line win over the file.
func (f *serverFlags) resolve(command []string) (*config.Options, error) {
	o := &config.Options{
		Env:     maps.Clone(f.env),
		Cwd:     f.cwd,
		Timeout: f.timeout,
	}

	if len(command) > 0 {
		o.Command = command[0]
		o.Args = command[1:]
	}

	if f.configFile != "" {
		sf, err := config.LoadServerFile(f.configFile)
		if err != nil {
			return nil, err
		}

		if err := sf.Apply(o); err != nil {
			return nil, err
		}
	}

	if o.Command == "" {
		return nil, &errors.ConfigError{Field: "command", Reason: "is required: pass it after -- or use --config"}
	}

	return o, nil
}

// sessionOptions converts resolved options into harness options.
func sessionOptions(log *slog.Logger, o *config.Options) []mcptest.Option {
	return []mcptest.Option{
		mcptest.WithCommand(o.Command),
		mcptest.WithArgs(o.Args...),
		mcptest.WithEnv(o.Env),
		mcptest.WithCwd(o.Cwd),
		mcptest.WithTimeout(o.Timeout),
		mcptest.WithLogger(log),
		mcptest.WithStderr(func(line string) {
			log.Debug("Server stderr", "line", line)
		}),
		mcptest.WithDiagnostics(func(err error) {
			log.Debug("Dropped server output", "error", err)
		}),
	}
}

// splitAtDash returns the positional args before "--" and the server command after it.
func splitAtDash(cmd *cobra.Command, args []string) ([]string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}

	return args[:dash], args[dash:]
}

// describeCommand renders a command line for messages.
func describeCommand(o *config.Options) string {
	return fmt.Sprintf("%s %v", o.Command, o.Args)
}
