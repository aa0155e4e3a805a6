package mcptest

import (
	"log/slog"
	"maps"
	"time"

	"github.com/wagiedev/mcp-test-go/internal/config"
)

// Options configures a TestServer.
type Options = config.Options

// Implementation identifies the client in the initialize request.
type Implementation = config.Implementation

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a new Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Process =====

// WithCommand sets the executable that starts the server. Required.
func WithCommand(command string) Option {
	return func(o *Options) {
		o.Command = command
	}
}

// WithArgs sets the arguments passed to the command.
func WithArgs(args ...string) Option {
	return func(o *Options) {
		o.Args = args
	}
}

// WithEnv adds environment variables for the server process.
// They are merged over the current environment; repeated calls merge too.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}

		maps.Copy(o.Env, env)
	}
}

// WithCwd sets the working directory for the server process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// ===== Protocol =====

// WithTimeout sets the per-request timeout. The default is 10s, or
// MCPTEST_TIMEOUT when set.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithClientInfo overrides the client name and version sent in initialize.
func WithClientInfo(name, version string) Option {
	return func(o *Options) {
		o.ClientInfo = Implementation{Name: name, Version: version}
	}
}

// WithProtocolVersion overrides the protocol version sent in initialize.
func WithProtocolVersion(version string) Option {
	return func(o *Options) {
		o.ProtocolVersion = version
	}
}

// WithShutdownGrace bounds how long Close waits for the process to stop.
func WithShutdownGrace(grace time.Duration) Option {
	return func(o *Options) {
		o.ShutdownGrace = grace
	}
}

// ===== Observability =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithStderr registers a callback invoked with each line the server writes
// to stderr. The callback runs on the stderr reader goroutine.
func WithStderr(fn func(line string)) Option {
	return func(o *Options) {
		o.Stderr = fn
	}
}

// WithDiagnostics registers a callback for stdout traffic the harness drops:
// lines that are not JSON (*DecodeError) and responses with no pending
// request (*UnmatchedResponseError). Without it, such traffic is ignored.
func WithDiagnostics(fn func(err error)) Option {
	return func(o *Options) {
		o.Diagnostics = fn
	}
}
