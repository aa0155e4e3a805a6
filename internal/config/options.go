// Package config provides configuration types for the MCP test harness.
package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/wagiedev/mcp-test-go/internal/errors"
)

const (
	// DefaultTimeout is the per-request timeout used when none is configured.
	DefaultTimeout = 10 * time.Second

	// DefaultProtocolVersion is the MCP protocol version sent in initialize.
	DefaultProtocolVersion = "2024-11-05"

	// DefaultClientName is the client name sent in initialize.
	DefaultClientName = "mcp-test"

	// DefaultClientVersion is the client version sent in initialize.
	DefaultClientVersion = "0.1.0"

	// DefaultShutdownGrace bounds how long Close waits for reader goroutines.
	DefaultShutdownGrace = 2 * time.Second
)

// Implementation identifies a client or server in the initialize exchange.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Options configures a test session.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Command is the executable to spawn. Required.
	Command string

	// Args is the argument list passed to Command.
	Args []string

	// Env provides additional environment variables merged over the
	// current process environment.
	Env map[string]string

	// Cwd sets the working directory for the server process.
	// If empty, the current working directory is used.
	Cwd string

	// Timeout is the per-request timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// Stderr is called with each line the server writes to stderr.
	// Stderr chunks are always buffered regardless of this callback.
	Stderr func(line string)

	// Diagnostics is called with every line the harness drops: lines that
	// are not JSON (*errors.DecodeError) and responses with no pending
	// request (*errors.UnmatchedResponseError). If nil, drops are silent.
	Diagnostics func(err error)

	// ClientInfo is sent in the initialize request.
	ClientInfo Implementation

	// ProtocolVersion is the MCP protocol version sent in initialize.
	ProtocolVersion string

	// ShutdownGrace bounds how long Close waits for the process to exit.
	ShutdownGrace time.Duration
}

// EnvDefaults holds defaults that may be overridden from the environment.
type EnvDefaults struct {
	// Timeout is the default per-request timeout. ENV: MCPTEST_TIMEOUT
	Timeout time.Duration `env:"MCPTEST_TIMEOUT,default=10s"`
	// ProtocolVersion is the default MCP protocol version. ENV: MCPTEST_PROTOCOL_VERSION
	ProtocolVersion string `env:"MCPTEST_PROTOCOL_VERSION,default=2024-11-05"`
	// LogLevel is the default log level for the CLI. ENV: MCPTEST_LOG_LEVEL
	LogLevel string `env:"MCPTEST_LOG_LEVEL,default=warn"`
}

// LoadEnvDefaults decodes EnvDefaults from the environment.
//
// Malformed values are reported as an error alongside the built-in defaults,
// so callers may log and continue.
func LoadEnvDefaults() (EnvDefaults, error) {
	var env EnvDefaults

	err := envdecode.StrictDecode(&env)
	if err != nil && !stderrors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return builtinDefaults(), fmt.Errorf("decode environment defaults: %w", err)
	}

	fallback := builtinDefaults()

	if env.Timeout <= 0 {
		env.Timeout = fallback.Timeout
	}

	if env.ProtocolVersion == "" {
		env.ProtocolVersion = fallback.ProtocolVersion
	}

	if env.LogLevel == "" {
		env.LogLevel = fallback.LogLevel
	}

	return env, nil
}

func builtinDefaults() EnvDefaults {
	return EnvDefaults{
		Timeout:         DefaultTimeout,
		ProtocolVersion: DefaultProtocolVersion,
		LogLevel:        "warn",
	}
}

// ApplyDefaults fills zero-valued fields from env.
func (o *Options) ApplyDefaults(env EnvDefaults) {
	if o.Timeout == 0 {
		o.Timeout = env.Timeout
	}

	if o.ProtocolVersion == "" {
		o.ProtocolVersion = env.ProtocolVersion
	}

	if o.ClientInfo.Name == "" {
		o.ClientInfo.Name = DefaultClientName
	}

	if o.ClientInfo.Version == "" {
		o.ClientInfo.Version = DefaultClientVersion
	}

	if o.ShutdownGrace <= 0 {
		o.ShutdownGrace = DefaultShutdownGrace
	}
}

// Validate reports configuration errors as *errors.ConfigError.
func (o *Options) Validate() error {
	if o.Command == "" {
		return &errors.ConfigError{Field: "command", Reason: "is required"}
	}

	if o.Timeout < 0 {
		return &errors.ConfigError{Field: "timeout", Reason: fmt.Sprintf("must not be negative (got %s)", o.Timeout)}
	}

	return nil
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, &errors.ConfigError{Field: "log level", Reason: fmt.Sprintf("%q is not valid", name)}
	}

	return level, nil
}
