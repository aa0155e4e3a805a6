package mcptest

import "github.com/wagiedev/mcp-test-go/internal/errors"

// Re-export error types from internal package

// StartError indicates the server process could not be spawned.
type StartError = errors.StartError

// ProcessError indicates the server process exited while requests were in flight.
type ProcessError = errors.ProcessError

// TimeoutError indicates a request received no response in time.
type TimeoutError = errors.TimeoutError

// RPCError is a JSON-RPC error response from the server.
type RPCError = errors.RPCError

// DecodeError describes a stdout line that was not valid JSON.
// It is only delivered to the WithDiagnostics hook.
type DecodeError = errors.DecodeError

// UnmatchedResponseError describes a response with no pending request.
// It is only delivered to the WithDiagnostics hook.
type UnmatchedResponseError = errors.UnmatchedResponseError

// MessageParseError indicates a result did not have the expected shape.
type MessageParseError = errors.MessageParseError

// ConfigError indicates invalid options.
type ConfigError = errors.ConfigError

// MCPTestError is the base interface for all harness errors.
type MCPTestError = errors.MCPTestError

// Re-export sentinel errors from internal package.
var (
	// ErrNotStarted indicates the server process has not been started.
	ErrNotStarted = errors.ErrNotStarted

	// ErrNotRunning indicates the server process has stopped. It wraps ErrNotStarted.
	ErrNotRunning = errors.ErrNotRunning

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.ErrAlreadyStarted

	// ErrNotInitialized indicates the handshake has not completed, or the session was closed.
	ErrNotInitialized = errors.ErrNotInitialized

	// ErrSessionClosed indicates the session was closed while a request was pending.
	ErrSessionClosed = errors.ErrSessionClosed

	// ErrRequestTimeout matches every *TimeoutError.
	ErrRequestTimeout = errors.ErrRequestTimeout
)
