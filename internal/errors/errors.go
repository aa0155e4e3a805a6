package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MCPTestError is the base interface for all harness errors.
type MCPTestError interface {
	error
	IsMCPTestError() bool
}

// Compile-time verification that all error types implement MCPTestError.
var (
	_ MCPTestError = (*StartError)(nil)
	_ MCPTestError = (*ProcessError)(nil)
	_ MCPTestError = (*TimeoutError)(nil)
	_ MCPTestError = (*RPCError)(nil)
	_ MCPTestError = (*DecodeError)(nil)
	_ MCPTestError = (*UnmatchedResponseError)(nil)
	_ MCPTestError = (*MessageParseError)(nil)
	_ MCPTestError = (*ConfigError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotStarted indicates the server process has not been started.
	ErrNotStarted = errors.New("server not started")

	// ErrNotRunning indicates the server process has stopped. It matches ErrNotStarted
	// so callers can check a single transport-not-ready condition.
	ErrNotRunning = fmt.Errorf("%w: process is no longer running", ErrNotStarted)

	// ErrStdinClosed indicates stdin was closed after a cancelled write.
	ErrStdinClosed = fmt.Errorf("%w: stdin closed", ErrNotStarted)

	// ErrAlreadyStarted indicates Start was called twice on the same session.
	ErrAlreadyStarted = errors.New("server already started")

	// ErrNotInitialized indicates a protocol operation was attempted before the handshake.
	ErrNotInitialized = errors.New("server not initialized: call Start() first")

	// ErrSessionClosed indicates the session was closed while requests were pending.
	ErrSessionClosed = errors.New("client closed")

	// ErrRequestTimeout indicates a request timed out.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrDuplicateRequestID indicates a request id was registered twice.
	ErrDuplicateRequestID = errors.New("duplicate request id")
)

// StartError indicates the server process could not be spawned.
type StartError struct {
	Command string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start server %q: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// IsMCPTestError implements MCPTestError.
func (e *StartError) IsMCPTestError() bool { return true }

// ProcessError indicates the server process exited or failed while running.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("server exited with code %d: %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("server exited with code %d", e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsMCPTestError implements MCPTestError.
func (e *ProcessError) IsMCPTestError() bool { return true }

// TimeoutError indicates no response arrived within the configured window.
type TimeoutError struct {
	Method  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %dms: %s", e.Timeout.Milliseconds(), e.Method)
}

// Is reports whether target is ErrRequestTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrRequestTimeout
}

// IsMCPTestError implements MCPTestError.
func (e *TimeoutError) IsMCPTestError() bool { return true }

// RPCError is an error object returned by the server in a JSON-RPC response.
// It is propagated verbatim as the failure value of the matching call.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsMCPTestError implements MCPTestError.
func (e *RPCError) IsMCPTestError() bool { return true }

// DecodeError indicates a line from the server could not be parsed as JSON.
// It never reaches callers; it is only reported to diagnostic hooks.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode line from server: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsMCPTestError implements MCPTestError.
func (e *DecodeError) IsMCPTestError() bool { return true }

// UnmatchedResponseError describes a response whose id has no pending request.
// It never reaches callers; it is only reported to diagnostic hooks.
type UnmatchedResponseError struct {
	ID int64
}

func (e *UnmatchedResponseError) Error() string {
	return fmt.Sprintf("no pending request for response id %d", e.ID)
}

// IsMCPTestError implements MCPTestError.
func (e *UnmatchedResponseError) IsMCPTestError() bool { return true }

// MessageParseError indicates a result payload did not have the expected shape.
type MessageParseError struct {
	Message string
	Err     error
	Data    json.RawMessage
}

func (e *MessageParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Message, e.Err)
}

func (e *MessageParseError) Unwrap() error {
	return e.Err
}

// IsMCPTestError implements MCPTestError.
func (e *MessageParseError) IsMCPTestError() bool { return true }

// ConfigError indicates invalid session configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Reason)
}

// IsMCPTestError implements MCPTestError.
func (e *ConfigError) IsMCPTestError() bool { return true }
