// Package errors defines error types for the MCP test harness.
//
// This package provides structured error types that wrap different failure
// scenarios when driving an MCP server process. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and errors.AsType.
package errors
