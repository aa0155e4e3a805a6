// Package jsonrpc implements the newline-delimited JSON-RPC 2.0 wire format
// spoken by MCP servers over stdio.
//
// The package has two halves:
//   - Framer turns an arbitrary sequence of byte chunks into complete lines,
//     retaining a trailing partial line across chunk boundaries.
//   - Decode parses one line and classifies it as a response, a notification,
//     or a server-initiated request.
//
// Nothing in this package performs I/O.
package jsonrpc
