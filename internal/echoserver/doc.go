// Package echoserver implements the example MCP server used to exercise the
// harness end to end.
//
// The server is built on the official MCP Go SDK and exposes:
//   - tools echo (message), add (a, b) and fail (message)
//   - resource greeting://hello
//   - prompt greet (name)
//
// cmd/mcptest-echo serves it on stdio.
package echoserver
