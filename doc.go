// Package mcptest is a test harness for MCP servers that speak JSON-RPC
// over stdio.
//
// It spawns the server under test as a child process, performs the MCP
// initialize handshake, and exposes the protocol's operations (tools,
// resources, prompts) as plain Go calls with typed results. Requests are
// correlated by id, so concurrent calls are safe and responses may arrive
// in any order.
//
// # Basic Usage
//
// In a test, StartForTest starts the server and closes it on cleanup:
//
//	func TestMyServer(t *testing.T) {
//	    server := mcptest.StartForTest(t,
//	        mcptest.WithCommand("node"),
//	        mcptest.WithArgs("dist/server.js"),
//	    )
//
//	    tools, err := server.ListTools(t.Context())
//	    require.NoError(t, err)
//	    mcpassert.ContainsTool(t, tools, "echo")
//
//	    result, err := server.CallTool(t.Context(), "echo", map[string]any{"message": "hi"})
//	    require.NoError(t, err)
//	    mcpassert.IsToolSuccess(t, result)
//	    mcpassert.HasTextContent(t, result, "hi")
//	}
//
// Outside tests, use CreateTestServer or the WithTestServer helper:
//
//	err := mcptest.WithTestServer(ctx, func(s *mcptest.TestServer) error {
//	    _, err := s.CallTool(ctx, "add", map[string]any{"a": 1, "b": 2})
//	    return err
//	}, mcptest.WithCommand("./my-server"))
//
// # Error Handling
//
// Protocol errors returned by the server are *RPCError values. A tool that
// reports isError is not a Go error: inspect ToolResult.IsError or use the
// IsToolError matcher. Requests that outlive the timeout fail with a
// *TimeoutError (errors.Is(err, ErrRequestTimeout)); if the server exits,
// every in-flight request fails with a *ProcessError carrying the exit code
// and the tail of stderr.
//
// # Logging
//
// The harness is silent by default. Pass WithLogger to receive structured
// log/slog output; every line carries the session id.
package mcptest
