// Package subprocess provides the stdio transport for an MCP server process.
//
// The Supervisor spawns the server as a child process and owns its three
// standard streams. Stdout is framed into lines, decoded, and matched against
// the pending-request table; stderr is buffered for post-mortem inspection.
// When the process exits or fails, every pending request is rejected with a
// description of the cause.
package subprocess
