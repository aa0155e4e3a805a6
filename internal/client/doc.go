// Package client implements the MCP protocol session that drives a server
// under test.
//
// A Client owns a subprocess.Supervisor and an rpc.Correlator. Start spawns
// the server and performs the initialize handshake; every named operation
// (tools, resources, prompts) is refused with errors.ErrNotInitialized until
// the handshake has completed, and again after Close.
//
// Example usage:
//
//	c := client.New(options)
//	if _, err := c.Start(ctx); err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	tools, err := c.ListTools(ctx)
package client
