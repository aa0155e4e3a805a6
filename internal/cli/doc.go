// Package cli implements the mcptest command line.
//
// Commands:
//
//	mcptest probe [--config FILE] [-o table|json|yaml] -- COMMAND [ARGS...]
//	mcptest call TOOL [--args JSON] -- COMMAND [ARGS...]
//	mcptest version
//
// Everything after "--" is the server command. A YAML or TOML server file
// given with --config may supply it instead.
package cli
