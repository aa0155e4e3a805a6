package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the command that prints the mcptest version.
func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mcptest",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mcptest version %s\n", a.version)
		},
	}
}
