package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the bugtracker release, set at build time with
// -ldflags "-X github.com/mesh-intelligence/bugtracker/internal/cli.Version=...".
var Version = "0.1.0-dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bugtracker version",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "bugtracker", Version)
			return err
		},
	}
}
