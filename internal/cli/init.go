package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize bugtracker storage",
		Long:  "Create the configuration directory with a default config.yaml and\nthe data directory with empty JSONL files.",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.attach(); err != nil {
				return err
			}
			cfg, err := a.storeConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "bugtracker initialized")
			fmt.Fprintln(out, "  config:", a.cfg.ConfigFileUsed())
			fmt.Fprintln(out, "  data:  ", cfg.DataDir)
			return nil
		},
	}
}
