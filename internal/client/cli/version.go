package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/filedrop/internal/buildinfo"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build data",
		Args:  cobra.NoArgs,
		// no server needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
