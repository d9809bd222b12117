package main

import (
	"github.com/aretw0/arttic/internal/cli"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the backend channel arttic would open",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunVersion(runOptions(cmd), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
