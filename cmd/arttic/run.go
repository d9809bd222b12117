package main

import (
	"github.com/aretw0/arttic/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive canvas",
	Long:  `Starts a session in the terminal UI. When stdout is not a terminal it falls back to watch mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		return cli.Execute(opts)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the session without a UI",
	Long:  `Connects to the backend and prints connection changes, status changes and notices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunWatch(runOptions(cmd), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd, watchCmd)

	runCmd.Flags().Bool("headless", false, "Run without the terminal UI")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
