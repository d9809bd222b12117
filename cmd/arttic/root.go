package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arttic/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arttic",
	Short: "arttic is a terminal studio for a remote image generation backend",
	Long: `arttic connects to an image generation backend, keeps a live session with it
and lays the controls out as nodes on a canvas you can pan, zoom and rearrange.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default ./arttic.yaml when present)")
	rootCmd.PersistentFlags().String("backend", "", "Backend URL, overrides backend_url")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug logs to stderr")
}

// runOptions reads the persistent flags.
func runOptions(cmd *cobra.Command) cli.RunOptions {
	configPath, _ := cmd.Flags().GetString("config")
	backend, _ := cmd.Flags().GetString("backend")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.RunOptions{
		ConfigPath: configPath,
		BackendURL: backend,
		Debug:      debug,
	}
}
