package main

import (
	"github.com/aretw0/arttic/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session over HTTP",
	Long: `Starts a session and exposes its state, nodes, notices and gallery as JSON,
a Server-Sent Events stream of changes and, when enabled, Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		opts.Addr, _ = cmd.Flags().GetString("addr")
		opts.Metrics, _ = cmd.Flags().GetBool("metrics")
		return cli.RunServe(opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address, overrides introspection.addr")
	serveCmd.Flags().Bool("metrics", false, "Expose /metrics")
}
