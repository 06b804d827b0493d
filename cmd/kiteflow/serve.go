package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/kiteflow/internal/cli"
	"github.com/aretw0/kiteflow/pkg/runner"
)

var serveCmd = &cobra.Command{
	Use:   "serve [flow]",
	Short: "Start the HTTP server",
	Long: `Exposes the flow over HTTP:
  POST /events   dispatch one event
  GET  /events   subscribed event kinds and commands
  GET  /graph    Mermaid diagram (format=json for the flow document)
  GET  /healthz  liveness
  GET  /metrics  Prometheus metrics (unless --metrics=false)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := cli.ServeOptions{FlowPath: flowArg(args), Metrics: app.Config.HTTP.Metrics}
		opts.Port, _ = cmd.Flags().GetInt("port")
		opts.Journal, _ = cmd.Flags().GetString("journal")
		if cmd.Flags().Changed("metrics") {
			opts.Metrics, _ = cmd.Flags().GetBool("metrics")
		}

		ctx, stop := runner.SignalContext(cmd.Context())
		defer stop()
		return cli.Serve(ctx, app, opts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config, 8080)")
	serveCmd.Flags().String("journal", "", "Path of a bolt journal recording every response")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
}
