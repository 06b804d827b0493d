package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/kiteflow/internal/cli"
	"github.com/aretw0/kiteflow/pkg/runner"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flow]",
	Short: "Dispatch events through a flow",
	Long: `Reads events as JSON lines from stdin ({"kind": "...", "payload": {...}}, or a
bare event kind per line) and dispatches them one at a time. With --redis the
events are popped from the configured redis queue instead and responses are
pushed back to redis.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := cli.RunOptions{FlowPath: flowArg(args), In: cmd.InOrStdin()}
		opts.FromRedis, _ = cmd.Flags().GetBool("redis")
		opts.Drain, _ = cmd.Flags().GetBool("drain")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Journal, _ = cmd.Flags().GetString("journal")
		opts.MaxEvents, _ = cmd.Flags().GetInt("max")

		ctx, stop := runner.SignalContext(cmd.Context())
		defer stop()

		stats, err := cli.Run(ctx, app, opts)
		app.Logger.Info("run finished", "processed", stats.Processed, "failed", stats.Failed, "skipped", stats.Skipped)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("redis", false, "Consume events from the redis queue")
	runCmd.Flags().Bool("drain", false, "With --redis, stop when the queue is empty")
	runCmd.Flags().Bool("json", false, "Print results as JSON lines")
	runCmd.Flags().String("journal", "", "Path of a bolt journal recording every response")
	runCmd.Flags().Int("max", 0, "Stop after this many events (0 means no limit)")
}
