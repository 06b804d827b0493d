package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/kiteflow/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow]",
	Short: "Check the flow for consistency",
	Long:  `Reports duplicate ids, unknown types and modes, dangling edges and nodes no entry can reach.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		jsonOut, _ := cmd.Flags().GetBool("json")
		return cli.Validate(cmd.Context(), app, flowArg(args), jsonOut)
	},
}

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [flow]",
	Short: "Export the flow graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the flow. Each --event is dispatched
against a sandboxed copy of the flow and the nodes it visits are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		events, _ := cmd.Flags().GetStringSlice("event")
		return cli.Graph(cmd.Context(), app, flowArg(args), events)
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events [flow]",
	Short: "List the event kinds the flow subscribes to",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		jsonOut, _ := cmd.Flags().GetBool("json")
		return cli.Events(cmd.Context(), app, flowArg(args), jsonOut)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, graphCmd, eventsCmd)

	validateCmd.Flags().Bool("json", false, "Print the report as JSON")
	graphCmd.Flags().StringSlice("event", nil, "Event kind to trace (repeatable)")
	eventsCmd.Flags().Bool("json", false, "Print the manifest (events and commands) as JSON")
}
