package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/kiteflow/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "kiteflow",
	Short: "kiteflow runs low-code event automation flows",
	Long: `kiteflow loads a flow graph (nodes and edges, JSON or YAML) and dispatches
host events through it: entries match events, conditions gate branches and
actions log or answer.`,
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
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and node tracing")
}

// newApp builds the shared application state from the persistent flags.
func newApp(cmd *cobra.Command) (*cli.App, error) {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.NewApp(configPath, debug, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// flowArg returns the optional flow path argument.
func flowArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
