package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/kiteflow/internal/cli"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Push JSON-lines events from stdin onto the redis queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		n, err := cli.Publish(cmd.Context(), app, cmd.InOrStdin())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published %d events\n", n)
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <flow>",
	Short: "Store a flow file under the redis flow key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.Upload(cmd.Context(), app, args[0])
	},
}

func init() {
	rootCmd.AddCommand(publishCmd, uploadCmd)
}
