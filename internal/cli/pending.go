package cli

import (
	"github.com/spf13/cobra"
)

func newPendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending whitelist requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PendingList

			if err := client.Get("/api/v1/pending", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.AddCommand(newPendingWipeCmd())

	return cmd
}

func newPendingWipeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wipe",
		Short: "Delete all pending whitelist requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/pending"); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Pending whitelist requests wiped")
			return nil
		},
	}
}
