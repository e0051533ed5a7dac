package cli

import (
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var identifiers []string
	var name string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a join check against the ban/whitelist rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"name":        name,
				"identifiers": identifiers,
			}
			var result Decision

			if err := client.Post("/api/v1/join-check", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&identifiers, "id", nil, "Identifier of the connecting player (repeatable)")
	cmd.Flags().StringVar(&name, "name", "player", "Display name of the connecting player")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
