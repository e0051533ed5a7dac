package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

// actionTargetFlags holds the shared target flags for action commands
type actionTargetFlags struct {
	identifiers []string
	clientID    int
}

func (f *actionTargetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.identifiers, "id", nil, "Target identifier (repeatable)")
	cmd.Flags().IntVar(&f.clientID, "client", -1, "Target a connected player by client id")
}

func (f *actionTargetFlags) body(kind, reason string, expiresAt *time.Time) (map[string]any, error) {
	body := map[string]any{
		"kind":   kind,
		"reason": reason,
	}
	switch {
	case len(f.identifiers) > 0:
		body["identifiers"] = f.identifiers
	case f.clientID >= 0:
		body["client_id"] = f.clientID
	default:
		return nil, fmt.Errorf("either --id or --client is required")
	}
	if expiresAt != nil {
		body["expires_at"] = expiresAt
	}
	return body, nil
}

func createAction(body map[string]any) error {
	var result CreateActionResult

	if err := client.Post("/api/v1/actions", body, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}

func newBanCmd() *cobra.Command {
	var targets actionTargetFlags
	var reason string
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "ban",
		Short: "Ban a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			var expiresAt *time.Time
			if duration > 0 {
				t := time.Now().Add(duration)
				expiresAt = &t
			}

			body, err := targets.body("ban", reason, expiresAt)
			if err != nil {
				return err
			}
			return createAction(body)
		},
	}

	targets.register(cmd)
	cmd.Flags().StringVar(&reason, "reason", "", "Ban reason (required)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Ban duration (0 = permanent)")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func newWarnCmd() *cobra.Command {
	var targets actionTargetFlags
	var reason string

	cmd := &cobra.Command{
		Use:   "warn",
		Short: "Warn a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := targets.body("warn", reason, nil)
			if err != nil {
				return err
			}
			return createAction(body)
		},
	}

	targets.register(cmd)
	cmd.Flags().StringVar(&reason, "reason", "", "Warn reason (required)")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func newWhitelistCmd() *cobra.Command {
	var targets actionTargetFlags

	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Grant a whitelist",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := targets.body("whitelist", "", nil)
			if err != nil {
				return err
			}
			return createAction(body)
		},
	}

	targets.register(cmd)

	return cmd
}

func newActionsCmd() *cobra.Command {
	var identifiers []string
	var kind, author string
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Query the moderation ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			for _, id := range identifiers {
				q.Add("identifier", id)
			}
			if kind != "" {
				q.Set("kind", kind)
			}
			if author != "" {
				q.Set("author", author)
			}
			if activeOnly {
				q.Set("active", "true")
			}

			path := "/api/v1/actions"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var result ActionList
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&identifiers, "id", nil, "Filter by target identifier (repeatable)")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind: ban, warn, whitelist")
	cmd.Flags().StringVar(&author, "author", "", "Filter by author")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only currently active actions")

	return cmd
}

func newRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <action-id>",
		Short: "Revoke a moderation action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/actions/"+args[0]+"/revoke", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Revoked %s", args[0]))
			return nil
		},
	}
}
