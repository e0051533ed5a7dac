// Package cli implements the rosterctl admin command line tool.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "rosterctl",
		Short: "Admin CLI for the rosterd API",
		Long: `rosterctl is an admin CLI for the rosterd JSON API.

It covers the moderation ledger (bans, warns, whitelist grants), the live
player roster, join checks, and pending whitelist requests.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: ROSTERCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: ROSTERCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: ROSTERCTL_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newBanCmd())
	rootCmd.AddCommand(newWarnCmd())
	rootCmd.AddCommand(newWhitelistCmd())
	rootCmd.AddCommand(newActionsCmd())
	rootCmd.AddCommand(newRevokeCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newNoteCmd())
	rootCmd.AddCommand(newPendingCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
