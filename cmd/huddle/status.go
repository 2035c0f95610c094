package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/huddle/signature"
)

func init() {
	rootCmd.AddCommand(statusCmd, warmCmd, secretCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity and cache state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Configuration:")
		fmt.Fprintf(w, "  User:    %s\n", valueOrDefault(a.cfg.User.ID, "(not signed in)"))
		fmt.Fprintf(w, "  Cache:   %s\n", a.cfg.Cache.Backend)
		fmt.Fprintf(w, "  Remote:  %s\n", a.cfg.Remote.Backend)
		if a.cfg.Reminders.NATSURL != "" {
			fmt.Fprintf(w, "  Reminders: nats (%s)\n", a.cfg.Reminders.NATSURL)
		} else {
			fmt.Fprintln(w, "  Reminders: local timers")
		}

		fmt.Fprintln(w)
		online := "offline"
		if a.repo.Online() {
			online = "online"
		}
		fmt.Fprintf(w, "Network:   %s\n", online)

		cached, err := a.repo.CachedEvents(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Cached:    %d events\n", len(cached))
		return nil
	},
}

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Refresh the cache from the remote for every intent",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		n, err := a.repo.Warm(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Warmed %d events\n", n)
		return nil
	},
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Generate a reminder signing secret",
	Long:  "Generate a secret for reminders.signing_secret.\nExample: huddle config set reminders.signing_secret $(huddle secret)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), signature.GenerateSecret())
		return nil
	},
}

func valueOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
