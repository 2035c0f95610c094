package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xraph/huddle/calendar"
	"github.com/xraph/huddle/event"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("intent", string(event.Overview), "overview, history, search or map")
	exportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	exportCmd.Flags().String("name", "Huddle", "calendar name shown by clients")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export events as an iCalendar feed",
	Long:  "Export the events of an intent as an .ics file.\nExample: huddle export --intent overview -o huddle.ics",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("intent")
		intent, err := event.ParseIntent(raw)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		out, _ := cmd.Flags().GetString("output")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		evts, err := a.repo.ListEvents(cmd.Context(), intent)
		if err != nil {
			return err
		}
		data, err := calendar.Export(evts, calendar.Options{Name: name})
		if err != nil {
			return err
		}

		if out == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("cannot write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d events to %s\n", len(evts), out)
		return nil
	},
}
