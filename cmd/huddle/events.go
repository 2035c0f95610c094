package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/id"
)

var flagJSON bool

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print events as JSON")

	eventsListCmd.Flags().String("intent", string(event.Overview), "overview, history, search or map")
	addEventFlags(eventsAddCmd.Flags())
	addEventFlags(eventsEditCmd.Flags())

	eventsCmd.AddCommand(eventsListCmd, eventsGetCmd, eventsCommonCmd,
		eventsAddCmd, eventsEditCmd, eventsDeleteCmd, eventsCachedCmd)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Read and write events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events for an intent",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("intent")
		intent, err := event.ParseIntent(raw)
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		evts, err := a.repo.ListEvents(cmd.Context(), intent)
		if err != nil {
			return err
		}
		return printEvents(cmd.OutOrStdout(), evts)
	},
}

var eventsGetCmd = &cobra.Command{
	Use:   "get <event-id>...",
	Short: "Fetch events by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := id.ParseEventIDs(args)
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if len(ids) == 1 {
			e, err := a.repo.GetEvent(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), []*event.Event{e})
		}
		evts, err := a.repo.GetEvents(cmd.Context(), ids)
		if err != nil {
			return err
		}
		return printEvents(cmd.OutOrStdout(), evts)
	},
}

var eventsCommonCmd = &cobra.Command{
	Use:   "common <user-id>...",
	Short: "List events every given user participates in",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		evts, err := a.repo.CommonEvents(cmd.Context(), args)
		if err != nil {
			return err
		}
		return printEvents(cmd.OutOrStdout(), evts)
	},
}

var eventsCachedCmd = &cobra.Command{
	Use:   "cached",
	Short: "List every event in the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		evts, err := a.repo.CachedEvents(cmd.Context())
		if err != nil {
			return err
		}
		return printEvents(cmd.OutOrStdout(), evts)
	},
}

var eventsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an event",
	Long:  "Create an event owned by the current user.\nExample: huddle events add --title climbing --date 2026-06-01T18:00:00Z --duration 90",
	RunE: func(cmd *cobra.Command, args []string) error {
		e := &event.Event{
			Kind:       event.KindSocial,
			Duration:   60,
			Visibility: event.VisibilityPrivate,
		}
		if err := applyEventFlags(cmd.Flags(), e); err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		created, err := a.repo.AddEvent(cmd.Context(), e)
		if err != nil {
			return err
		}
		return printEvents(cmd.OutOrStdout(), []*event.Event{created})
	},
}

var eventsEditCmd = &cobra.Command{
	Use:   "edit <event-id>",
	Short: "Change fields of an existing event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		evtID, err := id.ParseEventID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		e, err := a.repo.GetEvent(cmd.Context(), evtID)
		if err != nil {
			return err
		}
		if err := applyEventFlags(cmd.Flags(), e); err != nil {
			return err
		}
		updated, err := a.repo.EditEvent(cmd.Context(), evtID, e)
		if err != nil {
			return err
		}
		return printEvents(cmd.OutOrStdout(), []*event.Event{updated})
	},
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete <event-id>",
	Short: "Delete an event and cancel its reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		evtID, err := id.ParseEventID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.repo.DeleteEvent(cmd.Context(), evtID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", evtID)
		return nil
	},
}

// ============================================================================
// Event flags
// ============================================================================

func addEventFlags(fs *pflag.FlagSet) {
	fs.String("title", "", "event title")
	fs.String("description", "", "free-form description")
	fs.String("type", string(event.KindSocial), "SPORTS, ACTIVITY or SOCIAL")
	fs.String("date", "", "start time (RFC3339)")
	fs.Int("duration", 60, "length in minutes")
	fs.String("visibility", string(event.VisibilityPrivate), "PUBLIC or PRIVATE")
	fs.String("place", "", "location name")
	fs.Float64("lat", 0, "location latitude")
	fs.Float64("lng", 0, "location longitude")
	fs.Int("max", 0, "participant cap, 0 for none")
	fs.StringSlice("participant", nil, "participant user ID (repeatable)")
}

// applyEventFlags copies every flag the user set onto e.
func applyEventFlags(fs *pflag.FlagSet, e *event.Event) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "title":
			e.Title = v
		case "description":
			e.Description = v
		case "type":
			e.Kind = event.Kind(strings.ToUpper(v))
		case "date":
			var t time.Time
			if t, err = time.Parse(time.RFC3339, v); err != nil {
				err = fmt.Errorf("--date: %w", err)
				return
			}
			e.Date = t.UTC()
		case "duration":
			e.Duration, err = fs.GetInt("duration")
		case "visibility":
			e.Visibility = event.Visibility(strings.ToUpper(v))
		case "place":
			e.Location.Name = v
		case "lat":
			e.Location.Lat, err = fs.GetFloat64("lat")
		case "lng":
			e.Location.Lng, err = fs.GetFloat64("lng")
		case "max":
			e.MaxParticipants, err = fs.GetInt("max")
		case "participant":
			e.Participants, err = fs.GetStringSlice("participant")
		}
	})
	return err
}

// ============================================================================
// Output
// ============================================================================

func printEvents(w io.Writer, evts []*event.Event) error {
	if flagJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(evts)
	}
	if len(evts) == 0 {
		fmt.Fprintln(w, "No events.")
		return nil
	}
	now := time.Now()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATE\tTYPE\tTITLE\tPARTICIPANTS")
	for _, e := range evts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			e.ID, e.Date.Local().Format("2006-01-02 15:04"), e.State(now), e.Kind, e.Title, len(e.Participants))
	}
	return tw.Flush()
}
