package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/assistant-tools/internal/caldav"
	"github.com/teemow/assistant-tools/internal/credentials"
	"github.com/teemow/assistant-tools/internal/logging"
)

// EnvAliasesFile overrides the default calendar aliases file location.
const EnvAliasesFile = "CALENDAR_ALIASES_FILE"

type calendarOptions struct {
	start     string
	end       string
	calendars []string
	all       bool
	list      bool
}

func newCalendarCmd() *cobra.Command {
	var (
		opts        calendarOptions
		aliasesFile string
		endpoint    string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Fetch calendar events from Fastmail",
		Long: `Fetch events from Fastmail calendars over CalDAV and print them as a JSON
array sorted by start time. Recurring events are expanded into individual
occurrences.

Dates accept YYYY-MM-DD, an ISO date-time, 'today', 'tomorrow' or '+Nd'.
Without --calendar or --all the work and personal calendars are fetched.

Calendar aliases are read from a YAML file mapping short names to calendar
names (--aliases, CALENDAR_ALIASES_FILE, or calendars.yaml in the user
config directory).

Requires FASTMAIL_USERNAME and FASTMAIL_CALDAV_PASSWORD (or
FASTMAIL_APP_PASSWORD).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)

			creds, err := credentials.ResolveCalDAV(getenv)
			if err != nil {
				return err
			}

			path := aliasesPath(aliasesFile)
			aliases, err := caldav.LoadAliases(path)
			if err != nil {
				return err
			}
			logger.Debug("loaded calendar aliases", "path", path, logging.Count(len(aliases)))

			session := caldav.NewSession(creds,
				caldav.WithEndpoint(endpoint),
				caldav.WithAliases(aliases),
				caldav.WithLogger(logging.NewSlogAdapter(logger)),
			)
			return runCalendar(cmd.Context(), cmd.OutOrStdout(), session, opts, time.Now())
		},
	}

	cmd.Flags().StringVar(&opts.start, "start", "today", "Start date (YYYY-MM-DD, 'today', 'tomorrow', or '+Nd')")
	cmd.Flags().StringVar(&opts.end, "end", "+1d", "End date (YYYY-MM-DD or '+Nd')")
	cmd.Flags().StringArrayVarP(&opts.calendars, "calendar", "c", nil, "Calendar name or alias (repeatable; default: work, personal)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Fetch from all calendars")
	cmd.Flags().BoolVar(&opts.list, "list", false, "List available calendars")
	cmd.Flags().StringVar(&aliasesFile, "aliases", "", "Calendar aliases YAML file. Can also use CALENDAR_ALIASES_FILE env var.")
	cmd.Flags().StringVar(&endpoint, "caldav-url", "", "Override the Fastmail CalDAV URL")

	return cmd
}

func runCalendar(ctx context.Context, out io.Writer, session *caldav.Session, opts calendarOptions, now time.Time) error {
	if opts.list {
		return listCalendars(ctx, out, session)
	}

	start, err := caldav.ParseDate(opts.start, now)
	if err != nil {
		return err
	}
	end, err := caldav.ParseDate(opts.end, now)
	if err != nil {
		return err
	}

	names, err := session.Selection(ctx, opts.calendars, opts.all)
	if err != nil {
		return err
	}

	events, err := session.FetchEvents(ctx, names, start, end)
	if err != nil {
		return err
	}
	return writeJSON(out, events)
}

func listCalendars(ctx context.Context, out io.Writer, session *caldav.Session) error {
	infos, err := session.ListCalendars(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Available calendars:")
	for _, info := range infos {
		if info.Alias != "" {
			fmt.Fprintf(out, "  %s (alias: %s)\n", info.Name, info.Alias)
		} else {
			fmt.Fprintf(out, "  %s\n", info.Name)
		}
	}
	return nil
}

// aliasesPath picks the aliases file: flag, then environment, then the
// user config directory.
func aliasesPath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := getenv(EnvAliasesFile); env != "" {
		return env
	}
	return caldav.DefaultAliasesPath()
}
