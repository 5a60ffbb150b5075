package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/assistant-tools/internal/carddav"
	"github.com/teemow/assistant-tools/internal/credentials"
	"github.com/teemow/assistant-tools/internal/logging"
)

type contactsOptions struct {
	list        bool
	addressBook string
	birthdays   bool
	search      string
	upcoming    int
}

func newContactsCmd() *cobra.Command {
	var (
		opts     contactsOptions
		endpoint string
	)

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Fetch contacts from Fastmail",
		Long: `Fetch contacts from Fastmail address books over CardDAV and print them as a
JSON array sorted by name.

With --upcoming N only contacts whose birthday falls within the next N days
are printed, soonest first, with days_until_birthday and next_birthday set.
--upcoming 0 applies no birthday filter.

Requires FASTMAIL_USERNAME and FASTMAIL_CARDDAV_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd)

			creds, err := credentials.ResolveCardDAV(getenv)
			if err != nil {
				return err
			}

			session := carddav.NewSession(creds,
				carddav.WithEndpoint(endpoint),
				carddav.WithLogger(logging.NewSlogAdapter(logger)),
			)
			return runContacts(cmd.Context(), cmd.OutOrStdout(), session, opts, time.Now())
		},
	}

	cmd.Flags().BoolVar(&opts.list, "list", false, "List available address books")
	cmd.Flags().StringVarP(&opts.addressBook, "addressbook", "a", "", "Address book to fetch from (default: all)")
	cmd.Flags().BoolVarP(&opts.birthdays, "birthdays", "b", false, "Only show contacts with birthdays")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "Search contacts by name")
	cmd.Flags().IntVarP(&opts.upcoming, "upcoming", "u", 0, "Show birthdays in the next N days (0 shows all)")
	cmd.Flags().StringVar(&endpoint, "carddav-url", "", "Override the Fastmail CardDAV URL")

	return cmd
}

func runContacts(ctx context.Context, out io.Writer, session *carddav.Session, opts contactsOptions, today time.Time) error {
	if opts.list {
		return listAddressBooks(ctx, out, session)
	}

	contacts, err := session.Contacts(ctx, carddav.Filter{
		AddressBook:   opts.addressBook,
		Search:        opts.search,
		BirthdaysOnly: opts.birthdays,
		UpcomingDays:  opts.upcoming,
		Today:         today,
	})
	if errors.Is(err, carddav.ErrAddressBookNotFound) {
		return fmt.Errorf("Address book '%s' not found", opts.addressBook) //nolint:staticcheck // user-facing message
	}
	if err != nil {
		return err
	}
	return writeJSON(out, contacts)
}

func listAddressBooks(ctx context.Context, out io.Writer, session *carddav.Session) error {
	books, err := session.AddressBooks(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Available address books:")
	for _, book := range books {
		fmt.Fprintf(out, "  %s\n", book.Name)
	}
	return nil
}
