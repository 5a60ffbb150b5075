package carddav

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/emersion/go-webdav/carddav"

	"github.com/teemow/assistant-tools/internal/logging"
	"github.com/teemow/assistant-tools/internal/record"
)

// Contact is the flattened form of one vCard.
type Contact struct {
	Name         string   `json:"name"`
	Birthday     *string  `json:"birthday"`
	Emails       []string `json:"emails"`
	Phones       []string `json:"phones"`
	Organization *string  `json:"organization"`
	Note         *string  `json:"note"`
	AddressBook  string   `json:"addressbook"`

	// Set only by Upcoming.
	DaysUntilBirthday *int   `json:"days_until_birthday,omitempty"`
	NextBirthday      string `json:"next_birthday,omitempty"`
}

// Filter selects which contacts Contacts returns.
type Filter struct {
	// AddressBook limits the fetch to one book by display name.
	AddressBook string
	// Search matches a substring of the formatted name on the server.
	Search string
	// BirthdaysOnly drops contacts without a BDAY.
	BirthdaysOnly bool
	// UpcomingDays, when positive, keeps birthdays within that many days of
	// Today. Zero or less disables the filter.
	UpcomingDays int
	// Today anchors UpcomingDays; zero means time.Now().
	Today time.Time
}

// Contacts fetches from every address book (or the one named in f) and
// applies the filters. An unknown address book is an error; a book that
// fails to answer is logged and skipped.
func (s *Session) Contacts(ctx context.Context, f Filter) ([]Contact, error) {
	books, err := s.AddressBooks(ctx)
	if err != nil {
		return nil, err
	}

	if f.AddressBook != "" {
		books = selectBook(books, f.AddressBook)
		if len(books) == 0 {
			return nil, fmt.Errorf("%w: '%s'", ErrAddressBookNotFound, f.AddressBook)
		}
	}

	all := []Contact{}
	for _, book := range books {
		contacts, err := s.FetchContacts(ctx, book, f.Search)
		if err != nil {
			s.logger.Warn("failed to fetch contacts", logging.Account(book.Name), logging.Err(err))
			continue
		}
		all = append(all, contacts...)
	}

	if f.BirthdaysOnly {
		all = withBirthday(all)
	}

	if f.UpcomingDays > 0 {
		today := f.Today
		if today.IsZero() {
			today = time.Now()
		}
		all = Upcoming(all, today, f.UpcomingDays)
		SortByNextBirthday(all)
		return all, nil
	}

	SortByName(all)
	return all, nil
}

func selectBook(books []AddressBook, name string) []AddressBook {
	for _, b := range books {
		if b.Name == name {
			return []AddressBook{b}
		}
	}
	return nil
}

func withBirthday(contacts []Contact) []Contact {
	out := contacts[:0]
	for _, c := range contacts {
		if c.Birthday != nil && *c.Birthday != "" {
			out = append(out, c)
		}
	}
	return out
}

func cardsToContacts(objects []carddav.AddressObject, book string) ([]Contact, record.Skips) {
	results := make([]record.Result[Contact], 0, len(objects))
	for _, obj := range objects {
		r := ParseCard(obj.Card)
		r.Value.AddressBook = book
		results = append(results, r)
	}
	return record.Collect(results)
}

// ParseCard maps a vCard to a Contact. Cards without FN or any N part are
// skipped.
func ParseCard(card vcard.Card) record.Result[Contact] {
	if len(card) == 0 {
		return record.Skipped[Contact](record.SkipNoData, nil)
	}

	name := strings.TrimSpace(card.Value(vcard.FieldFormattedName))
	if name == "" {
		name = structuredName(card.Name())
	}
	if name == "" {
		return record.Skipped[Contact](record.SkipMissingName, nil)
	}

	c := Contact{
		Name:   name,
		Emails: nonEmpty(card.Values(vcard.FieldEmail)),
		Phones: nonEmpty(card.Values(vcard.FieldTelephone)),
	}
	if v := card.Value(vcard.FieldBirthday); v != "" {
		c.Birthday = &v
	}
	if v := card.Value(vcard.FieldOrganization); v != "" {
		org := strings.SplitN(v, ";", 2)[0]
		if org != "" {
			c.Organization = &org
		}
	}
	if v := card.Value(vcard.FieldNote); v != "" {
		c.Note = &v
	}
	return record.OK(c)
}

func structuredName(n *vcard.Name) string {
	if n == nil {
		return ""
	}
	var parts []string
	for _, p := range []string{n.HonorificPrefix, n.GivenName, n.AdditionalName, n.FamilyName, n.HonorificSuffix} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func nonEmpty(values []string) []string {
	out := []string{}
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SortByName orders contacts case-insensitively by name.
func SortByName(contacts []Contact) {
	sort.SliceStable(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
	})
}

// SortByNextBirthday orders contacts by days until their birthday, then by
// name. Contacts without DaysUntilBirthday go last.
func SortByNextBirthday(contacts []Contact) {
	days := func(c Contact) int {
		if c.DaysUntilBirthday == nil {
			return int(^uint(0) >> 1)
		}
		return *c.DaysUntilBirthday
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		di, dj := days(contacts[i]), days(contacts[j])
		if di != dj {
			return di < dj
		}
		return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
	})
}
