package carddav

import (
	"context"
	"errors"

	"github.com/emersion/go-vcard"
	"github.com/emersion/go-webdav/carddav"
)

type fakeClient struct {
	books    []carddav.AddressBook
	objects  map[string][]carddav.AddressObject
	queryErr map[string]error
	findErr  error

	discoverCalls int
	queries       []*carddav.AddressBookQuery
}

func (f *fakeClient) FindCurrentUserPrincipal(context.Context) (string, error) {
	f.discoverCalls++
	if f.findErr != nil {
		return "", f.findErr
	}
	return "/dav/principals/user/jane@fastmail.com/", nil
}

func (f *fakeClient) FindAddressBookHomeSet(context.Context, string) (string, error) {
	return "/dav/addressbooks/user/jane@fastmail.com/", nil
}

func (f *fakeClient) FindAddressBooks(context.Context, string) ([]carddav.AddressBook, error) {
	return f.books, nil
}

func (f *fakeClient) QueryAddressBook(_ context.Context, path string, query *carddav.AddressBookQuery) ([]carddav.AddressObject, error) {
	f.queries = append(f.queries, query)
	if err := f.queryErr[path]; err != nil {
		return nil, err
	}
	return f.objects[path], nil
}

var errUnavailable = errors.New("503 service unavailable")

type cardOpt func(vcard.Card)

func withBday(v string) cardOpt  { return func(c vcard.Card) { c.SetValue(vcard.FieldBirthday, v) } }
func withEmail(v string) cardOpt { return func(c vcard.Card) { c.AddValue(vcard.FieldEmail, v) } }

func card(fn string, opts ...cardOpt) carddav.AddressObject {
	c := vcard.Card{}
	c.SetValue(vcard.FieldVersion, "3.0")
	if fn != "" {
		c.SetValue(vcard.FieldFormattedName, fn)
	}
	for _, opt := range opts {
		opt(c)
	}
	return carddav.AddressObject{Path: "/" + fn + ".vcf", Card: c}
}
