package dav_tools

import (
	"context"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	webcaldav "github.com/emersion/go-webdav/caldav"
	webcarddav "github.com/emersion/go-webdav/carddav"
)

type fakeCalDAV struct {
	calendars []webcaldav.Calendar
	objects   map[string][]webcaldav.CalendarObject
}

func (f *fakeCalDAV) FindCurrentUserPrincipal(context.Context) (string, error) {
	return "/principal/", nil
}

func (f *fakeCalDAV) FindCalendarHomeSet(context.Context, string) (string, error) {
	return "/calendars/", nil
}

func (f *fakeCalDAV) FindCalendars(context.Context, string) ([]webcaldav.Calendar, error) {
	return f.calendars, nil
}

func (f *fakeCalDAV) QueryCalendar(_ context.Context, path string, _ *webcaldav.CalendarQuery) ([]webcaldav.CalendarObject, error) {
	return f.objects[path], nil
}

type fakeCardDAV struct {
	books   []webcarddav.AddressBook
	objects map[string][]webcarddav.AddressObject
}

func (f *fakeCardDAV) FindCurrentUserPrincipal(context.Context) (string, error) {
	return "/principal/", nil
}

func (f *fakeCardDAV) FindAddressBookHomeSet(context.Context, string) (string, error) {
	return "/addressbooks/", nil
}

func (f *fakeCardDAV) FindAddressBooks(context.Context, string) ([]webcarddav.AddressBook, error) {
	return f.books, nil
}

func (f *fakeCardDAV) QueryAddressBook(_ context.Context, path string, _ *webcarddav.AddressBookQuery) ([]webcarddav.AddressObject, error) {
	return f.objects[path], nil
}

func event(summary, start, end string) webcaldav.CalendarObject {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropSummary, summary)
	ev.Props.Set(&ical.Prop{Name: ical.PropDateTimeStart, Value: start, Params: ical.Params{}})
	ev.Props.Set(&ical.Prop{Name: ical.PropDateTimeEnd, Value: end, Params: ical.Params{}})
	cal := ical.NewCalendar()
	cal.Children = append(cal.Children, ev.Component)
	return webcaldav.CalendarObject{Path: "/" + summary + ".ics", Data: cal}
}

func contact(fn, bday string) webcarddav.AddressObject {
	c := vcard.Card{}
	c.SetValue(vcard.FieldVersion, "3.0")
	c.SetValue(vcard.FieldFormattedName, fn)
	if bday != "" {
		c.SetValue(vcard.FieldBirthday, bday)
	}
	return webcarddav.AddressObject{Path: "/" + fn + ".vcf", Card: c}
}
