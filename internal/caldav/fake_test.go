package caldav

import (
	"context"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
)

type fakeClient struct {
	calendars []caldav.Calendar
	objects   map[string][]caldav.CalendarObject
	queryErr  map[string]error

	discoverCalls int
	queries       []*caldav.CalendarQuery
}

func (f *fakeClient) FindCurrentUserPrincipal(context.Context) (string, error) {
	f.discoverCalls++
	return "/dav/principals/user/jane@fastmail.com/", nil
}

func (f *fakeClient) FindCalendarHomeSet(context.Context, string) (string, error) {
	return "/dav/calendars/user/jane@fastmail.com/", nil
}

func (f *fakeClient) FindCalendars(context.Context, string) ([]caldav.Calendar, error) {
	return f.calendars, nil
}

func (f *fakeClient) QueryCalendar(_ context.Context, path string, query *caldav.CalendarQuery) ([]caldav.CalendarObject, error) {
	f.queries = append(f.queries, query)
	if err := f.queryErr[path]; err != nil {
		return nil, err
	}
	return f.objects[path], nil
}

func timedEvent(summary string, start, end time.Time) *ical.Component {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropSummary, summary)
	ev.Props.SetDateTime(ical.PropDateTimeStart, start)
	if !end.IsZero() {
		ev.Props.SetDateTime(ical.PropDateTimeEnd, end)
	}
	return ev.Component
}

func allDayEvent(summary string, day time.Time) *ical.Component {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropSummary, summary)
	ev.Props.SetDate(ical.PropDateTimeStart, day)
	ev.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
	return ev.Component
}

func object(path string, comps ...*ical.Component) caldav.CalendarObject {
	cal := ical.NewCalendar()
	cal.Children = append(cal.Children, comps...)
	return caldav.CalendarObject{Path: path, Data: cal}
}
