package caldav

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"github.com/teemow/assistant-tools/internal/instrumentation"
	"github.com/teemow/assistant-tools/internal/logging"
	"github.com/teemow/assistant-tools/internal/record"
)

// Event is one VEVENT occurrence. Calendar is the name the caller asked for,
// before alias resolution.
type Event struct {
	Calendar string     `json:"calendar"`
	Title    string     `json:"title"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end"`
	AllDay   bool       `json:"all_day"`
	Location *string    `json:"location"`
}

// FetchEvents returns the events overlapping [start, end) in the named
// calendars, sorted by start time. A calendar that is missing or fails to
// answer is logged and skipped; only a failed discovery is returned as an
// error.
func (s *Session) FetchEvents(ctx context.Context, names []string, start, end time.Time) ([]Event, error) {
	client, cals, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	events := []Event{}
	for _, name := range names {
		cal, err := lookup(cals, s.aliases, name)
		if errors.Is(err, ErrCalendarNotFound) {
			s.logger.Warn("calendar not found",
				logging.Account(name),
				"resolved", s.aliases.Resolve(name),
				"available", strings.Join(sortedNames(cals), ", "),
				logging.Status(logging.StatusSkipped))
			continue
		}

		opCtx, op := instrumentation.StartRemoteOp(ctx, s.metrics, instrumentation.ServiceCalDAV, instrumentation.OperationQuery, cal.Name)
		objects, err := client.QueryCalendar(opCtx, cal.Path, eventQuery(start, end))
		op.End(opCtx, err)
		if err != nil {
			s.logger.Warn("failed to fetch calendar", logging.Account(name), logging.Err(err))
			continue
		}

		var results []record.Result[Event]
		for _, obj := range objects {
			results = append(results, s.parseObject(name, obj)...)
		}
		kept, skips := record.Collect(results)
		if !skips.Empty() {
			s.logger.Debug("skipped events", logging.Account(name), "reasons", skips.Reasons, logging.Err(skips.Err))
		}
		events = append(events, kept...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// eventQuery asks for VEVENTs overlapping the range with recurrences
// expanded into individual instances.
func eventQuery(start, end time.Time) *caldav.CalendarQuery {
	return &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
			Expand:   &caldav.CalendarExpandRequest{Start: start.UTC(), End: end.UTC()},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: start.UTC(),
				End:   end.UTC(),
			}},
		},
	}
}

func (s *Session) parseObject(calendar string, obj caldav.CalendarObject) []record.Result[Event] {
	if obj.Data == nil {
		return []record.Result[Event]{record.Skipped[Event](record.SkipNoData, nil)}
	}

	var results []record.Result[Event]
	for _, comp := range obj.Data.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		results = append(results, parseEvent(calendar, comp, s.loc))
	}
	return results
}

func parseEvent(calendar string, comp *ical.Component, loc *time.Location) record.Result[Event] {
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return record.Skipped[Event](record.SkipMissingStart, nil)
	}

	start, allDay, err := parseTime(startProp, loc)
	if err != nil {
		return record.Skipped[Event](record.SkipParseFailed, err)
	}

	event := Event{
		Calendar: calendar,
		Start:    start,
		AllDay:   allDay,
	}

	if prop := comp.Props.Get(ical.PropSummary); prop != nil {
		event.Title = textValue(prop)
	}
	if prop := comp.Props.Get(ical.PropLocation); prop != nil {
		if where := textValue(prop); where != "" {
			event.Location = &where
		}
	}
	if prop := comp.Props.Get(ical.PropDateTimeEnd); prop != nil {
		end, _, err := parseTime(prop, loc)
		if err != nil {
			return record.Skipped[Event](record.SkipParseFailed, err)
		}
		event.End = &end
	}

	return record.OK(event)
}

// parseTime reads a DATE or DATE-TIME property. Dates become midnight in loc
// and report allDay. Some servers omit VALUE=DATE, so a bare 8 digit value
// is treated as a date too.
func parseTime(prop *ical.Prop, loc *time.Location) (time.Time, bool, error) {
	if prop.Params.Get(ical.ParamValue) == string(ical.ValueDate) || len(prop.Value) == len("20060102") {
		t, err := time.ParseInLocation("20060102", prop.Value, loc)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid date %q: %w", prop.Value, err)
		}
		return t, true, nil
	}

	t, err := prop.DateTime(loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.In(loc), false, nil
}

func textValue(prop *ical.Prop) string {
	text, err := prop.Text()
	if err != nil {
		return prop.Value
	}
	return text
}
