package dav_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/assistant-tools/internal/caldav"
	"github.com/teemow/assistant-tools/internal/carddav"
	"github.com/teemow/assistant-tools/internal/server"
	"github.com/teemow/assistant-tools/internal/tools/batch"
	"github.com/teemow/assistant-tools/internal/tools/common"
)

// now is the clock relative dates and upcoming birthdays are anchored to.
var now = time.Now

// RegisterDAVTools registers the calendar and contacts tools whose sessions
// are configured. Missing groups are logged, not treated as errors.
func RegisterDAVTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc.Calendar() != nil {
		registerCalendarTools(s, sc)
	} else {
		sc.Logger().Warn("calendar tools disabled: CalDAV credentials not configured")
	}

	if sc.Contacts() != nil {
		registerContactsTools(s, sc)
	} else {
		sc.Logger().Warn("contacts tools disabled: CardDAV credentials not configured")
	}

	return nil
}

func registerCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listTool := mcp.NewTool("calendar_list_calendars",
		mcp.WithDescription("List all Fastmail calendars with the alias that points at each"),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("calendar_list_calendars", sc, listCalendarsHandler(sc)))

	fetchTool := mcp.NewTool("calendar_fetch_events",
		mcp.WithDescription("Fetch events from Fastmail calendars in a date range. "+
			"Recurring events are expanded into individual occurrences. Returns a JSON array sorted by start time."),
		mcp.WithArray("calendars",
			mcp.Description("Calendar names or aliases (default: work, personal)"),
			mcp.WithStringItems(),
		),
		mcp.WithString("start",
			mcp.Description("Range start: YYYY-MM-DD, today, tomorrow or +Nd (default: today)"),
			mcp.DefaultString("today"),
		),
		mcp.WithString("end",
			mcp.Description("Range end, exclusive: YYYY-MM-DD, today, tomorrow or +Nd (default: +1d)"),
			mcp.DefaultString("+1d"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Fetch from every calendar"),
		),
	)
	s.AddTool(fetchTool, common.InstrumentedToolHandler("calendar_fetch_events", sc, fetchEventsHandler(sc)))
}

func registerContactsTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listTool := mcp.NewTool("contacts_list_addressbooks",
		mcp.WithDescription("List all Fastmail address books"),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("contacts_list_addressbooks", sc, listAddressBooksHandler(sc)))

	fetchTool := mcp.NewTool("contacts_fetch",
		mcp.WithDescription("Fetch contacts from Fastmail address books as a JSON array. "+
			"Can filter by name, to contacts with birthdays, or to birthdays in the next N days."),
		mcp.WithString("addressbook",
			mcp.Description("Only fetch from this address book"),
		),
		mcp.WithString("search",
			mcp.Description("Match a substring of the contact name"),
		),
		mcp.WithBoolean("birthdays",
			mcp.Description("Only contacts with a birthday"),
		),
		mcp.WithNumber("upcoming_days",
			mcp.Description("Only birthdays within this many days, sorted by how soon they are; 0 disables the filter"),
		),
	)
	s.AddTool(fetchTool, common.InstrumentedToolHandler("contacts_fetch", sc, fetchContactsHandler(sc)))
}

func listCalendarsHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		infos, err := sc.Calendar().ListCalendars(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(infos)
	}
}

func fetchEventsHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		session := sc.Calendar()

		var names []string
		if raw, ok := args["calendars"]; ok && raw != nil {
			parsed, err := batch.ParseStringOrArray(raw, "calendars")
			if err != nil {
				return errorResult(err), nil
			}
			names = parsed
		}

		start, end, err := dateRange(common.StringArg(args, "start"), common.StringArg(args, "end"))
		if err != nil {
			return errorResult(err), nil
		}

		names, err = session.Selection(ctx, names, common.BoolArg(args, "all"))
		if err != nil {
			return errorResult(err), nil
		}

		events, err := session.FetchEvents(ctx, names, start, end)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(events)
	}
}

func listAddressBooksHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		books, err := sc.Contacts().AddressBooks(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(books)
	}
}

func fetchContactsHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		f := carddav.Filter{
			AddressBook:   common.StringArg(args, "addressbook"),
			Search:        common.StringArg(args, "search"),
			BirthdaysOnly: common.BoolArg(args, "birthdays"),
			Today:         now(),
		}
		days, ok, err := common.NumberArg(args, "upcoming_days")
		if err != nil {
			return errorResult(err), nil
		}
		if ok {
			f.UpcomingDays = int(days)
		}

		contacts, err := sc.Contacts().Contacts(ctx, f)
		if errors.Is(err, carddav.ErrAddressBookNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Error: Address book '%s' not found", f.AddressBook)), nil
		}
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(contacts)
	}
}

// dateRange parses start and end, defaulting to today and +1d.
func dateRange(startArg, endArg string) (time.Time, time.Time, error) {
	if startArg == "" {
		startArg = "today"
	}
	if endArg == "" {
		endArg = "+1d"
	}

	t := now()
	start, err := caldav.ParseDate(startArg, t)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := caldav.ParseDate(endArg, t)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + err.Error())
}
