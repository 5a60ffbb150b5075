package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	webcaldav "github.com/emersion/go-webdav/caldav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/assistant-tools/internal/caldav"
	"github.com/teemow/assistant-tools/internal/credentials"
	"github.com/teemow/assistant-tools/internal/logging"
)

var testNow = time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)

func newCalendarSession() *caldav.Session {
	client := &fakeCalDAV{
		calendars: []webcaldav.Calendar{
			{Path: "/cal/work/", Name: "Work"},
			{Path: "/cal/default/", Name: "Calendar"},
			{Path: "/cal/holidays/", Name: "Holidays"},
		},
		objects: map[string][]webcaldav.CalendarObject{
			"/cal/work/":     {event("Standup", "20260501T090000Z", "20260501T091500Z")},
			"/cal/default/":  {event("Dentist", "20260501T080000Z", "20260501T090000Z")},
			"/cal/holidays/": {event("Holiday", "20260501T000000Z", "20260502T000000Z")},
		},
	}
	return caldav.NewSession(
		credentials.Credentials{Username: "jane@fastmail.com", Password: "secret"},
		caldav.WithClient(client),
		caldav.WithLocation(time.UTC),
		caldav.WithLogger(logging.Discard()),
		caldav.WithAliases(caldav.Aliases{"personal": "Calendar", "work": "Work"}),
	)
}

func decodeEvents(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var events []map[string]any
	require.NoError(t, json.Unmarshal(data, &events))
	return events
}

func TestRunCalendar(t *testing.T) {
	tests := []struct {
		name       string
		opts       calendarOptions
		wantTitles []string
		wantCals   []string
	}{
		{
			name:       "default calendars sorted by start",
			opts:       calendarOptions{start: "today", end: "+1d"},
			wantTitles: []string{"Dentist", "Standup"},
			wantCals:   []string{"personal", "work"},
		},
		{
			name:       "explicit calendar keeps requested name",
			opts:       calendarOptions{start: "today", end: "+1d", calendars: []string{"Holidays"}},
			wantTitles: []string{"Holiday"},
			wantCals:   []string{"Holidays"},
		},
		{
			name:       "all calendars",
			opts:       calendarOptions{start: "today", end: "+1d", all: true},
			wantTitles: []string{"Holiday", "Dentist", "Standup"},
			wantCals:   []string{"Holidays", "Calendar", "Work"},
		},
		{
			name:       "unknown calendar is skipped",
			opts:       calendarOptions{start: "today", end: "+1d", calendars: []string{"nope", "work"}},
			wantTitles: []string{"Standup"},
			wantCals:   []string{"work"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runCalendar(context.Background(), &out, newCalendarSession(), tt.opts, testNow)
			require.NoError(t, err)

			events := decodeEvents(t, out.Bytes())
			var titles, cals []string
			for _, ev := range events {
				titles = append(titles, ev["title"].(string))
				cals = append(cals, ev["calendar"].(string))
			}
			assert.Equal(t, tt.wantTitles, titles)
			assert.Equal(t, tt.wantCals, cals)
		})
	}
}

func TestRunCalendar_IndentedJSON(t *testing.T) {
	var out bytes.Buffer
	opts := calendarOptions{start: "today", end: "+1d", calendars: []string{"work"}}
	require.NoError(t, runCalendar(context.Background(), &out, newCalendarSession(), opts, testNow))

	assert.Contains(t, out.String(), "[\n  {\n    \"calendar\": \"work\",")
	assert.Contains(t, out.String(), `"location": null`)
}

func TestRunCalendar_EmptyResultIsEmptyArray(t *testing.T) {
	var out bytes.Buffer
	opts := calendarOptions{start: "today", end: "+1d", calendars: []string{"nope"}}
	require.NoError(t, runCalendar(context.Background(), &out, newCalendarSession(), opts, testNow))
	assert.Equal(t, "[]\n", out.String())
}

func TestRunCalendar_InvalidDate(t *testing.T) {
	var out bytes.Buffer
	opts := calendarOptions{start: "someday", end: "+1d"}
	err := runCalendar(context.Background(), &out, newCalendarSession(), opts, testNow)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestRunCalendar_List(t *testing.T) {
	var out bytes.Buffer
	err := runCalendar(context.Background(), &out, newCalendarSession(), calendarOptions{list: true}, testNow)
	require.NoError(t, err)

	want := "Available calendars:\n" +
		"  Calendar (alias: personal)\n" +
		"  Holidays\n" +
		"  Work (alias: work)\n"
	assert.Equal(t, want, out.String())
}

func TestAliasesPath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		withEnv(t, map[string]string{EnvAliasesFile: "/env/calendars.yaml"})
		assert.Equal(t, "/flag/calendars.yaml", aliasesPath("/flag/calendars.yaml"))
	})

	t.Run("environment before default", func(t *testing.T) {
		withEnv(t, map[string]string{EnvAliasesFile: "/env/calendars.yaml"})
		assert.Equal(t, "/env/calendars.yaml", aliasesPath(""))
	})

	t.Run("default", func(t *testing.T) {
		withEnv(t, nil)
		assert.Equal(t, caldav.DefaultAliasesPath(), aliasesPath(""))
	})
}

func TestCalendarCmd_MissingCredentials(t *testing.T) {
	withEnv(t, nil)

	stdout, stderr, err := execute(t, "calendar")
	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: FASTMAIL_USERNAME and FASTMAIL_CALDAV_PASSWORD must be set")
}

func TestCalendarCmd_InvalidAliasesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendars.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work: [unterminated"), 0o600))
	withEnv(t, map[string]string{
		credentials.EnvUsername:       "jane@fastmail.com",
		credentials.EnvCalDAVPassword: "secret",
	})

	_, stderr, err := execute(t, "calendar", "--aliases", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "failed to parse aliases file")
}

func TestCalendarCmd_Flags(t *testing.T) {
	cmd := newCalendarCmd()

	start, err := cmd.Flags().GetString("start")
	require.NoError(t, err)
	assert.Equal(t, "today", start)

	end, err := cmd.Flags().GetString("end")
	require.NoError(t, err)
	assert.Equal(t, "+1d", end)

	require.NoError(t, cmd.Flags().Parse([]string{"-c", "work", "--calendar", "personal"}))
	calendars, err := cmd.Flags().GetStringArray("calendar")
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "personal"}, calendars)
}
