package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetFromArgs(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "nil args", args: nil, want: ""},
		{name: "url sanitized", args: map[string]any{"url": "https://user:pw@medium.com/p?x=1#top"}, want: "https://medium.com/p"},
		{name: "url list", args: map[string]any{"urls": []any{"https://a.example/1", "https://b.example/2"}}, want: "https://a.example/1,https://b.example/2"},
		{name: "json encoded urls", args: map[string]any{"urls": `["https://a.example"]`}, want: "https://a.example"},
		{name: "address book", args: map[string]any{"addressbook": "Personal"}, want: "Personal"},
		{name: "calendars", args: map[string]any{"calendars": []any{"work", "personal"}}, want: "work,personal"},
		{name: "invalid value skipped", args: map[string]any{"url": 42, "addressbook": "Work"}, want: "Work"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TargetFromArgs(tt.args))
		})
	}
}

func TestStringAndBoolArg(t *testing.T) {
	args := map[string]any{"s": "x", "b": true, "n": 1.5}
	assert.Equal(t, "x", StringArg(args, "s"))
	assert.Equal(t, "", StringArg(args, "n"))
	assert.True(t, BoolArg(args, "b"))
	assert.False(t, BoolArg(args, "missing"))
}

func TestNumberArg(t *testing.T) {
	v, ok, err := NumberArg(map[string]any{"wait_seconds": 3.5}, "wait_seconds")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)

	_, ok, err = NumberArg(map[string]any{}, "wait_seconds")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = NumberArg(map[string]any{"wait_seconds": "soon"}, "wait_seconds")
	assert.EqualError(t, err, "wait_seconds must be a number")
}
