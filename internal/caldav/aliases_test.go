package caldav

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAliases(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content *string
		want    Aliases
		wantErr bool
	}{
		{
			name: "missing file uses defaults",
			want: Aliases{"personal": "Calendar", "birthdays": "Birthdays"},
		},
		{
			name:    "custom aliases",
			content: ptr("work: Work\nfamily: Family Shared\n"),
			want:    Aliases{"work": "Work", "family": "Family Shared"},
		},
		{
			name:    "empty file",
			content: ptr(""),
			want:    Aliases{},
		},
		{
			name:    "invalid yaml",
			content: ptr("- just\n- a list\n"),
			wantErr: true,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "calendars"+string(rune('a'+i))+".yaml")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o600))
			}

			got, err := LoadAliases(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAliasesResolve(t *testing.T) {
	a := DefaultAliases()
	assert.Equal(t, "Calendar", a.Resolve("personal"))
	assert.Equal(t, "Work", a.Resolve("Work"))
}

func TestAliasesAliasFor(t *testing.T) {
	a := Aliases{"personal": "Calendar", "me": "Calendar", "birthdays": "Birthdays"}

	alias, ok := a.AliasFor("Calendar")
	assert.True(t, ok)
	assert.Equal(t, "me", alias)

	_, ok = a.AliasFor("Work")
	assert.False(t, ok)
}

func TestDefaultAliasesPath(t *testing.T) {
	assert.Equal(t, AliasesFileName, filepath.Base(DefaultAliasesPath()))
}

func ptr(s string) *string { return &s }
