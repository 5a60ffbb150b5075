package caldav

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// AliasesFileName is the sidecar file read when no path is configured.
const AliasesFileName = "calendars.yaml"

// Aliases maps short names to remote calendar display names.
type Aliases map[string]string

// DefaultAliases is used when no aliases file exists.
func DefaultAliases() Aliases {
	return Aliases{
		"personal":  "Calendar",
		"birthdays": "Birthdays",
	}
}

// DefaultAliasesPath returns <user config dir>/assistant-tools/calendars.yaml,
// or the bare file name when the config dir cannot be determined.
func DefaultAliasesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return AliasesFileName
	}
	return filepath.Join(dir, "assistant-tools", AliasesFileName)
}

// LoadAliases reads a YAML mapping of alias to calendar name. A missing file
// yields DefaultAliases; an empty file yields no aliases at all.
func LoadAliases(path string) (Aliases, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultAliases(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read aliases file: %w", err)
	}

	aliases := Aliases{}
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("failed to parse aliases file %s: %w", path, err)
	}
	return aliases, nil
}

// Resolve returns the calendar name for an alias, or name itself.
func (a Aliases) Resolve(name string) string {
	if actual, ok := a[name]; ok {
		return actual
	}
	return name
}

// AliasFor returns the alias pointing at actual. With several candidates
// the alphabetically first wins.
func (a Aliases) AliasFor(actual string) (string, bool) {
	var matches []string
	for alias, name := range a {
		if name == actual {
			matches = append(matches, alias)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}
