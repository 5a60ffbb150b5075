package common

import (
	"fmt"
	"strings"

	"github.com/teemow/assistant-tools/internal/logging"
	"github.com/teemow/assistant-tools/internal/tools/batch"
)

// targetArgs are the arguments naming what a tool acts on, in lookup order.
var targetArgs = []string{"url", "urls", "addressbook", "calendars"}

// TargetFromArgs returns a short description of what the call acts on, for
// audit logs. URLs are sanitized; lists are joined with commas.
func TargetFromArgs(args map[string]interface{}) string {
	for _, name := range targetArgs {
		v, ok := args[name]
		if !ok || v == nil {
			continue
		}
		items, err := batch.ParseStringOrArray(v, name)
		if err != nil {
			continue
		}
		if strings.HasPrefix(name, "url") {
			for i, item := range items {
				items[i] = logging.SanitizeURL(item)
			}
		}
		return strings.Join(items, ",")
	}
	return ""
}

// StringArg returns args[name] as a string, or "" when absent.
func StringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

// BoolArg returns args[name] as a bool, or false when absent.
func BoolArg(args map[string]interface{}, name string) bool {
	b, _ := args[name].(bool)
	return b
}

// NumberArg returns args[name] as a float64. ok is false when the argument
// is absent; a value of another type is an error.
func NumberArg(args map[string]interface{}, name string) (v float64, ok bool, err error) {
	raw, present := args[name]
	if !present || raw == nil {
		return 0, false, nil
	}
	switch n := raw.(type) {
	case float64:
		return n, true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	default:
		return 0, false, fmt.Errorf("%s must be a number", name)
	}
}
