package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one item in a batch. Err is set when the item
// failed; Value is meaningful only when Err is nil.
type Outcome[T any] struct {
	ID    string
	Value T
	Err   error
}

// ParseStringOrArray parses a parameter that can be a single string, an array
// of strings or a string holding a JSON-encoded array of strings.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		// Some clients send arrays as JSON text.
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				if len(arr) == 0 {
					return nil, fmt.Errorf("%s cannot be empty", paramName)
				}
				return arr, nil
			}
		}
		result = []string{v}
	case []string:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		result = append(result, v...)
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}

// ProcessConcurrent runs fn once per id with at most limit calls in flight
// (no limit when limit <= 0). Every id is processed regardless of earlier
// failures, and outcomes are returned in the order of ids. A panicking call
// becomes an error outcome for its id.
func ProcessConcurrent[T any](ctx context.Context, ids []string, limit int, fn func(ctx context.Context, id string) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(ids))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, id := range ids {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = Outcome[T]{ID: id, Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			v, err := fn(ctx, id)
			outcomes[i] = Outcome[T]{ID: id, Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// Failed returns the number of outcomes carrying an error.
func Failed[T any](outcomes []Outcome[T]) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
