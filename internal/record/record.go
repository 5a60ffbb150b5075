// Package record carries per-item outcomes from the calendar and contacts
// parsers. Items that cannot be turned into a record are skipped with a
// reason instead of aborting the whole batch.
package record

import "errors"

// SkipReason says why an item produced no record.
type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipParseFailed  SkipReason = "parse_failed"
	SkipMissingName  SkipReason = "missing_name"
	SkipMissingStart SkipReason = "missing_start"
	SkipNoData       SkipReason = "no_data"
)

// Result is the outcome of converting one source item.
type Result[T any] struct {
	Value T
	Skip  SkipReason
	Err   error
}

// OK wraps a successfully converted value.
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Skipped records an item dropped for reason. err may be nil.
func Skipped[T any](reason SkipReason, err error) Result[T] {
	return Result[T]{Skip: reason, Err: err}
}

// Skipped reports whether the item was dropped.
func (r Result[T]) Skipped() bool {
	return r.Skip != SkipNone
}

// Skips summarizes the items dropped from a batch.
type Skips struct {
	// Reasons counts skipped items per reason; nil when nothing was skipped.
	Reasons map[SkipReason]int
	// Err joins the errors carried by skipped items, if any.
	Err error
}

// Empty reports whether no item was skipped.
func (s Skips) Empty() bool {
	return len(s.Reasons) == 0
}

// Collect returns the kept values in input order together with a summary of
// the skipped ones.
func Collect[T any](results []Result[T]) ([]T, Skips) {
	values := make([]T, 0, len(results))
	var (
		skips Skips
		errs  []error
	)
	for _, r := range results {
		if r.Skipped() {
			if skips.Reasons == nil {
				skips.Reasons = make(map[SkipReason]int)
			}
			skips.Reasons[r.Skip]++
			if r.Err != nil {
				errs = append(errs, r.Err)
			}
			continue
		}
		values = append(values, r.Value)
	}
	skips.Err = errors.Join(errs...)
	return values, skips
}
