package sync

import (
	"context"
)

// Failure records one item that failed during a batch operation.
type Failure[T any] struct {
	Item T
	Err  error
}

// ForEach runs fn over items sequentially, isolating failures per item:
// an error on one item is collected and the remaining items still run.
//
// Cancellation is checked between items, never mid-item; an interrupted
// batch stops promptly after the in-flight item and returns the failures
// collected so far together with the context error. Remote calls in
// flight run to their own transport-level timeout.
func ForEach[T any](ctx context.Context, items []T, fn func(context.Context, T) error) ([]Failure[T], error) {
	var failures []Failure[T]
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return failures, NewOpError(CodeCancelled, "batch", "", err)
		}
		if err := fn(ctx, item); err != nil {
			failures = append(failures, Failure[T]{Item: item, Err: err})
		}
	}
	return failures, nil
}
