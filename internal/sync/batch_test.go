package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A failure on the 2nd of 3 items still processes items 1 and 3; the 2nd
// lands in the failure collector.
func TestForEach_FailureIsolation(t *testing.T) {
	var processed []string
	boom := errors.New("boom")

	failures, err := ForEach(context.Background(), []string{"one", "two", "three"},
		func(_ context.Context, item string) error {
			if item == "two" {
				return boom
			}
			processed = append(processed, item)
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, []string{"one", "three"}, processed)
	require.Len(t, failures, 1)
	assert.Equal(t, "two", failures[0].Item)
	assert.ErrorIs(t, failures[0].Err, boom)
}

func TestForEach_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var processed []string
	failures, err := ForEach(ctx, []string{"one", "two", "three"},
		func(_ context.Context, item string) error {
			processed = append(processed, item)
			if item == "one" {
				cancel() // interrupt mid-batch
			}
			return nil
		})

	require.Error(t, err)
	assert.Equal(t, CodeCancelled, CodeOf(err))
	assert.Equal(t, []string{"one"}, processed, "stops between items, not mid-item")
	assert.Empty(t, failures)
}

func TestForEach_EmptyBatch(t *testing.T) {
	failures, err := ForEach(context.Background(), nil,
		func(_ context.Context, _ struct{}) error { return nil })
	require.NoError(t, err)
	assert.Empty(t, failures)
}
