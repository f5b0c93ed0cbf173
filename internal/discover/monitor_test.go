package discover

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkieser/alexactl/internal/sync"
)

// fakeClock advances by the requested duration on every Sleep, so a
// whole wait runs instantly with deterministic elapsed time.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.now = c.now.Add(d)
	c.sleeps++
	return nil
}

// scriptedCounter returns one scripted value per call. A value may be an
// int count or an error. The first call is the pre-trigger baseline.
type scriptedCounter struct {
	script []any
	calls  int
}

func (s *scriptedCounter) next(ctx context.Context) (int, error) {
	if s.calls >= len(s.script) {
		return 0, errors.New("counter script exhausted")
	}
	v := s.script[s.calls]
	s.calls++
	if err, ok := v.(error); ok {
		return 0, err
	}
	return v.(int), nil
}

func testOpts() Options {
	return Options{PollInterval: 5 * time.Second, Timeout: 60 * time.Second, StabilityWindow: 3}
}

func noTrigger(ctx context.Context) error { return nil }

func TestWait_ConvergesAfterStableWindow(t *testing.T) {
	// Baseline 2, then one pre-increase poll and three identical raised
	// counts filling the stability window.
	counter := &scriptedCounter{script: []any{2, 2, 3, 3, 3}}
	clock := &fakeClock{}
	triggered := 0
	trigger := func(ctx context.Context) error {
		triggered++
		return nil
	}

	m := NewMonitor(counter.next, trigger, sync.RunContext{RunID: "test-run"}, testOpts(), clock, nil)
	result, err := m.Wait(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateConverged, result.State)
	assert.True(t, result.Converged())
	assert.Equal(t, 1, triggered)
	assert.Equal(t, 2, result.StartCount)
	assert.Equal(t, 3, result.FinalCount)
	assert.Equal(t, 4, result.Polls)
	assert.Equal(t, len(counter.script), counter.calls, "no polling past convergence")
}

func TestWait_TimesOutWithoutIncrease(t *testing.T) {
	// The count never grows; the budget elapses after four polls at a 5s
	// interval inside a 20s window.
	counter := &scriptedCounter{script: []any{2, 2, 2, 2, 2}}
	clock := &fakeClock{}
	opts := testOpts()
	opts.Timeout = 20 * time.Second

	m := NewMonitor(counter.next, noTrigger, sync.RunContext{RunID: "test-run"}, opts, clock, nil)
	result, err := m.Wait(context.Background())

	require.NoError(t, err, "timeout is a result, not an error")
	assert.Equal(t, StateTimedOut, result.State)
	assert.False(t, result.Converged())
	assert.Equal(t, 4, result.Polls)
	assert.Equal(t, 2, result.FinalCount)
	assert.Equal(t, 20*time.Second, result.Elapsed)
}

func TestWait_PollErrorsAreTolerated(t *testing.T) {
	counter := &scriptedCounter{script: []any{2, errors.New("listing flaked"), 3, 3, 3}}
	clock := &fakeClock{}

	m := NewMonitor(counter.next, noTrigger, sync.RunContext{RunID: "test-run"}, testOpts(), clock, nil)
	result, err := m.Wait(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateConverged, result.State)
	assert.Equal(t, 4, result.Polls, "failed poll still counts against the budget")
}

func TestWait_DryRunSkipsTriggerAndPolling(t *testing.T) {
	counter := &scriptedCounter{}
	triggered := 0
	trigger := func(ctx context.Context) error {
		triggered++
		return nil
	}

	m := NewMonitor(counter.next, trigger, sync.RunContext{RunID: "test-run", DryRun: true}, testOpts(), &fakeClock{}, nil)
	result, err := m.Wait(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateConverged, result.State)
	assert.Zero(t, triggered)
	assert.Zero(t, counter.calls)
}

func TestWait_BaselineFailureIsTransient(t *testing.T) {
	counter := &scriptedCounter{script: []any{errors.New("unreachable")}}
	triggered := 0
	trigger := func(ctx context.Context) error {
		triggered++
		return nil
	}

	m := NewMonitor(counter.next, trigger, sync.RunContext{RunID: "test-run"}, testOpts(), &fakeClock{}, nil)
	result, err := m.Wait(context.Background())

	require.Error(t, err)
	assert.Equal(t, sync.CodeTransient, sync.CodeOf(err))
	assert.Equal(t, StateInitial, result.State)
	assert.Zero(t, triggered, "no trigger without a baseline count")
}

func TestWait_TriggerFailureAborts(t *testing.T) {
	counter := &scriptedCounter{script: []any{2}}
	boom := errors.New("service call rejected")
	trigger := func(ctx context.Context) error { return boom }

	m := NewMonitor(counter.next, trigger, sync.RunContext{RunID: "test-run"}, testOpts(), &fakeClock{}, nil)
	result, err := m.Wait(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateInitial, result.State)
	assert.Equal(t, 2, result.StartCount)
}

func TestWait_CancellationStopsTheLoop(t *testing.T) {
	counter := &scriptedCounter{script: []any{2, 2, 2}}
	clock := &fakeClock{}
	ctx, cancel := context.WithCancel(context.Background())
	count := func(c context.Context) (int, error) {
		n, err := counter.next(c)
		if counter.calls == 2 {
			cancel()
		}
		return n, err
	}

	m := NewMonitor(count, noTrigger, sync.RunContext{RunID: "test-run"}, testOpts(), clock, nil)
	_, err := m.Wait(ctx)

	require.Error(t, err)
	assert.Equal(t, sync.CodeCancelled, sync.CodeOf(err))
}
