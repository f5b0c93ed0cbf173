// Package discover tracks convergence of the remote device-discovery
// process. Discovery is asynchronous on the remote side: after the trigger
// is fired, newly found devices trickle into the directory over many
// seconds, so the only usable completion signal is the entity count
// growing and then holding still.
package discover

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkieser/alexactl/internal/sync"
)

// State names the monitor's position in the convergence state machine.
type State string

const (
	// StateInitial is the state before the discovery trigger fires.
	StateInitial State = "initial"

	// StateAwaitingIncrease polls until the entity count first exceeds
	// the count recorded at the start.
	StateAwaitingIncrease State = "awaiting_increase"

	// StateStabilizing polls until the count holds still for the
	// configured window.
	StateStabilizing State = "stabilizing"

	// StateConverged is terminal success: the count grew and then stayed
	// identical for a full stability window.
	StateConverged State = "converged"

	// StateTimedOut is terminal failure: the wall-clock budget elapsed
	// before convergence.
	StateTimedOut State = "timed_out"
)

// Clock abstracts time for the poll loop so tests can run scripted
// sequences without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CountFunc returns the current number of entities in the remote
// directory.
type CountFunc func(ctx context.Context) (int, error)

// TriggerFunc starts remote device discovery. It must be idempotent for
// one run; the monitor calls it exactly once.
type TriggerFunc func(ctx context.Context) error

// Options configures the poll loop.
type Options struct {
	// PollInterval is the fixed delay between count polls.
	PollInterval time.Duration

	// Timeout is the overall wall-clock budget. When it elapses the
	// monitor reports StateTimedOut regardless of its current state.
	Timeout time.Duration

	// StabilityWindow is the number of identical consecutive counts
	// required after the first increase before declaring convergence.
	StabilityWindow int
}

// DefaultOptions matches the cadence the remote discovery process is
// known to need: a 5s poll inside a 2 minute budget, stable for 3 polls.
func DefaultOptions() Options {
	return Options{
		PollInterval:    5 * time.Second,
		Timeout:         120 * time.Second,
		StabilityWindow: 3,
	}
}

// Result describes how a discovery wait ended. TimedOut is an expected
// outcome, not an error: callers decide how to report it.
type Result struct {
	State      State
	StartCount int
	FinalCount int
	Polls      int
	Elapsed    time.Duration
}

// Converged reports terminal success.
func (r Result) Converged() bool { return r.State == StateConverged }

// Monitor drives discovery and waits for the directory to converge.
type Monitor struct {
	count   CountFunc
	trigger TriggerFunc
	clock   Clock
	run     sync.RunContext
	opts    Options
	log     *slog.Logger
}

// NewMonitor creates a monitor. A nil clock selects the wall clock and
// zero option fields fall back to DefaultOptions.
func NewMonitor(count CountFunc, trigger TriggerFunc, run sync.RunContext, opts Options, clock Clock, log *slog.Logger) *Monitor {
	def := DefaultOptions()
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.StabilityWindow <= 0 {
		opts.StabilityWindow = def.StabilityWindow
	}
	if clock == nil {
		clock = realClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{count: count, trigger: trigger, clock: clock, run: run, opts: opts, log: log}
}

// Wait records the starting entity count, fires the discovery trigger and
// polls until the count has grown and then held still for the stability
// window, or until the budget elapses.
//
// A failed poll is not fatal: discovery legitimately takes many poll
// cycles and the remote API flakes, so the failure is logged and the
// loop continues within the same budget. Only context cancellation
// returns an error; a timeout comes back as a Result with StateTimedOut.
//
// In dry-run mode nothing is triggered or polled and convergence is
// assumed immediately.
func (m *Monitor) Wait(ctx context.Context) (Result, error) {
	if m.run.DryRun {
		m.log.Info("dry-run: assuming discovery convergence without polling", "run_id", m.run.RunID)
		return Result{State: StateConverged}, nil
	}

	start := m.clock.Now()
	deadline := start.Add(m.opts.Timeout)

	startCount, err := m.count(ctx)
	if err != nil {
		// The starting count anchors the growth check; without it the
		// whole wait is meaningless.
		return Result{State: StateInitial}, sync.NewOpError(sync.CodeTransient, "poll entity count", "", err)
	}

	if err := m.trigger(ctx); err != nil {
		return Result{State: StateInitial, StartCount: startCount}, err
	}
	m.log.Info("discovery triggered", "run_id", m.run.RunID, "start_count", startCount, "timeout", m.opts.Timeout)

	state := StateAwaitingIncrease
	result := Result{State: state, StartCount: startCount, FinalCount: startCount}
	var window []int

	for {
		if !m.clock.Now().Before(deadline) {
			result.State = StateTimedOut
			result.Elapsed = m.clock.Now().Sub(start)
			m.log.Warn("discovery did not converge within budget",
				"run_id", m.run.RunID, "polls", result.Polls, "final_count", result.FinalCount)
			return result, nil
		}
		if err := m.clock.Sleep(ctx, m.opts.PollInterval); err != nil {
			return result, sync.NewOpError(sync.CodeCancelled, "discovery wait", "", err)
		}

		count, err := m.count(ctx)
		result.Polls++
		if err != nil {
			m.log.Warn("entity count poll failed, retrying", "run_id", m.run.RunID, "poll", result.Polls, "error", err)
			continue
		}
		result.FinalCount = count
		m.log.Debug("discovery poll", "run_id", m.run.RunID, "poll", result.Polls, "count", count, "state", string(state))

		switch state {
		case StateAwaitingIncrease:
			if count > startCount {
				state = StateStabilizing
				window = []int{count}
			}
		case StateStabilizing:
			window = append(window, count)
			if len(window) > m.opts.StabilityWindow {
				window = window[len(window)-m.opts.StabilityWindow:]
			}
			if len(window) == m.opts.StabilityWindow && allEqual(window) {
				result.State = StateConverged
				result.Elapsed = m.clock.Now().Sub(start)
				m.log.Info("discovery converged",
					"run_id", m.run.RunID, "polls", result.Polls, "final_count", count)
				return result, nil
			}
		}
		result.State = state
	}
}

func allEqual(counts []int) bool {
	for _, c := range counts[1:] {
		if c != counts[0] {
			return false
		}
	}
	return true
}
