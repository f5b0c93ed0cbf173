package sync

import "github.com/google/uuid"

// RunContext carries the per-run safety switches. It is passed explicitly
// into every component that can mutate remote state, so tests inject
// whatever combination they need instead of flipping globals.
type RunContext struct {
	// RunID correlates log lines and the summary of one invocation.
	RunID string

	// DryRun simulates all mutating operations: the intended action is
	// logged and reported as success without any transport call.
	DryRun bool

	// DoNotDelete makes delete operations report success without a
	// network call. Used to protect production devices during testing.
	DoNotDelete bool
}

// NewRunContext creates a RunContext with a fresh run id.
func NewRunContext(dryRun, doNotDelete bool) RunContext {
	return RunContext{
		RunID:       uuid.NewString(),
		DryRun:      dryRun,
		DoNotDelete: doNotDelete,
	}
}
