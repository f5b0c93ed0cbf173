package sync

import (
	"context"
	"log/slog"
	"sort"
)

// Group is the orchestrator's view of one remote group. The full
// round-trip payload stays with the directory client; reconciliation only
// needs identity, name and current membership.
type Group struct {
	ID           string
	Name         string
	ApplianceIDs []string
}

// GroupWriter applies group mutations against the remote directory.
// Implementations handle dry-run, retry and verification; the orchestrator
// only sequences them and records outcomes.
type GroupWriter interface {
	// CreateGroup creates a group with the given display name and
	// initial membership.
	CreateGroup(ctx context.Context, name string, applianceIDs []string) error

	// UpdateGroup replaces the membership of an existing group.
	UpdateGroup(ctx context.Context, group Group, members []string) error
}

// Options configures one reconciliation run.
type Options struct {
	// Mode selects the membership policy for the entity sync phase.
	Mode Mode

	// SyncGroups enables the group creation phase.
	SyncGroups bool

	// SyncEntities enables the entity membership sync phase.
	SyncEntities bool

	// IgnoredAreas holds normalized area names excluded from group
	// creation. The exclusion deliberately does not extend to entity
	// sync: an existing group whose name is on the list still has its
	// membership reconciled. See the AreaError docs before "fixing"
	// this asymmetry.
	IgnoredAreas map[string]bool
}

// AreaError records one area whose reconciliation failed.
type AreaError struct {
	Area   string `json:"area"`
	Reason string `json:"reason"`
}

// Summary aggregates the outcomes of one reconciliation run. Every area
// the run considered lands in exactly one bucket; a group's sync is
// reported atomically even though the remote calls offer no atomicity.
type Summary struct {
	RunID   string      `json:"run_id"`
	Created []string    `json:"created"`
	Updated []string    `json:"updated"`
	Skipped []string    `json:"skipped"`
	Errors  []AreaError `json:"errors"`

	// Cancelled is set when the run was interrupted; the other fields
	// then hold the partial results collected before the interrupt.
	Cancelled bool `json:"cancelled,omitempty"`
}

// Orchestrator sequences matching, diffing and mutation across all areas
// of one run.
type Orchestrator struct {
	writer GroupWriter
	run    RunContext
	log    *slog.Logger
}

// NewOrchestrator creates an orchestrator writing through w.
func NewOrchestrator(w GroupWriter, run RunContext, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{writer: w, run: run, log: log}
}

// Reconcile runs the two reconciliation phases over all areas.
//
// Phase 1 (Options.SyncGroups): every area with no matching remote group
// is created with its cross-referenced appliance identifiers as initial
// membership, unless its normalized name is on the ignore list, in which
// case it is reported skipped.
//
// Phase 2 (Options.SyncEntities): every area that does have a matching
// remote group is diffed under Options.Mode and updated when membership
// differs. The ignore list does not apply here.
//
// Areas are processed independently: one failure is recorded and the run
// continues. Context cancellation stops the run between items and returns
// whatever was already collected.
func (o *Orchestrator) Reconcile(ctx context.Context, areas map[string][]string, groups []Group, xref CrossReference, opts Options) Summary {
	summary := Summary{
		RunID:   o.run.RunID,
		Created: []string{},
		Updated: []string{},
		Skipped: []string{},
		Errors:  []AreaError{},
	}

	byName := make(map[string]Group, len(groups))
	for _, g := range groups {
		byName[NormalizeAreaName(g.Name)] = g
	}

	// Sorted iteration keeps logs and summaries deterministic; the area
	// map itself carries no meaningful order.
	names := make([]string, 0, len(areas))
	for name := range areas {
		names = append(names, name)
	}
	sort.Strings(names)

	if opts.SyncGroups {
		for _, area := range names {
			if ctx.Err() != nil {
				summary.Cancelled = true
				return summary
			}
			norm := NormalizeAreaName(area)
			if _, exists := byName[norm]; exists {
				continue // membership handled in phase 2
			}
			if opts.IgnoredAreas[norm] {
				o.log.Debug("area on ignore list, not creating group", "run_id", o.run.RunID, "area", area)
				summary.Skipped = append(summary.Skipped, area)
				continue
			}
			name := PrettifyAreaName(area)
			if err := o.writer.CreateGroup(ctx, name, xref[area]); err != nil {
				o.log.Error("group creation failed", "run_id", o.run.RunID, "area", area, "error", err)
				summary.Errors = append(summary.Errors, AreaError{Area: area, Reason: err.Error()})
				continue
			}
			summary.Created = append(summary.Created, area)
		}
	}

	if opts.SyncEntities {
		for _, area := range names {
			if ctx.Err() != nil {
				summary.Cancelled = true
				return summary
			}
			group, exists := byName[NormalizeAreaName(area)]
			if !exists {
				continue
			}
			plan := Diff(opts.Mode, group.ApplianceIDs, xref[area])
			if !plan.Changed {
				summary.Skipped = append(summary.Skipped, area)
				continue
			}
			if err := o.writer.UpdateGroup(ctx, group, plan.Members); err != nil {
				o.log.Error("group membership sync failed", "run_id", o.run.RunID, "area", area, "group_id", group.ID, "error", err)
				summary.Errors = append(summary.Errors, AreaError{Area: area, Reason: err.Error()})
				continue
			}
			summary.Updated = append(summary.Updated, area)
		}
	}

	return summary
}
