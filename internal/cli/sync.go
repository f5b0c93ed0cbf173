package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/mkieser/alexactl/internal/alexa"
	"github.com/mkieser/alexactl/internal/sync"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Mode         string
	SyncGroups   bool
	SyncEntities bool
}

// NewSyncCommand creates the reconciliation command: create missing
// groups from areas, then sync membership of existing groups.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile home-automation areas with voice-assistant groups",
		Long: `Reconcile the two directories in two independently toggleable phases:
group creation (areas with no matching group become new groups, honoring
the configured ignore list) and entity sync (membership of matching
groups is diffed and updated under the selected mode).

Modes:
  update_only  add missing members, never remove (default)
  full         make membership exactly match the area`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", string(sync.ModeUpdateOnly), "reconciliation mode (update_only|full)")
	cmd.Flags().BoolVar(&opts.SyncGroups, "groups", true, "enable the group creation phase")
	cmd.Flags().BoolVar(&opts.SyncEntities, "entities", true, "enable the entity membership sync phase")

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	mode, err := sync.ParseMode(opts.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flag", err)
	}
	if opts.AlexaOnly {
		return NewExitError(ExitCommandError, "sync requires home-automation access; remove --alexa-only")
	}

	a, err := newApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	areas, err := a.ha.Areas(ctx)
	if err != nil {
		return err
	}
	groups, err := a.alexa.Groups(ctx)
	if err != nil {
		return err
	}
	endpoints, err := a.alexa.EndpointEntities(ctx)
	if err != nil {
		return err
	}

	xref, unmatched := sync.Match(areas, alexa.SyncEndpoints(endpoints))
	if len(unmatched) > 0 {
		a.log.Warn("home-automation entities with no directory match",
			"run_id", a.run.RunID, "count", len(unmatched), "entity_ids", unmatched)
	}

	orch := sync.NewOrchestrator(alexa.NewDirectoryWriter(a.exec, groups), a.run, a.log)
	summary := orch.Reconcile(ctx, areas, alexa.SyncGroups(groups), xref, sync.Options{
		Mode:         mode,
		SyncGroups:   opts.SyncGroups,
		SyncEntities: opts.SyncEntities,
		IgnoredAreas: a.cfg.IgnoredAreaSet(),
	})

	if err := a.out.Summary(summary); err != nil {
		return err
	}
	if summary.Cancelled {
		return NewExitError(ExitFailure, "run interrupted")
	}
	if len(summary.Errors) > 0 {
		return NewExitError(ExitFailure, "some areas failed to reconcile")
	}
	return nil
}

func sortedAreaNames(areas map[string][]string) []string {
	names := make([]string, 0, len(areas))
	for name := range areas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
