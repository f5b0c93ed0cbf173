package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkieser/alexactl/internal/alexa"
	"github.com/mkieser/alexactl/internal/sync"
)

// DeleteOptions holds flags for the delete command group.
type DeleteOptions struct {
	*RootOptions

	// FilterEntities restricts entity deletion to entities whose
	// description contains the configured filter text.
	FilterEntities bool
}

// NewDeleteCommand creates the batch deletion command group. Deletions
// run sequentially, isolate failures per item, and stop promptly on
// interrupt with partial results reported.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete entities, endpoints or groups from the voice-assistant directory",
	}
	cmd.PersistentFlags().BoolVar(&opts.FilterEntities, "filter-entities", false,
		"only delete entities whose description contains the configured filter text")

	cmd.AddCommand(newDeleteEntitiesCommand(opts))
	cmd.AddCommand(newDeleteEndpointsCommand(opts))
	cmd.AddCommand(newDeleteGroupsCommand(opts))
	return cmd
}

func newDeleteEntitiesCommand(opts *DeleteOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "entities",
		Short:         "Delete skill entities",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			entities, err := a.alexa.Entities(cmd.Context())
			if err != nil {
				return err
			}
			return deleteEntityBatch(cmd.Context(), a, opts, entities)
		},
	}
}

func newDeleteEndpointsCommand(opts *DeleteOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "endpoints",
		Short:         "Delete endpoints discovered via the bulk directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			entities, err := a.alexa.EndpointEntities(cmd.Context())
			if err != nil {
				return err
			}
			return deleteEntityBatch(cmd.Context(), a, opts, entities)
		},
	}
}

func newDeleteGroupsCommand(opts *DeleteOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "groups",
		Short:         "Delete all appliance groups",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			groups, err := a.alexa.Groups(cmd.Context())
			if err != nil {
				return err
			}
			failures, batchErr := sync.ForEach(cmd.Context(), groups,
				func(ctx context.Context, g alexa.Group) error {
					return a.exec.DeleteGroup(ctx, g)
				})
			if err := Failures(a.out, "delete group", failures, func(g alexa.Group) string {
				return fmt.Sprintf("%s (%s)", g.Name, g.ID)
			}); err != nil {
				return err
			}
			return batchResult(len(failures), batchErr)
		},
	}
}

func deleteEntityBatch(ctx context.Context, a *app, opts *DeleteOptions, entities []alexa.Entity) error {
	if opts.FilterEntities {
		entities = alexa.FilterByDescription(entities, a.cfg.DescriptionFilterText)
	}
	failures, batchErr := sync.ForEach(ctx, entities,
		func(ctx context.Context, e alexa.Entity) error {
			return a.exec.DeleteEntity(ctx, e)
		})
	if err := Failures(a.out, "delete entity", failures, func(e alexa.Entity) string {
		return fmt.Sprintf("%s (%s)", e.DisplayName, e.ID)
	}); err != nil {
		return err
	}
	return batchResult(len(failures), batchErr)
}

// batchResult maps batch outcomes to exit codes: cancellation and
// per-item failures exit non-zero after partial results were printed.
func batchResult(failureCount int, batchErr error) error {
	if batchErr != nil {
		return WrapExitError(ExitFailure, "batch interrupted", batchErr)
	}
	if failureCount > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d item(s) failed", failureCount))
	}
	return nil
}
