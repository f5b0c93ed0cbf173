package cli

import (
	"github.com/spf13/cobra"

	"github.com/mkieser/alexactl/internal/sync"
)

// NewCreateGroupsCommand creates the create-groups command: the group
// creation phase of sync, on its own, for users who manage membership by
// hand.
func NewCreateGroupsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "create-groups",
		Short:         "Create voice-assistant groups for home-automation areas",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &SyncOptions{
				RootOptions:  rootOpts,
				Mode:         string(sync.ModeUpdateOnly),
				SyncGroups:   true,
				SyncEntities: false,
			}
			return runSync(opts, cmd)
		},
	}
}
