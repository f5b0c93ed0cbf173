package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkieser/alexactl/internal/alexa"
	"github.com/mkieser/alexactl/internal/sync"
)

// NewGetCommand creates the informational "get" command group. Gets never
// mutate anything and always exit zero on success.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "List entities, endpoints, groups, areas or the cross-reference mapping",
	}
	cmd.AddCommand(newGetEntitiesCommand(rootOpts))
	cmd.AddCommand(newGetEndpointsCommand(rootOpts))
	cmd.AddCommand(newGetGroupsCommand(rootOpts))
	cmd.AddCommand(newGetAreasCommand(rootOpts))
	cmd.AddCommand(newGetMappingCommand(rootOpts))
	return cmd
}

func newGetEntitiesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "entities",
		Short:         "List voice-assistant skill entities",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			entities, err := a.alexa.Entities(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.Table("Skill Entities",
				[]string{"ID", "Display Name", "HA Entity ID", "Description"},
				entityRows(entities))
		},
	}
}

func newGetEndpointsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "endpoints",
		Short:         "List voice-assistant endpoints from the bulk directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			entities, err := a.alexa.EndpointEntities(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.Table("Endpoints",
				[]string{"ID", "Display Name", "HA Entity ID", "Appliance ID"},
				endpointRows(entities))
		},
	}
}

func newGetGroupsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "groups",
		Short:         "List voice-assistant appliance groups",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			groups, err := a.alexa.Groups(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(groups))
			for _, g := range groups {
				rows = append(rows, []string{g.ID, g.Name, strings.Join(g.ApplianceIDs, ", ")})
			}
			return a.out.Table("Groups", []string{"Group ID", "Name", "Appliance IDs"}, rows)
		},
	}
}

func newGetAreasCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "areas",
		Short:         "List home-automation areas and their entity ids",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			areas, err := a.ha.Areas(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(areas))
			for _, area := range sortedAreaNames(areas) {
				rows = append(rows, []string{area, strings.Join(areas[area], ", ")})
			}
			return a.out.Table("Areas", []string{"Name", "HA Entity IDs"}, rows)
		},
	}
}

func newGetMappingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "mapping",
		Short:         "Show the area to appliance id cross-reference",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			areas, err := a.ha.Areas(ctx)
			if err != nil {
				return err
			}
			endpoints, err := a.alexa.EndpointEntities(ctx)
			if err != nil {
				return err
			}
			xref, unmatched := sync.Match(areas, alexa.SyncEndpoints(endpoints))
			if len(unmatched) > 0 {
				a.log.Warn("entities with no directory match", "count", len(unmatched), "entity_ids", unmatched)
			}

			var rows [][]string
			for _, area := range sortedAreaNames(areas) {
				for _, applianceID := range xref[area] {
					rows = append(rows, []string{area, applianceID})
				}
			}
			return a.out.Table("Area to Appliance Mapping", []string{"Area", "Appliance ID"}, rows)
		},
	}
}

func entityRows(entities []alexa.Entity) [][]string {
	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []string{e.ID, e.DisplayName, e.HAEntityID, e.Description})
	}
	return rows
}

func endpointRows(entities []alexa.Entity) [][]string {
	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []string{e.ID, e.DisplayName, e.HAEntityID, e.ApplianceID})
	}
	return rows
}
