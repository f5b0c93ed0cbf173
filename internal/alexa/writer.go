package alexa

import (
	"context"
	"fmt"

	"github.com/mkieser/alexactl/internal/sync"
)

// DirectoryWriter adapts the Executor to the reconciliation engine's
// GroupWriter interface. It keeps the fetched groups by id so updates can
// round-trip the full remote payload: the update endpoint rejects partial
// bodies, and auxiliary fields must survive unchanged.
type DirectoryWriter struct {
	exec   *Executor
	groups map[string]Group
}

// NewDirectoryWriter creates a writer over the groups fetched for this
// run.
func NewDirectoryWriter(exec *Executor, groups []Group) *DirectoryWriter {
	byID := make(map[string]Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	return &DirectoryWriter{exec: exec, groups: byID}
}

// CreateGroup creates a fresh group with default payload fields and the
// given initial membership.
func (w *DirectoryWriter) CreateGroup(ctx context.Context, name string, applianceIDs []string) error {
	return w.exec.CreateGroup(ctx, NewGroup(name, applianceIDs))
}

// UpdateGroup replaces the membership of a previously fetched group,
// carrying all other payload fields over untouched.
func (w *DirectoryWriter) UpdateGroup(ctx context.Context, group sync.Group, members []string) error {
	full, ok := w.groups[group.ID]
	if !ok {
		return sync.NewOpError(sync.CodeConfiguration, "update group", group.Name,
			fmt.Errorf("group %s not present in fetched directory", group.ID))
	}
	return w.exec.UpdateGroup(ctx, full.WithApplianceIDs(members))
}

// SyncGroups converts fetched groups into the reconciliation engine's
// view: identity, name and current membership.
func SyncGroups(groups []Group) []sync.Group {
	out := make([]sync.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, sync.Group{ID: g.ID, Name: g.Name, ApplianceIDs: g.ApplianceIDs})
	}
	return out
}

// SyncEndpoints converts fetched entities into the matcher's view. The
// cross-reference identifier prefers the description-derived
// home-automation id and falls back to the raw appliance key.
func SyncEndpoints(entities []Entity) []sync.Endpoint {
	out := make([]sync.Endpoint, 0, len(entities))
	for _, e := range entities {
		entityID := e.HAEntityID
		if entityID == "" {
			entityID = e.ID
		}
		out = append(out, sync.Endpoint{EntityID: entityID, ApplianceID: e.ApplianceID})
	}
	return out
}
