package alexa

import "strings"

// descriptionSuffix is the convention the bridge stamps into every entity
// description ("sensor.soil_temp via Home Assistant"). Stripping it yields
// the home-automation entity id, which is the only reliable cross-reference
// when the appliance identifier is absent.
const descriptionSuffix = " via Home Assistant"

// Entity is one controllable device known to the voice-assistant
// directory. Entities are constructed fresh on every fetch and discarded
// at the end of the run.
type Entity struct {
	// ID is the opaque directory identifier (appliance key).
	ID string `json:"id"`

	// DisplayName is the human-facing name.
	DisplayName string `json:"display_name"`

	// Description is the free-text field that embeds the
	// home-automation identifier by convention.
	Description string `json:"description"`

	// HAEntityID is the home-automation identifier derived from the
	// description.
	HAEntityID string `json:"ha_entity_id"`

	// DeleteID is the identifier form the delete endpoint addresses
	// entities by: the description-derived id with "." escaped as "%23".
	DeleteID string `json:"-"`

	// ApplianceID is the identifier group membership lists are written
	// in. Only the bulk endpoint listing provides it.
	ApplianceID string `json:"appliance_id,omitempty"`
}

// NewEntity constructs an Entity and derives its cross-reference
// identifiers from the description.
func NewEntity(id, displayName, description, applianceID string) Entity {
	haID := strings.ToLower(strings.ReplaceAll(description, descriptionSuffix, ""))
	return Entity{
		ID:          id,
		DisplayName: displayName,
		Description: description,
		HAEntityID:  haID,
		DeleteID:    strings.ReplaceAll(haID, ".", "%23"),
		ApplianceID: applianceID,
	}
}

// Group is one named appliance collection in the remote directory,
// carrying every field the update endpoint requires. The remote API
// rejects partial payloads, so auxiliary fields are round-tripped
// unchanged even when unused.
type Group struct {
	EntityID                string           `json:"entityId"`
	ID                      string           `json:"id"`
	Name                    string           `json:"name"`
	EntityType              string           `json:"entityType"`
	GroupType               string           `json:"groupType"`
	ChildIDs                []string         `json:"childIds"`
	Defaults                []map[string]any `json:"defaults"`
	AssociatedUnitIDs       []string         `json:"associatedUnitIds"`
	DefaultMetadataByType   map[string]any   `json:"defaultMetadataByType"`
	ImplicitTargetingByType map[string]any   `json:"implicitTargetingByType"`
	ApplianceIDs            []string         `json:"applianceIds"`
}

// NewGroup constructs a creation payload for a group with the given name
// and initial membership. Collection fields default to empty, never nil,
// so they serialize as [] and {} rather than null.
func NewGroup(name string, applianceIDs []string) Group {
	if applianceIDs == nil {
		applianceIDs = []string{}
	}
	return Group{
		Name:                    name,
		EntityType:              "GROUP",
		GroupType:               "APPLIANCE",
		ChildIDs:                []string{},
		Defaults:                []map[string]any{},
		AssociatedUnitIDs:       []string{},
		DefaultMetadataByType:   map[string]any{},
		ImplicitTargetingByType: map[string]any{},
		ApplianceIDs:            applianceIDs,
	}
}

// WithApplianceIDs returns a copy of the group with its membership
// replaced and every other field carried over untouched.
func (g Group) WithApplianceIDs(ids []string) Group {
	if ids == nil {
		ids = []string{}
	}
	g.ApplianceIDs = ids
	return g
}
