package sync

// Endpoint is the matcher's view of one voice-assistant directory entry.
//
// EntityID is the cross-reference identifier: the home-automation entity id
// embedded in the entry's description when present, otherwise the raw
// appliance identifier from the bulk listing (which NormalizeApplianceID
// folds into the same namespace). ApplianceID is the opaque id that group
// membership lists are written in; entries without one cannot be matched.
type Endpoint struct {
	EntityID    string
	ApplianceID string
}

// CrossReference maps an area name to the appliance identifiers of its
// matched entities. It is derived per reconciliation pass and never
// persisted.
type CrossReference map[string][]string

// Match builds the cross-reference from home-automation areas to
// voice-assistant appliance identifiers.
//
// For every home-automation identifier in every area, the normalized form
// is looked up in an index built from the directory. Only exact normalized
// matches are included; there is no prefix or fuzzy matching, because a
// near-miss would silently group the wrong device. Identifiers with no
// match are returned in the second value, in area iteration order within
// each area, so callers can surface them for debugging.
//
// Match is pure: no I/O, and identical inputs yield identical outputs.
// The per-area order of matched appliance identifiers follows the order of
// the input identifier lists.
func Match(areas map[string][]string, directory []Endpoint) (CrossReference, []string) {
	index := make(map[string]string, len(directory))
	for _, ep := range directory {
		if ep.ApplianceID == "" {
			continue
		}
		key := NormalizeApplianceID(ep.EntityID)
		if key == "" {
			continue
		}
		index[key] = ep.ApplianceID
	}

	xref := make(CrossReference, len(areas))
	var unmatched []string
	for area, ids := range areas {
		matched := make([]string, 0, len(ids))
		for _, id := range ids {
			if applianceID, ok := index[NormalizeEntityID(id)]; ok {
				matched = append(matched, applianceID)
			} else {
				unmatched = append(unmatched, id)
			}
		}
		xref[area] = matched
	}
	return xref, unmatched
}
