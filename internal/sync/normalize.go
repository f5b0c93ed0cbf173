package sync

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// skillPrefixMarker separates the opaque skill prefix from the appliance
// identifier proper. Appliance identifiers from the bulk endpoint listing
// look like "SKILL_XXXX==_sensor#soil_temp".
const skillPrefixMarker = "==_"

var titleCaser = cases.Title(language.English)

// NormalizeApplianceID canonicalizes a voice-assistant appliance identifier
// into the home-automation "<namespace>.<name>" convention:
//  1. Strip everything up to and including the last "==_" marker.
//  2. Replace "#" with ".".
//  3. Lowercase.
//
// Identifiers that already follow the home-automation convention pass
// through unchanged apart from lowercasing, so the function can be used to
// key a lookup map regardless of which directory listing an identifier
// came from.
func NormalizeApplianceID(id string) string {
	if idx := strings.LastIndex(id, skillPrefixMarker); idx >= 0 {
		id = id[idx+len(skillPrefixMarker):]
	}
	id = strings.ReplaceAll(id, "#", ".")
	return strings.ToLower(strings.TrimSpace(id))
}

// NormalizeEntityID canonicalizes a home-automation entity identifier.
// Casing is the only inconsistency observed between the two directories;
// the namespace/name separator already matches.
func NormalizeEntityID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// NormalizeAreaName canonicalizes an area or group name for comparison
// between the two systems, which disagree on casing and separators
// ("Living Room" vs "living_room"). Underscores become spaces, runs of
// whitespace collapse to a single space, and the result is lowercased.
func NormalizeAreaName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.Join(strings.Fields(name), " ")
	return strings.ToLower(name)
}

// PrettifyAreaName produces the display form used when creating a remote
// group from an area name: normalized, then title-cased per word
// ("living_room" -> "Living Room").
//
// For names made of single-separator ASCII words this is the exact inverse
// of NormalizeAreaName. Known edge cases: digits pass through untouched
// ("room 2" -> "Room 2"), and names that already carry mixed case collapse
// to plain Title Case ("McAllister den" -> "Mcallister Den").
func PrettifyAreaName(name string) string {
	return titleCaser.String(NormalizeAreaName(name))
}
