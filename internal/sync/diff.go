package sync

import (
	"fmt"
	"sort"
)

// Mode selects the group membership reconciliation policy.
type Mode string

const (
	// ModeUpdateOnly adds missing members and never removes existing ones.
	ModeUpdateOnly Mode = "update_only"

	// ModeFull makes membership exactly equal to the desired set,
	// removing members not in it.
	ModeFull Mode = "full"
)

// ParseMode validates a mode string from flags or config.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeUpdateOnly, ModeFull:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid reconciliation mode %q: must be %q or %q", s, ModeUpdateOnly, ModeFull)
	}
}

// Plan is the outcome of diffing current against desired membership.
// When Changed is false the group is already in sync and no mutation may
// be issued. Members is the full replacement membership list, sorted for
// deterministic payloads.
type Plan struct {
	Changed bool
	Members []string
}

// Diff computes the minimal membership mutation for one group.
//
// Comparison is by set, never by list: member order alone never triggers
// an update, and duplicate identifiers collapse. Under ModeUpdateOnly the
// new membership is the union of current and desired; under ModeFull it is
// exactly the desired set.
func Diff(mode Mode, current, desired []string) Plan {
	cur := toSet(current)
	des := toSet(desired)

	switch mode {
	case ModeFull:
		if setsEqual(cur, des) {
			return Plan{}
		}
		return Plan{Changed: true, Members: sortedKeys(des)}
	default: // ModeUpdateOnly
		toAdd := false
		for id := range des {
			if _, ok := cur[id]; !ok {
				toAdd = true
				break
			}
		}
		if !toAdd {
			return Plan{}
		}
		union := make(map[string]struct{}, len(cur)+len(des))
		for id := range cur {
			union[id] = struct{}{}
		}
		for id := range des {
			union[id] = struct{}{}
		}
		return Plan{Changed: true, Members: sortedKeys(union)}
	}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for id := range set {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}
