package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("update_only")
	require.NoError(t, err)
	assert.Equal(t, ModeUpdateOnly, m)

	m, err = ParseMode("full")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, m)

	_, err = ParseMode("partial")
	assert.Error(t, err)
}

func TestDiff_UpdateOnlyNeverRemoves(t *testing.T) {
	plan := Diff(ModeUpdateOnly, []string{"a", "b"}, []string{"b", "c"})

	require.True(t, plan.Changed)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, plan.Members)
}

func TestDiff_FullConvergesExactly(t *testing.T) {
	plan := Diff(ModeFull, []string{"a", "b"}, []string{"c"})

	require.True(t, plan.Changed)
	assert.Equal(t, []string{"c"}, plan.Members)
}

func TestDiff_SkipWhenInSync(t *testing.T) {
	for _, mode := range []Mode{ModeUpdateOnly, ModeFull} {
		plan := Diff(mode, []string{"a", "b"}, []string{"b", "a"})
		assert.False(t, plan.Changed, "mode %s", mode)
		assert.Empty(t, plan.Members, "mode %s", mode)
	}
}

// Membership is compared as a set: order alone never triggers an update.
func TestDiff_OrderNeverTriggersUpdate(t *testing.T) {
	plan := Diff(ModeFull, []string{"x", "y", "z"}, []string{"z", "x", "y"})
	assert.False(t, plan.Changed)
}

func TestDiff_UpdateOnlySubsetSkips(t *testing.T) {
	// Desired is a strict subset of current: nothing to add.
	plan := Diff(ModeUpdateOnly, []string{"a", "b", "c"}, []string{"b"})
	assert.False(t, plan.Changed)
}

func TestDiff_FullRemovesExtraMembers(t *testing.T) {
	plan := Diff(ModeFull, []string{"a", "b", "c"}, []string{"a", "b"})

	require.True(t, plan.Changed)
	assert.Equal(t, []string{"a", "b"}, plan.Members)
}

func TestDiff_DuplicatesCollapse(t *testing.T) {
	plan := Diff(ModeFull, []string{"a", "a", "b"}, []string{"b", "a"})
	assert.False(t, plan.Changed)
}

func TestDiff_MembersSortedForDeterministicPayloads(t *testing.T) {
	plan := Diff(ModeUpdateOnly, []string{"z"}, []string{"a", "m"})

	require.True(t, plan.Changed)
	assert.Equal(t, []string{"a", "m", "z"}, plan.Members)
}
