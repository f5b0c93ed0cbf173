package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkieser/alexactl/internal/sync"
)

func sampleSummary() sync.Summary {
	return sync.Summary{
		RunID:   "test-run",
		Created: []string{"living_room"},
		Updated: []string{"kitchen"},
		Skipped: []string{"office", "patio"},
		Errors:  []sync.AreaError{{Area: "attic", Reason: "status 500"}},
	}
}

func TestSummary_Text(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Summary(sampleSummary()))

	goldie.New(t).Assert(t, "summary_text", buf.Bytes())
}

func TestSummary_TextCancelled(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	s := sampleSummary()
	s.Cancelled = true

	require.NoError(t, f.Summary(s))

	goldie.New(t).Assert(t, "summary_text_cancelled", buf.Bytes())
}

func TestSummary_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Summary(sampleSummary()))

	assert.JSONEq(t, `{
		"run_id": "test-run",
		"created": ["living_room"],
		"updated": ["kitchen"],
		"skipped": ["office", "patio"],
		"errors": [{"area": "attic", "reason": "status 500"}]
	}`, buf.String())
}

func TestTable_Text(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	err := f.Table("Groups", []string{"NAME", "ID"}, [][]string{
		{"Kitchen", "g-1"},
		{"Living Room", "g-22"},
	})
	require.NoError(t, err)

	goldie.New(t).Assert(t, "table_text", buf.Bytes())
}

func TestTable_TextEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Table("Groups", []string{"NAME", "ID"}, nil))

	assert.Equal(t, "Groups: none found\n", buf.String())
}

func TestTable_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	err := f.Table("Groups", []string{"NAME", "ID"}, [][]string{{"Kitchen", "g-1"}})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"title": "Groups",
		"rows": [{"NAME": "Kitchen", "ID": "g-1"}]
	}`, buf.String())
}

func TestFailures_Text(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	failures := []sync.Failure[string]{
		{Item: "light.lamp", Err: errors.New("status 500")},
	}

	err := Failures(f, "delete", failures, func(s string) string { return s })
	require.NoError(t, err)

	assert.Equal(t, "Failed to delete 1 item(s):\n  - light.lamp: status 500\n", buf.String())
}

func TestFailures_NoneRendersNothing(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, Failures(f, "delete", nil, func(s string) string { return s }))

	assert.Empty(t, buf.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitCommandError,
		GetExitCode(sync.NewOpError(sync.CodeConfiguration, "validate config", "", errors.New("missing"))))
	assert.Equal(t, ExitFailure,
		GetExitCode(sync.NewOpError(sync.CodeTransient, "create group", "g", errors.New("status 500"))))

	wrapped := WrapExitError(ExitFailure, "sync finished with errors", errors.New("2 areas failed"))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Contains(t, wrapped.Error(), "sync finished with errors")
}
