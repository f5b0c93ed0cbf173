package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mkieser/alexactl/internal/sync"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution, including informational gets
	ExitFailure      = 1 // run finished but some items failed or timed out
	ExitCommandError = 2 // command error (bad flags, unloadable config)
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error chain.
// Configuration errors map to ExitCommandError; anything else
// unclassified maps to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if sync.IsConfiguration(err) {
		return ExitCommandError
	}
	return ExitFailure
}

// OutputFormatter renders command results as text tables or JSON.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// Table renders rows under the given column headers. In JSON mode each
// row becomes an object keyed by column name.
func (f *OutputFormatter) Table(title string, columns []string, rows [][]string) error {
	if f.Format == "json" {
		objs := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			obj := make(map[string]string, len(columns))
			for i, col := range columns {
				if i < len(row) {
					obj[col] = row[i]
				}
			}
			objs = append(objs, obj)
		}
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"title": title, "rows": objs})
	}

	if len(rows) == 0 {
		fmt.Fprintf(f.Writer, "%s: none found\n", title)
		return nil
	}
	fmt.Fprintln(f.Writer, title)
	w := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	printTabRow(w, columns)
	for _, row := range rows {
		printTabRow(w, row)
	}
	return w.Flush()
}

// Summary renders a reconciliation summary.
func (f *OutputFormatter) Summary(s sync.Summary) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(f.Writer, "Reconciliation summary (run %s)\n", s.RunID)
	if s.Cancelled {
		fmt.Fprintln(f.Writer, "  interrupted: partial results below")
	}
	printBucket(f.Writer, "created", s.Created)
	printBucket(f.Writer, "updated", s.Updated)
	printBucket(f.Writer, "skipped", s.Skipped)
	fmt.Fprintf(f.Writer, "  errors: %d\n", len(s.Errors))
	for _, e := range s.Errors {
		fmt.Fprintf(f.Writer, "    - %s: %s\n", e.Area, e.Reason)
	}
	return nil
}

// Failures renders the failed items of a batch operation.
func Failures[T any](f *OutputFormatter, op string, failures []sync.Failure[T], describe func(T) string) error {
	if len(failures) == 0 {
		return nil
	}
	if f.Format == "json" {
		objs := make([]map[string]string, 0, len(failures))
		for _, fail := range failures {
			objs = append(objs, map[string]string{
				"item":  describe(fail.Item),
				"error": fail.Err.Error(),
			})
		}
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"operation": op, "failures": objs})
	}
	fmt.Fprintf(f.Writer, "Failed to %s %d item(s):\n", op, len(failures))
	for _, fail := range failures {
		fmt.Fprintf(f.Writer, "  - %s: %v\n", describe(fail.Item), fail.Err)
	}
	return nil
}

func printBucket(w io.Writer, name string, areas []string) {
	fmt.Fprintf(w, "  %s: %d\n", name, len(areas))
	for _, area := range areas {
		fmt.Fprintf(w, "    - %s\n", area)
	}
}

func printTabRow(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}
