// Package cli wires the directory management commands: informational
// gets, batch deletions, group creation, the full reconciliation run and
// the discovery wait.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkieser/alexactl/internal/transport"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	GlobalConfig string
	UserConfig   string
	DryRun       bool
	AlexaOnly    bool
	Verbose      bool
	Format       string // "text" | "json"

	// Sender overrides the transport for tests. Nil selects the
	// production HTTP client.
	Sender transport.Sender
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the alexactl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alexactl",
		Short: "Manage voice-assistant smart-home entities and groups",
		Long: `alexactl reconciles smart-home device groupings between a
home-automation platform's areas and a voice assistant's appliance groups:
listing directories, deleting stale entities, creating groups from areas
and syncing group membership.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			setupLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.GlobalConfig, "global-config", "", "path to the global config file")
	cmd.PersistentFlags().StringVar(&opts.UserConfig, "config", "", "path to the user config file")
	cmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "log mutating actions without sending them")
	cmd.PersistentFlags().BoolVar(&opts.AlexaOnly, "alexa-only", false, "skip all home-automation dependent steps")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewCreateGroupsCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewDiscoverCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// setupLogging points slog at stderr so structured logs never corrupt
// JSON command output on stdout.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
