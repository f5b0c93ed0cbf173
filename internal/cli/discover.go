package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkieser/alexactl/internal/discover"
)

// DiscoverOptions holds flags for the discover command.
type DiscoverOptions struct {
	*RootOptions
	PollInterval time.Duration
	Timeout      time.Duration
	Window       int
}

// NewDiscoverCommand creates the discover command: trigger device
// discovery and wait for the directory entity count to converge.
func NewDiscoverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiscoverOptions{RootOptions: rootOpts}
	def := discover.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Trigger device discovery and wait for convergence",
		Long: `Trigger the voice assistant's device discovery through the
home-automation media player integration, then poll the directory entity
count until it has grown and held still for the stability window.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.PollInterval, "poll-interval", def.PollInterval, "delay between entity count polls")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "overall wall-clock budget (default from config, else 2m)")
	cmd.Flags().IntVar(&opts.Window, "stability-window", def.StabilityWindow, "identical consecutive counts required")

	return cmd
}

func runDiscover(opts *DiscoverOptions, cmd *cobra.Command) error {
	a, err := newApp(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	monitorOpts := discover.Options{
		PollInterval:    opts.PollInterval,
		Timeout:         opts.Timeout,
		StabilityWindow: opts.Window,
	}
	if opts.Timeout == 0 && a.cfg.DiscoveryTimeoutSeconds > 0 {
		monitorOpts.Timeout = time.Duration(a.cfg.DiscoveryTimeoutSeconds) * time.Second
	}

	count := func(ctx context.Context) (int, error) {
		entities, err := a.alexa.Entities(ctx)
		if err != nil {
			return 0, err
		}
		return len(entities), nil
	}
	trigger := func(ctx context.Context) error {
		return a.ha.TriggerDiscovery(ctx, a.cfg.AlexaEntityID)
	}

	monitor := discover.NewMonitor(count, trigger, a.run, monitorOpts, nil, a.log)
	result, err := monitor.Wait(cmd.Context())
	if err != nil {
		return err
	}

	if result.Converged() {
		fmt.Fprintf(cmd.OutOrStdout(), "Discovery converged: %d -> %d entities after %d poll(s)\n",
			result.StartCount, result.FinalCount, result.Polls)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Discovery did not converge (%s): %d -> %d entities after %d poll(s)\n",
		result.State, result.StartCount, result.FinalCount, result.Polls)
	return NewExitError(ExitFailure, "discovery did not converge")
}
