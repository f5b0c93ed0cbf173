package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mkieser/alexactl/internal/alexa"
	"github.com/mkieser/alexactl/internal/config"
	"github.com/mkieser/alexactl/internal/ha"
	"github.com/mkieser/alexactl/internal/sync"
	"github.com/mkieser/alexactl/internal/transport"
)

// rateLimit throttles remote calls when SHOULD_SLEEP is configured. The
// remote session handling is fragile under bursts.
const rateLimit = 5.0

// app bundles the wired components one command invocation needs.
// Construction happens after flag parsing and before any network call, so
// configuration errors abort first.
type app struct {
	cfg   *config.Config
	run   sync.RunContext
	alexa *alexa.Client
	exec  *alexa.Executor
	ha    *ha.Client
	out   *OutputFormatter
	log   *slog.Logger
}

// newApp loads config and wires clients for one command run.
func newApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(opts.GlobalConfig, opts.UserConfig)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "configuration", err)
	}

	if cfg.Debug && !opts.Verbose {
		setupLogging(true)
	}
	log := slog.Default()
	run := sync.NewRunContext(opts.DryRun, cfg.DoNotDelete)

	sender := opts.Sender
	if sender == nil {
		topts := transport.Options{BreakerName: "alexa-directory"}
		if cfg.ShouldSleep {
			topts.RequestsPerSecond = rateLimit
		}
		sender = transport.NewClient(topts, log)
	}

	endpoints := alexa.Endpoints{Host: cfg.AlexaHost, DeleteSkill: cfg.DeleteSkill}
	headers := cfg.AlexaHeaders()

	return &app{
		cfg:   cfg,
		run:   run,
		alexa: alexa.NewClient(sender, endpoints, headers, log),
		exec:  alexa.NewExecutor(sender, endpoints, headers, run, log),
		ha:    ha.NewClient(sender, cfg.HAHost, cfg.HAHeaders(), log),
		out:   &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose},
		log:   log,
	}, nil
}
