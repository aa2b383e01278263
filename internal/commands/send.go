package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/NielsdaWheelz/tixmail/internal/artifact"
	"github.com/NielsdaWheelz/tixmail/internal/batch"
	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/delivery"
	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/events"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
	"github.com/NielsdaWheelz/tixmail/internal/render"
	"github.com/NielsdaWheelz/tixmail/internal/store"
)

// dryRunSender is the From address used by dry runs when EMAIL_ADDRESS is unset.
const dryRunSender = "tixmail@localhost"

// SendOpts holds options for the send command.
type SendOpts struct {
	ConfigPath string
	Only       string
	Limit      int
	DryRun     bool
	Checkpoint bool
	Strict     bool // exit E_PARTIAL_FAILURE when any participant failed
}

// SendDeps holds the process-level collaborators of Send.
type SendDeps struct {
	Logger *slog.Logger
	// Environ holds the environment variables (see config.Environ).
	Environ map[string]string
	// Channel overrides the delivery channel chosen from the environment.
	Channel delivery.Channel
	Now     func() time.Time
}

// Send implements `tixmail send`: one batch run over the roster.
// The run summary goes to stdout; per-participant logs go to the logger.
func Send(ctx context.Context, fsys fs.FS, opts SendOpts, deps SendDeps, stdout, stderr io.Writer) error {
	logger := discardLogger(deps.Logger)
	if opts.Limit < 0 {
		return errors.New(errors.EUsage, "--limit must not be negative")
	}

	// Step 1: Resolve configuration; nothing is touched on error
	cfg, err := loadEvent(fsys, opts.ConfigPath, logger)
	if err != nil {
		return err
	}

	channel, from, err := resolveChannel(cfg, opts, deps)
	if err != nil {
		return err
	}

	renderer, err := artifact.New(fsys, cfg.Artifact, logger)
	if err != nil {
		return errors.Wrap(errors.EInvalidEventConfig, err.Error(), err)
	}
	composer, err := delivery.NewComposer(from, cfg.Message, cfg.Info)
	if err != nil {
		return errors.Wrap(errors.EInvalidEventConfig, err.Error(), err)
	}

	// Dry runs keep a run id for the summary but leave events.jsonl alone
	recorder := &events.Recorder{RunID: events.NewRunID(), Now: deps.Now}
	if !opts.DryRun {
		if err := fsys.MkdirAll(cfg.StateDir, 0o755); err != nil {
			return errors.WrapWithDetails(errors.EPersistFailed, "failed to create state directory", err,
				map[string]string{"path": cfg.StateDir})
		}
		recorder = events.NewRecorder(cfg.EventsPath(), deps.Now)
	}

	st := store.NewStore(fsys, cfg)
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("closing ledger store failed", "error", cerr)
		}
	}()

	// Step 2: Run the batch
	runner := &batch.Runner{
		Event:    cfg,
		Store:    st,
		Renderer: renderer,
		Channel:  channel,
		Composer: composer,
		Events:   recorder,
		Logger:   logger,
		Now:      deps.Now,
	}
	sum, runErr := runner.Run(ctx, batch.Options{
		Only:       opts.Only,
		Limit:      opts.Limit,
		Checkpoint: opts.Checkpoint,
		DryRun:     opts.DryRun,
	})

	// Step 3: Report
	if sum != nil {
		render.WriteSummary(stdout, sum, render.NewStyles(stdout))
		for _, e := range sum.EventAppendErrors {
			_, _ = fmt.Fprintf(stderr, "warning: event log: %s\n", e)
		}
	}
	if runErr != nil {
		return runErr
	}
	if opts.Strict && sum.Failed > 0 {
		return errors.NewWithDetails(errors.EPartialFailure,
			fmt.Sprintf("%d participant(s) failed", sum.Failed),
			map[string]string{"run_id": sum.RunID, "ledger": cfg.Ledger.Failure})
	}
	return nil
}

// resolveChannel picks the delivery channel and sender address.
// Real sends need the full SMTP environment; dry runs write to the outbox
// and only borrow EMAIL_ADDRESS when it is set.
func resolveChannel(cfg config.Event, opts SendOpts, deps SendDeps) (delivery.Channel, string, error) {
	if opts.DryRun || deps.Channel != nil {
		from := deps.Environ["EMAIL_ADDRESS"]
		if from == "" {
			from = dryRunSender
		}
		if deps.Channel != nil {
			return deps.Channel, from, nil
		}
		return delivery.NewOutboxChannel(cfg.OutboxDir()), from, nil
	}

	env, err := config.LoadEnv(deps.Environ)
	if err != nil {
		return nil, "", err
	}
	return delivery.NewSMTPChannel(env), env.SenderAddress, nil
}
