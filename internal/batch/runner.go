// Package batch runs the token-and-ticket workflow over a roster.
// It wires together roster and ledger loading, token issuance, rendering,
// delivery and the final ledger merge.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NielsdaWheelz/tixmail/internal/artifact"
	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/core"
	"github.com/NielsdaWheelz/tixmail/internal/delivery"
	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/events"
	"github.com/NielsdaWheelz/tixmail/internal/store"
)

// TracerName is the instrumentation scope of the per-participant spans.
const TracerName = "tixmail/batch"

// Options narrow or change a run.
type Options struct {
	// Only restricts the run to the participant with this email.
	Only string
	// Limit stops after this many participants were attempted (0 = no limit).
	Limit int
	// Checkpoint persists the ledgers after every non-skipped participant.
	Checkpoint bool
	// DryRun leaves ledgers and snapshot untouched.
	DryRun bool
}

// Runner executes batch runs. All collaborators are injected.
type Runner struct {
	Event    config.Event
	Store    *store.Store
	Renderer artifact.Renderer
	Channel  delivery.Channel
	Composer *delivery.Composer
	Events   *events.Recorder
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Now      func() time.Time
}

func (r *Runner) defaults() {
	if r.Logger == nil {
		r.Logger = slog.New(slog.DiscardHandler)
	}
	if r.Tracer == nil {
		r.Tracer = otel.Tracer(TracerName)
	}
	if r.Now == nil {
		r.Now = time.Now
	}
}

// Run processes the roster once.
//
// Per-participant failures never abort the run; they are recorded in the
// failure ledger. Returns:
//   - (summary, nil) when every selected participant was reached
//   - (nil, error) for configuration, roster or ledger problems and for a
//     session that could not be opened; nothing is written in these cases
//   - (summary, E_SESSION_FAILED) when the session broke mid-run
//   - (summary, E_INTERRUPTED) when ctx was cancelled between participants
//   - (summary, E_PERSIST_FAILED) when the ledgers could not be written
//
// In the last three cases every outcome produced before the stop is
// persisted, so delivered tickets are never sent twice.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	r.defaults()
	start := r.Now()

	// Step 1: Load roster and ledgers
	roster, err := r.Store.LoadRoster()
	if err != nil {
		return nil, err
	}
	prev, err := r.Store.LoadLedgers()
	if err != nil {
		return nil, err
	}

	if opts.Only != "" && !rosterHas(roster, opts.Only) {
		return nil, errors.NewWithDetails(errors.EParticipantNotFound,
			"no roster entry with email "+opts.Only,
			map[string]string{"email": opts.Only, "roster": r.Event.Roster})
	}

	idx := prev.Index()
	runBase := core.RunBase(r.Event.BaseToken, prev.Success, prev.Failure)
	sum := &Summary{RunBase: runBase, DryRun: opts.DryRun, Total: len(roster)}
	if r.Events != nil {
		sum.RunID = r.Events.RunID
	}
	log := r.Logger.With("run_id", sum.RunID)

	// Step 2: Open the delivery session; nothing has been written yet
	sess, err := r.Channel.Open(ctx)
	if err != nil {
		r.emit(sum, events.BatchAborted, events.BatchAbortedData(string(errors.ESessionFailed), 0, err.Error()))
		log.Error("delivery session could not be opened", "error", err)
		return nil, errors.Wrap(errors.ESessionFailed, "delivery session could not be opened: "+err.Error(), err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("closing delivery session failed", "error", cerr)
		}
	}()

	r.emit(sum, events.BatchStart, events.BatchStartData(r.Event.Roster, len(roster), runBase, opts.DryRun))
	log.Info("batch started", "participants", len(roster), "run_base", runBase, "dry_run", opts.DryRun)

	// Step 3: Sweep the roster in order
	var (
		fatal     error
		attempted int
		tokenPos  int
		reached   int
	)
	seen := make(map[string]bool, len(roster))
	for i, p := range roster {
		if err := ctx.Err(); err != nil {
			fatal = errors.Wrap(errors.EInterrupted, "run interrupted; remaining participants left pending", err)
			break
		}
		if opts.Only != "" && p.Key() != core.EmailKey(opts.Only) {
			sum.NotSelected++
			reached = i + 1
			continue
		}
		if opts.Limit > 0 && attempted >= opts.Limit {
			break
		}
		reached = i + 1

		key := p.Key()
		if seen[key] || r.skip(idx, p) {
			o := core.Skipped(i, p)
			sum.add(o)
			log.Debug("participant skipped", "position", i, "email", p.Email)
			continue
		}
		seen[key] = true
		attempted++

		o, sessErr := r.process(ctx, sess, i, p, core.NextToken(runBase, tokenPos))
		if o.Token != nil {
			tokenPos++
		}
		sum.add(o)
		r.logOutcome(log, o)
		r.emit(sum, events.ParticipantOutcome, events.OutcomeData(o))

		if sessErr != nil {
			fatal = errors.Wrap(errors.ESessionFailed, "delivery session lost mid-run: "+sessErr.Error(), sessErr)
			break
		}
		if opts.Checkpoint && !opts.DryRun {
			if err := r.Store.PersistLedgers(r.merge(prev, sum.Outcomes)); err != nil {
				fatal = err
				break
			}
		}
	}
	sum.Pending = len(roster) - reached

	// Step 4: Persist merged ledgers, then the snapshot
	var snapErr error
	if !opts.DryRun {
		merged := r.merge(prev, sum.Outcomes)
		if err := r.Store.PersistLedgers(merged); err != nil {
			if fatal == nil {
				fatal = err
			}
			log.Error("persisting ledgers failed", "error", err)
		} else {
			sum.Persisted = true
			snapErr = r.Store.ExportSnapshot(store.BuildSnapshot(roster, merged, sum.Outcomes))
			if snapErr != nil {
				log.Warn("snapshot export failed", "error", snapErr)
			}
		}
	}

	// Step 5: Close the audit trail
	duration := r.Now().Sub(start).Milliseconds()
	if fatal != nil {
		r.emit(sum, events.BatchAborted, events.BatchAbortedData(string(errors.GetCode(fatal)), len(sum.Outcomes), fatal.Error()))
		log.Error("batch aborted", "error_code", errors.GetCode(fatal), "pending", sum.Pending)
		return sum, fatal
	}
	r.emit(sum, events.BatchEnd, events.BatchEndData(sum.Skipped, sum.Succeeded, sum.Failed, duration))
	log.Info("batch finished",
		"skipped", sum.Skipped,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"pending", sum.Pending,
		"duration_ms", duration,
	)
	if snapErr != nil {
		return sum, snapErr
	}
	return sum, nil
}

// skip reports whether p was already handled by an earlier run. With
// retry_failed (the default) only delivered participants are skipped, so
// earlier failures get another attempt.
func (r *Runner) skip(idx *store.Index, p core.Participant) bool {
	if r.Event.RetryFailed {
		return idx.Succeeded(p.Email)
	}
	return idx.AlreadyProcessed(p.Email)
}

// process runs one participant through validate, render and send. token is
// the next free token; it is only issued (carried by the outcome) when the
// email is valid. A session-level delivery error is returned as sessErr;
// the participant itself is then recorded as a delivery failure so it is
// retried, never silently dropped.
func (r *Runner) process(ctx context.Context, sess delivery.Session, pos int, p core.Participant, token int) (o core.Outcome, sessErr error) {
	ctx, span := r.Tracer.Start(ctx, "participant", trace.WithAttributes(attribute.Int("tixmail.position", pos)))
	defer func() {
		span.SetAttributes(attribute.String("tixmail.outcome", string(o.Kind)))
		if o.Token != nil {
			span.SetAttributes(attribute.Int("tixmail.token", *o.Token))
		}
		if o.Kind == core.OutcomeFailure {
			span.SetStatus(codes.Error, o.Reason)
			if o.Err != nil {
				span.RecordError(o.Err)
			}
		}
		span.End()
	}()

	if !core.ValidEmail(p.Email) {
		return core.Failure(pos, p, nil, core.ReasonInvalidEmail, fmt.Errorf("invalid email %q", p.Email)), nil
	}

	a, err := r.Renderer.Render(ctx, artifact.Ticket{Participant: p, Token: token, Event: r.Event.Info})
	if err != nil {
		return core.Failure(pos, p, &token, core.ReasonRenderFailure, err), nil
	}

	msg, err := r.Composer.Compose(p, token, a.Path)
	if err != nil {
		return core.Failure(pos, p, &token, core.ReasonDeliveryFailure, err), nil
	}
	if err := sess.Send(ctx, msg); err != nil {
		if delivery.IsSessionError(err) {
			sessErr = err
		}
		return core.Failure(pos, p, &token, core.ReasonDeliveryFailure, err), sessErr
	}
	return core.Success(pos, p, token, a.Path, a.Digest), nil
}

func (r *Runner) merge(prev store.Ledgers, outcomes []core.Outcome) store.Ledgers {
	return store.Merge(prev, outcomes, r.Event.Ledger.RetainSupersededFailures)
}

func (r *Runner) logOutcome(log *slog.Logger, o core.Outcome) {
	attrs := []any{"position", o.Position, "email", o.Participant.Email}
	if o.Token != nil {
		attrs = append(attrs, "token", *o.Token)
	}
	switch o.Kind {
	case core.OutcomeSuccess:
		log.Info("ticket delivered", append(attrs, "artifact", o.ArtifactPath)...)
	case core.OutcomeFailure:
		attrs = append(attrs, "reason", o.Reason)
		if o.Err != nil {
			attrs = append(attrs, "error", o.Err)
		}
		log.Warn("participant failed", attrs...)
	}
}

func (r *Runner) emit(sum *Summary, name string, data map[string]any) {
	if err := r.Events.Emit(name, data); err != nil {
		sum.EventAppendErrors = append(sum.EventAppendErrors, fmt.Sprintf("%s: %v", name, err))
	}
}

func rosterHas(roster []core.Participant, email string) bool {
	key := core.EmailKey(email)
	for _, p := range roster {
		if p.Key() == key {
			return true
		}
	}
	return false
}
