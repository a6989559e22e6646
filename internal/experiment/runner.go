// Package experiment sequences trials: it builds a controller for every
// trial of an experiment, runs them one after another on the host loop and
// saves each result.
package experiment

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/slingshot-trial/internal/config"
	"github.com/vovakirdan/slingshot-trial/internal/host"
	"github.com/vovakirdan/slingshot-trial/internal/registry"
	"github.com/vovakirdan/slingshot-trial/internal/trial"
)

// AbortTimeout bounds how long Run waits for an aborted trial to hand off
// its result. It only matters when the loop has already stopped.
const AbortTimeout = time.Second

// Runner runs experiments on a scheduler and display it does not own.
type Runner struct {
	sched       host.Scheduler
	display     trial.Display
	saver       RecordSaver
	logger      *log.Logger
	participant string
	observe     func(Event)
}

// Option configures a Runner.
type Option func(*Runner)

// WithSaver persists every finished trial.
func WithSaver(s RecordSaver) Option {
	return func(r *Runner) { r.saver = s }
}

// WithLogger sets the logger for the runner and its controllers.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithParticipant tags records with a participant name.
func WithParticipant(name string) Option {
	return func(r *Runner) { r.participant = name }
}

// WithObserver receives trial start and end events. It is called from the
// goroutine running Run.
func WithObserver(fn func(Event)) Option {
	return func(r *Runner) { r.observe = fn }
}

// New creates a runner. sched must be driven by a running loop for Run to
// make progress.
func New(sched host.Scheduler, display trial.Display, opts ...Option) *Runner {
	r := &Runner{
		sched:   sched,
		display: display,
		logger:  log.New(io.Discard),
		observe: func(Event) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check verifies that every trial names a known stimulus and has
// well-formed values, without running anything.
func Check(exp config.Experiment) error {
	if len(exp.Trials) == 0 {
		return fmt.Errorf("experiment: %q has no trials", exp.Name)
	}
	for i, spec := range exp.Trials {
		if !registry.Exists(spec.Stimulus) {
			return fmt.Errorf("experiment: trial %d: unknown stimulus %q", i+1, spec.Stimulus)
		}
		if _, err := spec.TrialConfig(nil); err != nil {
			return fmt.Errorf("experiment: trial %d: %w", i+1, err)
		}
	}
	return nil
}

// Run executes the trials in order. A stimulus failure stops the
// experiment with its error. Cancelling ctx ends the current trial early;
// its record is still saved and Run returns ctx.Err().
func (r *Runner) Run(ctx context.Context, exp config.Experiment) (Summary, error) {
	summary := Summary{SessionID: uuid.NewString()}
	if err := Check(exp); err != nil {
		return summary, err
	}

	logger := r.logger.With("session", summary.SessionID)
	logger.Info("experiment started", "name", exp.Name, "trials", len(exp.Trials), "participant", r.participant)

	for i := range exp.Trials {
		rec, err := r.runTrial(ctx, logger, exp, i, summary.SessionID)
		if rec != nil {
			summary.Records = append(summary.Records, *rec)
			r.save(logger, *rec)
			r.observe(Event{Kind: EventTrialEnded, Index: i + 1, Total: len(exp.Trials), Record: *rec})
		}
		if err != nil {
			logger.Warn("experiment stopped", "trial", i+1, "error", err)
			return summary, err
		}
	}

	logger.Info("experiment finished", "earnings_cents", summary.Earnings())
	return summary, nil
}

// pending is a trial in flight.
type pending struct {
	ctrl    *trial.Controller
	results chan trial.Result
	rec     Record
}

func (r *Runner) runTrial(ctx context.Context, logger *log.Logger, exp config.Experiment, i int, sessionID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spec := exp.Trials[i]
	stim, err := registry.Create(spec.Stimulus)
	if err != nil {
		return nil, fmt.Errorf("experiment: trial %d: %w", i+1, err)
	}
	cfg, err := spec.TrialConfig(stim)
	if err != nil {
		return nil, fmt.Errorf("experiment: trial %d: %w", i+1, err)
	}
	if !cfg.HasTermination() {
		logger.Warn("trial has no termination condition, it ends only when aborted", "trial", i+1)
	}

	p := &pending{
		results: make(chan trial.Result, 1),
		rec: Record{
			SessionID:   sessionID,
			TrialID:     uuid.NewString(),
			Participant: r.participant,
			Experiment:  exp.Name,
			Index:       i + 1,
			Stimulus:    spec.Stimulus,
			StartedAt:   r.sched.Now(),
		},
	}
	p.ctrl = trial.New(cfg, stim, trial.Env{
		Scheduler: r.sched,
		Display:   r.display,
		Sink:      trial.SinkFunc(func(res trial.Result) { p.results <- res }),
	}, trial.WithLogger(logger.With("trial", i+1)))

	started := make(chan error, 1)
	r.sched.Post(func() { started <- p.ctrl.Start() })

	select {
	case err := <-started:
		if err != nil {
			return nil, fmt.Errorf("experiment: trial %d: %w", i+1, err)
		}
	case <-ctx.Done():
		return p.abort(), ctx.Err()
	}
	r.observe(Event{Kind: EventTrialStarted, Index: i + 1, Total: len(exp.Trials)})

	select {
	case res := <-p.results:
		return p.finish(res), nil
	case <-ctx.Done():
		return p.abort(), ctx.Err()
	}
}

// abort forces the trial to end and waits for its result. Nil means the
// loop never got to run the abort.
func (p *pending) abort() *Record {
	p.ctrl.Abort()
	select {
	case res := <-p.results:
		return p.finish(res)
	case <-time.After(AbortTimeout):
		return nil
	}
}

// finish completes the record. The controller's reason and timing are set
// before the result is handed off, so they are safe to read here.
func (p *pending) finish(res trial.Result) *Record {
	p.rec.Result = res
	p.rec.Reason = p.ctrl.Reason()
	p.rec.Duration = p.ctrl.Elapsed()
	return &p.rec
}

// save persists a record. Storage failures are logged and never stop the
// experiment.
func (r *Runner) save(logger *log.Logger, rec Record) {
	logger.Info("trial recorded",
		"trial", rec.Index,
		"reason", rec.Reason,
		"shots", rec.Result.TotalTrials,
		"hits", rec.Result.TotalHits,
	)
	if r.saver == nil {
		return
	}
	if err := r.saver.SaveRecord(rec); err != nil {
		logger.Error("failed to save trial", "trial", rec.Index, "error", err)
	}
}
