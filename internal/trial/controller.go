package trial

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/slingshot-trial/internal/core"
	"github.com/vovakirdan/slingshot-trial/internal/host"
)

var (
	// ErrNoStimulus is returned by Start when the config has no stimulus.
	ErrNoStimulus = errors.New("trial: no stimulus configured")

	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("trial: already started")

	// ErrEnded is returned by Start when the trial was ended before it began.
	ErrEnded = errors.New("trial: already ended")
)

// Display is the host container the trial mounts its canvases into.
type Display interface {
	PointerSource
	Mount(feedbackHeight, height, width int, prompt string) (feedback, stimulus *core.Canvas)
	Clear()
}

// Env bundles the host collaborators of a controller.
type Env struct {
	Scheduler host.Scheduler
	Display   Display
	Sink      Sink
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller runs a single trial. Start, the trial processes and the
// termination all run on the scheduler's goroutine; Abort may be called from
// anywhere.
type Controller struct {
	cfg    Config
	state  StateReader
	env    Env
	timers *host.Group
	logger *log.Logger

	feedback      *core.Canvas
	feedbackFrame host.Handle
	poll          host.Handle
	timeout       host.Handle

	started   bool
	ended     atomic.Bool
	reason    EndReason
	result    Result
	startedAt time.Time
	endedAt   time.Time
	done      chan struct{}
}

// New creates a controller. state is a read-only handle on the game state
// the stimulus writes; it may be nil or unpopulated until the stimulus runs.
func New(cfg Config, state StateReader, env Env, opts ...Option) *Controller {
	c := &Controller{
		cfg:    cfg.withDefaults(),
		state:  state,
		env:    env,
		timers: host.NewGroup(env.Scheduler),
		logger: log.New(io.Discard),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration, defaults applied.
func (c *Controller) Config() Config {
	return c.cfg
}

// Start mounts the canvases, renders the stimulus once and arms the
// feedback loop, the completion watcher and the timeout. A stimulus error
// is returned as is (wrapped) and nothing is armed.
func (c *Controller) Start() error {
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true
	if c.ended.Load() {
		return ErrEnded
	}
	if c.cfg.Stimulus == nil {
		return ErrNoStimulus
	}

	c.startedAt = c.env.Scheduler.Now()
	feedback, canvas := c.env.Display.Mount(
		c.cfg.FeedbackHeight,
		c.cfg.CanvasSize.Height,
		c.cfg.CanvasSize.Width,
		c.cfg.Prompt,
	)
	c.feedback = feedback

	surface := &Surface{
		Canvas:  canvas,
		Timers:  c.timers,
		Pointer: groupPointer{src: c.env.Display, group: c.timers},
	}
	if err := c.cfg.Stimulus.Render(surface, c.cfg); err != nil {
		// Nothing will ever hand off a result for this trial.
		c.ended.Store(true)
		c.timers.StopAll()
		c.logger.Error("stimulus failed", "error", err)
		return fmt.Errorf("trial: stimulus: %w", err)
	}

	c.startFeedback()
	c.startCompletionWatcher()
	c.startTimeout()

	c.logger.Debug("trial started",
		"total_shots", c.cfg.TotalShots,
		"trial_duration", c.cfg.TrialDuration,
		"completion", c.cfg.Completion,
	)
	return nil
}

// Abort ends the trial from outside, e.g. when the participant quits.
// Safe to call from any goroutine and any number of times.
func (c *Controller) Abort() {
	c.env.Scheduler.Post(func() {
		c.terminate(ReasonAborted)
	})
}

// Done is closed once the result has been handed to the sink.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Reason returns what ended the trial. Valid after Done is closed.
func (c *Controller) Reason() EndReason {
	return c.reason
}

// Result returns the handed-off result. Valid after Done is closed.
func (c *Controller) Result() Result {
	return c.result
}

// Elapsed returns the time between Start and termination. Valid after Done
// is closed.
func (c *Controller) Elapsed() time.Duration {
	if c.startedAt.IsZero() {
		return 0
	}
	return c.endedAt.Sub(c.startedAt)
}

// readState reads the game state, treating a missing handle as unpopulated.
func (c *Controller) readState() (GameState, bool) {
	if c.state == nil {
		return GameState{}, false
	}
	return c.state.Snapshot()
}

// terminate is the single convergence point of every trigger. Only the
// first call has any effect.
func (c *Controller) terminate(reason EndReason) {
	if !c.ended.CompareAndSwap(false, true) {
		return
	}

	stop(c.poll)
	stop(c.timeout)
	stop(c.feedbackFrame)
	if n := c.timers.StopAll(); n > 0 {
		c.logger.Debug("released stimulus registrations", "count", n)
	}

	s, ok := c.readState()
	if !ok {
		s = GameState{}
	}

	c.reason = reason
	c.result = ResultFromState(s)
	c.endedAt = c.env.Scheduler.Now()

	c.env.Display.Clear()
	c.env.Sink.FinishTrial(c.result)
	close(c.done)

	c.logger.Info("trial ended",
		"reason", reason,
		"elapsed", c.Elapsed(),
		"total_trials", c.result.TotalTrials,
		"total_hits", c.result.TotalHits,
	)
}

func stop(h host.Handle) {
	if h != nil {
		h.Stop()
	}
}
