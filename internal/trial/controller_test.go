package trial

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/slingshot-trial/internal/host"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeState is game state written by the test in place of a stimulus.
type fakeState struct {
	s         GameState
	populated bool
}

func (f *fakeState) Snapshot() (GameState, bool) {
	return f.s, f.populated
}

func (f *fakeState) set(trials, hits int) {
	f.populated = true
	f.s.TotalTrials = trials
	f.s.TotalHits = hits
}

type harness struct {
	loop    *host.Loop
	display *host.Display
	state   *fakeState
	results []Result
}

func newHarness() *harness {
	return &harness{
		loop:    host.NewManualLoop(60, epoch),
		display: host.NewDisplay(),
		state:   &fakeState{},
	}
}

func (h *harness) controller(cfg Config) *Controller {
	if cfg.Stimulus == nil {
		cfg.Stimulus = StimulusFunc(func(*Surface, Config) error { return nil })
	}
	return New(cfg, h.state, Env{
		Scheduler: h.loop,
		Display:   h.display,
		Sink:      SinkFunc(func(r Result) { h.results = append(h.results, r) }),
	})
}

// at schedules a state change directly on the loop, outside the trial.
func (h *harness) at(d time.Duration, trials, hits int) {
	h.loop.AfterFunc(d, func() { h.state.set(trials, hits) })
}

func mustStart(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
}

func isDone(c *Controller) bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}

func TestCompletionAtThreshold(t *testing.T) {
	h := newHarness()
	h.state.set(0, 0)
	h.at(300*time.Millisecond, 1, 1)
	h.at(500*time.Millisecond, 2, 1)
	h.at(900*time.Millisecond, 3, 2)

	cfg := DefaultConfig()
	cfg.TotalShots = 3
	c := h.controller(cfg)
	mustStart(t, c)

	h.loop.Advance(999 * time.Millisecond)
	if len(h.results) != 0 {
		t.Fatalf("trial ended before the poll that observes the threshold")
	}

	h.loop.Advance(5 * time.Second)
	if len(h.results) != 1 {
		t.Fatalf("result handed off %d times, expected 1", len(h.results))
	}
	if c.Reason() != ReasonCompleted {
		t.Errorf("Reason() = %q, expected %q", c.Reason(), ReasonCompleted)
	}
	if c.Elapsed() != time.Second {
		t.Errorf("Elapsed() = %v, expected 1s (first poll after the third shot)", c.Elapsed())
	}
	r := h.results[0]
	if r.TotalTrials != 3 || r.TotalHits != 2 {
		t.Errorf("result = %+v, expected 3 trials and 2 hits", r)
	}
	if !isDone(c) {
		t.Error("Done() should be closed after termination")
	}
}

func TestTimeoutWithoutShotThreshold(t *testing.T) {
	h := newHarness()
	h.state.set(0, 0)

	cfg := DefaultConfig()
	cfg.TrialDuration = 5 * time.Second
	c := h.controller(cfg)
	mustStart(t, c)

	h.loop.Advance(4999 * time.Millisecond)
	if len(h.results) != 0 {
		t.Fatal("trial ended before its duration elapsed")
	}

	h.loop.Advance(10 * time.Second)
	if len(h.results) != 1 {
		t.Fatalf("result handed off %d times, expected 1", len(h.results))
	}
	if c.Reason() != ReasonTimeout {
		t.Errorf("Reason() = %q, expected %q", c.Reason(), ReasonTimeout)
	}
	if c.Elapsed() != 5*time.Second {
		t.Errorf("Elapsed() = %v, expected 5s", c.Elapsed())
	}
	if h.results[0].TotalTrials != 0 {
		t.Errorf("TotalTrials = %d, expected 0", h.results[0].TotalTrials)
	}
}

func TestCompletionBeatsTimeout(t *testing.T) {
	h := newHarness()
	h.state.set(0, 0)
	h.at(950*time.Millisecond, 3, 3)

	cfg := DefaultConfig()
	cfg.TotalShots = 3
	cfg.TrialDuration = 5 * time.Second
	c := h.controller(cfg)
	mustStart(t, c)

	h.loop.Advance(10 * time.Second)
	if len(h.results) != 1 {
		t.Fatalf("result handed off %d times, expected 1", len(h.results))
	}
	if c.Reason() != ReasonCompleted {
		t.Errorf("Reason() = %q, expected %q", c.Reason(), ReasonCompleted)
	}
	if c.Elapsed() != time.Second {
		t.Errorf("Elapsed() = %v, expected 1s", c.Elapsed())
	}
	if h.loop.Pending() != 0 {
		t.Errorf("timeout still pending after completion: %d registrations", h.loop.Pending())
	}
}

func TestSameTickTriggersEndOnce(t *testing.T) {
	h := newHarness()
	h.state.set(0, 0)
	h.at(900*time.Millisecond, 3, 1)

	cfg := DefaultConfig()
	cfg.TotalShots = 3
	cfg.TrialDuration = time.Second // poll and timeout both due at 1s
	c := h.controller(cfg)
	mustStart(t, c)

	c.Abort() // a forced end racing the other two

	h.loop.Advance(time.Minute)
	if len(h.results) != 1 {
		t.Fatalf("result handed off %d times, expected 1", len(h.results))
	}
	if h.loop.Pending() != 0 {
		t.Errorf("%d registrations left after termination", h.loop.Pending())
	}
}

func TestSameTickPollAndTimeout(t *testing.T) {
	h := newHarness()
	h.state.set(0, 0)
	h.at(900*time.Millisecond, 3, 1)

	cfg := DefaultConfig()
	cfg.TotalShots = 3
	cfg.TrialDuration = time.Second
	c := h.controller(cfg)
	mustStart(t, c)

	h.loop.Advance(time.Minute)
	if len(h.results) != 1 {
		t.Fatalf("result handed off %d times, expected 1", len(h.results))
	}
	if c.Reason() != ReasonCompleted && c.Reason() != ReasonTimeout {
		t.Errorf("Reason() = %q, expected completed or timeout", c.Reason())
	}
	if c.Elapsed() != time.Second {
		t.Errorf("Elapsed() = %v, expected 1s", c.Elapsed())
	}
}

func TestThresholdRequiresExactEquality(t *testing.T) {
	h := newHarness()
	h.state.set(2, 0)
	h.at(300*time.Millisecond, 4, 0) // batched update skips 3

	cfg := DefaultConfig()
	cfg.TotalShots = 3
	c := h.controller(cfg)
	mustStart(t, c)

	h.loop.Advance(time.Minute)
	if len(h.results) != 0 {
		t.Errorf("exact mode ended the trial at counter %d", h.results[0].TotalTrials)
	}
	if isDone(c) {
		t.Error("trial should still be running")
	}

	c.Abort()
	h.loop.Advance(0)
	if len(h.results) != 1 || c.Reason() != ReasonAborted {
		t.Errorf("Abort should end the trial, results=%d reason=%q", len(h.results), c.Reason())
	}
}

func TestThresholdAtLeast(t *testing.T) {
	h := newHarness()
	h.state.set(2, 0)
	h.at(300*time.Millisecond, 4, 0)

	cfg := DefaultConfig()
	cfg.TotalShots = 3
	cfg.Completion = CompleteAtLeast
	c := h.controller(cfg)
	mustStart(t, c)

	h.loop.Advance(time.Minute)
	if len(h.results) != 1 {
		t.Fatalf("at_least mode handed off %d results, expected 1", len(h.results))
	}
	if c.Elapsed() != 400*time.Millisecond {
		t.Errorf("Elapsed() = %v, expected 400ms", c.Elapsed())
	}
}

func TestCancellationIsComplete(t *testing.T) {
	h := newHarness()
	h.state.set(0, 0)

	stimulusTicks := 0
	listenerCalls := 0
	cfg := DefaultConfig()
	cfg.TotalShots = 1
	cfg.TrialDuration = 10 * time.Second
	cfg.Stimulus = StimulusFunc(func(s *Surface, _ Config) error {
		s.Timers.Every(16*time.Millisecond, func() { stimulusTicks++ })
		s.Timers.AfterFunc(time.Hour, func() { t.Error("stimulus timeout leaked") })
		s.Pointer.OnPointer(func(host.PointerEvent) { listenerCalls++ })
		return nil
	})
	c := h.controller(cfg)
	mustStart(t, c)
	h.at(450*time.Millisecond, 1, 0)

	h.loop.Advance(600 * time.Millisecond)
	if !isDone(c) {
		t.Fatal("trial should have completed at the 600ms poll")
	}
	ticksAtEnd := stimulusTicks

	if h.loop.Pending() != 0 {
		t.Errorf("%d registrations still pending after termination", h.loop.Pending())
	}
	if h.display.Mounted() {
		t.Error("display should be cleared on termination")
	}
	if h.display.Listeners() != 0 {
		t.Errorf("%d pointer listeners left after termination", h.display.Listeners())
	}

	h.display.Dispatch(host.PointerEvent{Kind: host.PointerPress})
	h.loop.Advance(2 * time.Hour)
	if stimulusTicks != ticksAtEnd {
		t.Errorf("stimulus timer ran %d more times after termination", stimulusTicks-ticksAtEnd)
	}
	if listenerCalls != 0 {
		t.Errorf("pointer listener called %d times after termination", listenerCalls)
	}
	if len(h.results) != 1 {
		t.Errorf("result handed off %d times, expected 1", len(h.results))
	}
}

func TestStimulusRunsOnceBeforeProcesses(t *testing.T) {
	h := newHarness()

	calls := 0
	cfg := DefaultConfig()
	cfg.TotalShots = 2
	cfg.TrialDuration = time.Second
	cfg.CanvasSize = CanvasSize{Height: 300, Width: 400}
	cfg.Params.BallColor = "orange"
	cfg.Stimulus = StimulusFunc(func(s *Surface, got Config) error {
		calls++
		if h.loop.Pending() != 0 {
			t.Errorf("%d processes armed before the stimulus ran", h.loop.Pending())
		}
		if s.Canvas.Width() != 400 || s.Canvas.Height() != 300 {
			t.Errorf("canvas = %dx%d, expected 400x300", s.Canvas.Width(), s.Canvas.Height())
		}
		if got.Params.BallColor != "orange" {
			t.Errorf("params not forwarded, BallColor = %q", got.Params.BallColor)
		}
		return nil
	})
	c := h.controller(cfg)
	mustStart(t, c)
	h.loop.Advance(2 * time.Second)

	if calls != 1 {
		t.Errorf("stimulus rendered %d times, expected 1", calls)
	}
}

func TestStimulusFailureIsFatal(t *testing.T) {
	h := newHarness()

	boom := errors.New("boom")
	cfg := DefaultConfig()
	cfg.TotalShots = 1
	cfg.TrialDuration = time.Second
	cfg.Stimulus = StimulusFunc(func(s *Surface, _ Config) error {
		s.Timers.Every(10*time.Millisecond, func() {})
		s.Pointer.OnPointer(func(host.PointerEvent) {})
		return boom
	})
	c := h.controller(cfg)

	err := c.Start()
	if !errors.Is(err, boom) {
		t.Fatalf("Start() = %v, expected to wrap %v", err, boom)
	}
	if h.loop.Pending() != 0 {
		t.Errorf("%d registrations armed after a stimulus failure", h.loop.Pending())
	}
	if h.display.Listeners() != 0 {
		t.Errorf("%d pointer listeners left after a stimulus failure", h.display.Listeners())
	}

	h.state.set(1, 1)
	c.Abort()
	h.loop.Advance(time.Minute)
	if len(h.results) != 0 {
		t.Errorf("failed trial handed off %d results", len(h.results))
	}
	if isDone(c) {
		t.Error("Done() should stay open for a failed trial")
	}
}

func TestStartErrors(t *testing.T) {
	h := newHarness()

	c := New(DefaultConfig(), h.state, Env{Scheduler: h.loop, Display: h.display, Sink: SinkFunc(func(Result) {})})
	if err := c.Start(); !errors.Is(err, ErrNoStimulus) {
		t.Errorf("Start() without stimulus = %v, expected ErrNoStimulus", err)
	}

	c2 := h.controller(DefaultConfig())
	mustStart(t, c2)
	if err := c2.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, expected ErrAlreadyStarted", err)
	}

	c3 := h.controller(DefaultConfig())
	c3.Abort()
	h.loop.Advance(0)
	if err := c3.Start(); !errors.Is(err, ErrEnded) {
		t.Errorf("Start() after Abort = %v, expected ErrEnded", err)
	}
}

func TestResultFromLatestSnapshot(t *testing.T) {
	h := newHarness()
	h.state.populated = true
	h.state.s = GameState{TotalTrials: 4, TotalHits: 2, TargetLoc: 400, BallX: 123.5, BallY: 77}

	cfg := DefaultConfig()
	cfg.TrialDuration = 100 * time.Millisecond
	c := h.controller(cfg)
	mustStart(t, c)
	h.loop.AfterFunc(50*time.Millisecond, func() { h.state.s.BallX = 200 })

	h.loop.Advance(time.Second)
	expected := Result{TotalTrials: 4, TotalHits: 2, XLocTarget: 400, XLocBall: 200, YLocBall: 77}
	if len(h.results) != 1 || h.results[0] != expected {
		t.Errorf("results = %+v, expected [%+v]", h.results, expected)
	}
	if c.Result() != expected {
		t.Errorf("Result() = %+v, expected %+v", c.Result(), expected)
	}
}

func TestMissingStateDegradesToZero(t *testing.T) {
	loop := host.NewManualLoop(60, epoch)
	var got []Result

	cfg := DefaultConfig()
	cfg.Stimulus = StimulusFunc(func(*Surface, Config) error { return nil })
	cfg.TotalShots = 3
	cfg.TrialDuration = 300 * time.Millisecond
	c := New(cfg, nil, Env{
		Scheduler: loop,
		Display:   host.NewDisplay(),
		Sink:      SinkFunc(func(r Result) { got = append(got, r) }),
	})
	mustStart(t, c)
	loop.Advance(time.Second)

	if len(got) != 1 || got[0] != (Result{}) {
		t.Errorf("results = %+v, expected one zero result", got)
	}
}

func TestConfigAppliesDefaults(t *testing.T) {
	h := newHarness()
	c := h.controller(Config{TotalShots: 3})

	cfg := c.Config()
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, expected %v", cfg.PollInterval, DefaultPollInterval)
	}
	if cfg.CanvasSize != (CanvasSize{Height: DefaultCanvasHeight, Width: DefaultCanvasWidth}) {
		t.Errorf("CanvasSize = %+v, expected the default size", cfg.CanvasSize)
	}
	if cfg.FeedbackHeight != DefaultFeedbackHeight {
		t.Errorf("FeedbackHeight = %d, expected %d", cfg.FeedbackHeight, DefaultFeedbackHeight)
	}

	mustStart(t, c)
	if w := h.display.Stimulus().Width(); w != cfg.CanvasSize.Width {
		t.Errorf("mounted canvas width = %d, expected %d", w, cfg.CanvasSize.Width)
	}
}

func TestFeedbackDefaultsToZero(t *testing.T) {
	h := newHarness()
	c := h.controller(DefaultConfig())
	mustStart(t, c)

	row := h.display.Feedback().Screen().Row(1)
	if !strings.Contains(row, "Total Earnings:") {
		t.Errorf("feedback row = %q, expected the earnings label", row)
	}
	if !strings.Contains(row, "0 cents") {
		t.Errorf("feedback row = %q, expected 0 cents before state exists", row)
	}
}

func TestFeedbackFollowsHits(t *testing.T) {
	h := newHarness()
	c := h.controller(DefaultConfig())
	mustStart(t, c)

	h.state.set(3, 2)
	h.loop.Advance(20 * time.Millisecond)

	row := h.display.Feedback().Screen().Row(1)
	if !strings.Contains(row, "10 cents") {
		t.Errorf("feedback row = %q, expected 10 cents for 2 hits", row)
	}

	h.state.set(4, 3)
	h.loop.Advance(20 * time.Millisecond)
	row = h.display.Feedback().Screen().Row(1)
	if !strings.Contains(row, "15 cents") || strings.Contains(row, "10 cents") {
		t.Errorf("feedback row = %q, expected a clean redraw with 15 cents", row)
	}
}

func TestNoAutonomousEndWithoutConditions(t *testing.T) {
	h := newHarness()
	h.state.set(10, 10)

	cfg := DefaultConfig()
	if cfg.HasTermination() {
		t.Fatal("default config should have no termination condition")
	}
	c := h.controller(cfg)
	mustStart(t, c)

	h.loop.Advance(time.Hour)
	if len(h.results) != 0 {
		t.Error("trial without conditions should only end when aborted")
	}
	c.Abort()
	h.loop.Advance(0)
	if len(h.results) != 1 {
		t.Errorf("Abort handed off %d results, expected 1", len(h.results))
	}
}
