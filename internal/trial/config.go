// Package trial implements the slingshot trial lifecycle: it mounts a
// stimulus, keeps an earnings readout current, watches the shot counter and
// an optional deadline, and ends the trial exactly once with a result.
package trial

import (
	"fmt"
	"strings"
	"time"
)

// Declared defaults for absent configuration fields.
const (
	DefaultCanvasHeight   = 500
	DefaultCanvasWidth    = 500
	DefaultFeedbackHeight = 40
	DefaultPollInterval   = 200 * time.Millisecond

	// RewardPerHit is the earnings, in cents, shown per target hit.
	RewardPerHit = 5
)

// CanvasSize is the stimulus canvas size in pixels.
type CanvasSize struct {
	Height int
	Width  int
}

// CompletionMode selects how the shot counter is compared to TotalShots.
type CompletionMode int

const (
	// CompleteExact ends the trial only when the counter equals TotalShots.
	// A counter that skips past the threshold never ends the trial.
	CompleteExact CompletionMode = iota

	// CompleteAtLeast ends the trial once the counter reaches TotalShots or
	// more.
	CompleteAtLeast
)

// String returns the configuration name of the mode.
func (m CompletionMode) String() string {
	switch m {
	case CompleteExact:
		return "exact"
	case CompleteAtLeast:
		return "at_least"
	default:
		return "unknown"
	}
}

// ParseCompletionMode parses "exact" or "at_least". Empty means exact.
func ParseCompletionMode(s string) (CompletionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return CompleteExact, nil
	case "at_least", "at-least", "gte":
		return CompleteAtLeast, nil
	default:
		return CompleteExact, fmt.Errorf("trial: unknown completion mode %q", s)
	}
}

// Reached reports whether shots satisfies the threshold under this mode.
func (m CompletionMode) Reached(shots, threshold int) bool {
	if m == CompleteAtLeast {
		return shots >= threshold
	}
	return shots == threshold
}

// Params carries the visual and physics tuning of the stimulus. The
// controller forwards it untouched.
type Params struct {
	BallColor      string
	BallXPos       float64 // fraction of canvas width from the left
	BallYPos       float64 // fraction of canvas height from the top
	BallSize       int     // radius in pixels
	TargetColor    string
	TargetColorHit string
	TargetXPos     float64
	TargetYPos     float64
	TargetSize     int // side length in pixels
	Friction       float64
	Tension        float64
}

// DefaultParams returns the declared tuning defaults.
func DefaultParams() Params {
	return Params{
		BallColor:      "blue",
		BallXPos:       0.15,
		BallYPos:       0.5,
		BallSize:       10,
		TargetColor:    "red",
		TargetColorHit: "green",
		TargetXPos:     0.8,
		TargetYPos:     0.2,
		TargetSize:     20,
		Friction:       0.02,
		Tension:        0.03,
	}
}

// Config is the immutable configuration of one trial.
type Config struct {
	// Stimulus draws the game and mutates its state. Required.
	Stimulus Stimulus

	// Prompt is shown below the canvas when non-empty.
	Prompt string

	// TotalShots ends the trial when the shot counter reaches it.
	// Zero disables count-based termination.
	TotalShots int

	// TrialDuration ends the trial after this long. Zero disables it.
	TrialDuration time.Duration

	CanvasSize CanvasSize
	Params     Params

	// PollInterval is how often the shot counter is checked.
	PollInterval time.Duration

	// Completion selects the counter comparison.
	Completion CompletionMode

	// FeedbackHeight is the earnings strip height in pixels.
	FeedbackHeight int
}

// DefaultConfig returns a configuration with every declared default set and
// no stimulus.
func DefaultConfig() Config {
	return Config{
		CanvasSize:     CanvasSize{Height: DefaultCanvasHeight, Width: DefaultCanvasWidth},
		Params:         DefaultParams(),
		PollInterval:   DefaultPollInterval,
		Completion:     CompleteExact,
		FeedbackHeight: DefaultFeedbackHeight,
	}
}

// HasTermination reports whether the trial can end on its own.
func (c Config) HasTermination() bool {
	return c.TotalShots > 0 || c.TrialDuration > 0
}

// withDefaults fills zero-valued sizing and timing fields.
func (c Config) withDefaults() Config {
	if c.CanvasSize.Height <= 0 {
		c.CanvasSize.Height = DefaultCanvasHeight
	}
	if c.CanvasSize.Width <= 0 {
		c.CanvasSize.Width = DefaultCanvasWidth
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.FeedbackHeight <= 0 {
		c.FeedbackHeight = DefaultFeedbackHeight
	}
	return c
}
