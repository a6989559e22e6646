// Package config provides YAML-based experiment configuration: the list of
// trials to run and the parameters of each one.
package config

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/slingshot-trial/internal/trial"
)

// ErrNoTerminationCondition marks a trial that sets neither total_shots nor
// trial_duration. Such a trial only ends when the participant quits.
var ErrNoTerminationCondition = errors.New("config: trial has neither total_shots nor trial_duration")

// Experiment is a sequence of trials.
type Experiment struct {
	Name   string      `yaml:"name"`
	Trials []TrialSpec `yaml:"trials"`
}

// TrialSpec is the YAML form of one trial. Position keys keep the mixed-case
// names (ball_xPos, target_yPos) used by existing slingshot trial tables.
type TrialSpec struct {
	Stimulus      string `yaml:"stimulus"`
	Prompt        string `yaml:"prompt"`
	TotalShots    int    `yaml:"total_shots"`
	TrialDuration int    `yaml:"trial_duration"` // milliseconds, 0 = none
	CanvasSize    []int  `yaml:"canvas_size"`    // [height, width] in pixels

	BallColor      string  `yaml:"ball_color"`
	BallXPos       float64 `yaml:"ball_xPos"`
	BallYPos       float64 `yaml:"ball_yPos"`
	BallSize       int     `yaml:"ball_size"`
	TargetColor    string  `yaml:"target_color"`
	TargetColorHit string  `yaml:"target_color_hit"`
	TargetXPos     float64 `yaml:"target_xPos"`
	TargetYPos     float64 `yaml:"target_yPos"`
	TargetSize     int     `yaml:"target_size"`
	Friction       float64 `yaml:"friction"`
	Tension        float64 `yaml:"tension"`

	PollInterval int    `yaml:"poll_interval"` // milliseconds
	Completion   string `yaml:"completion"`    // exact | at_least
}

// UnmarshalYAML decodes a trial on top of the declared defaults, so keys
// left out of the file keep their default values.
func (s *TrialSpec) UnmarshalYAML(value *yaml.Node) error {
	*s = DefaultTrialSpec()
	type plain TrialSpec
	return value.Decode((*plain)(s))
}

// HasTermination reports whether the trial can end on its own.
func (s TrialSpec) HasTermination() bool {
	return s.TotalShots > 0 || s.TrialDuration > 0
}

// TrialConfig converts the trial into a controller configuration using the
// given stimulus. Malformed values are reported as errors.
func (s TrialSpec) TrialConfig(stimulus trial.Stimulus) (trial.Config, error) {
	var cfg trial.Config

	if len(s.CanvasSize) != 2 {
		return cfg, fmt.Errorf("config: canvas_size must be [height, width], got %v", s.CanvasSize)
	}
	if s.CanvasSize[0] <= 0 || s.CanvasSize[1] <= 0 {
		return cfg, fmt.Errorf("config: canvas_size must be positive, got %v", s.CanvasSize)
	}
	if s.TotalShots < 0 {
		return cfg, fmt.Errorf("config: total_shots must not be negative, got %d", s.TotalShots)
	}
	if s.TrialDuration < 0 {
		return cfg, fmt.Errorf("config: trial_duration must not be negative, got %d", s.TrialDuration)
	}
	mode, err := trial.ParseCompletionMode(s.Completion)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	cfg = trial.DefaultConfig()
	cfg.Stimulus = stimulus
	cfg.Prompt = s.Prompt
	cfg.TotalShots = s.TotalShots
	cfg.TrialDuration = millis(s.TrialDuration)
	cfg.CanvasSize = trial.CanvasSize{Height: s.CanvasSize[0], Width: s.CanvasSize[1]}
	cfg.Params = trial.Params{
		BallColor:      s.BallColor,
		BallXPos:       s.BallXPos,
		BallYPos:       s.BallYPos,
		BallSize:       s.BallSize,
		TargetColor:    s.TargetColor,
		TargetColorHit: s.TargetColorHit,
		TargetXPos:     s.TargetXPos,
		TargetYPos:     s.TargetYPos,
		TargetSize:     s.TargetSize,
		Friction:       s.Friction,
		Tension:        s.Tension,
	}
	if s.PollInterval > 0 {
		cfg.PollInterval = millis(s.PollInterval)
	}
	cfg.Completion = mode
	return cfg, nil
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Validate reports every trial that has no termination condition. The
// returned error wraps ErrNoTerminationCondition once per such trial.
func (e Experiment) Validate() error {
	var errs []error
	for i, s := range e.Trials {
		if !s.HasTermination() {
			errs = append(errs, fmt.Errorf("trial %d: %w", i+1, ErrNoTerminationCondition))
		}
	}
	return errors.Join(errs...)
}
