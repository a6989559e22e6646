package config

import (
	_ "embed"

	"github.com/vovakirdan/slingshot-trial/internal/trial"
)

//go:embed defaults/experiment.yaml
var defaultExperimentYAML []byte

// DefaultYAML returns the embedded default experiment file.
func DefaultYAML() []byte {
	return defaultExperimentYAML
}

// DefaultStimulus is the stimulus used when a trial names none.
const DefaultStimulus = "slingshot"

// DefaultTrialSpec returns a trial with every declared default set and no
// termination condition.
func DefaultTrialSpec() TrialSpec {
	p := trial.DefaultParams()
	return TrialSpec{
		Stimulus:       DefaultStimulus,
		CanvasSize:     []int{trial.DefaultCanvasHeight, trial.DefaultCanvasWidth},
		BallColor:      p.BallColor,
		BallXPos:       p.BallXPos,
		BallYPos:       p.BallYPos,
		BallSize:       p.BallSize,
		TargetColor:    p.TargetColor,
		TargetColorHit: p.TargetColorHit,
		TargetXPos:     p.TargetXPos,
		TargetYPos:     p.TargetYPos,
		TargetSize:     p.TargetSize,
		Friction:       p.Friction,
		Tension:        p.Tension,
		PollInterval:   int(trial.DefaultPollInterval.Milliseconds()),
		Completion:     trial.CompleteExact.String(),
	}
}

// DefaultExperiment is the hard-coded fallback when no file can be read.
func DefaultExperiment() Experiment {
	shots := DefaultTrialSpec()
	shots.Prompt = "Drag the ball back and release it to hit the red square."
	shots.TotalShots = 10
	shots.TrialDuration = 120000

	timed := DefaultTrialSpec()
	timed.Prompt = "Score as many hits as you can in 60 seconds."
	timed.TrialDuration = 60000

	return Experiment{
		Name:   "slingshot",
		Trials: []TrialSpec{shots, timed},
	}
}
