package slingshot

import "github.com/vovakirdan/slingshot-trial/internal/trial"

// Data is the game state store shared with the trial controller. It is
// written by the game on the loop goroutine and read by the controller on
// the same goroutine, so it carries no lock.
type Data struct {
	state     trial.GameState
	populated bool
}

// Snapshot returns the current counters and positions. ok is false until
// the game has been rendered.
func (d *Data) Snapshot() (trial.GameState, bool) {
	return d.state, d.populated
}

func (d *Data) init(targetLoc float64, ball Vec) {
	d.state = trial.GameState{
		TargetLoc: targetLoc,
		BallX:     ball.X,
		BallY:     ball.Y,
	}
	d.populated = true
}

func (d *Data) recordShot(end Vec, hit bool) {
	d.state.TotalTrials++
	if hit {
		d.state.TotalHits++
	}
	d.state.BallX = end.X
	d.state.BallY = end.Y
}
