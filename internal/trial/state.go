package trial

// GameState is a reading of the externally owned game state.
type GameState struct {
	TotalTrials int     // shots taken so far
	TotalHits   int     // shots that hit the target
	TargetLoc   float64 // target x position in pixels
	BallX       float64
	BallY       float64
}

// StateReader is a read-only handle on game state written by the stimulus.
// Snapshot reports ok == false while the state has not been populated yet.
type StateReader interface {
	Snapshot() (s GameState, ok bool)
}

// StateFunc adapts a function to StateReader.
type StateFunc func() (GameState, bool)

// Snapshot calls f.
func (f StateFunc) Snapshot() (GameState, bool) {
	return f()
}
