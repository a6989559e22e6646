package trial

// Result is the record handed to the host when a trial ends.
type Result struct {
	TotalTrials int     `json:"totalTrials" yaml:"totalTrials"`
	TotalHits   int     `json:"totalHits" yaml:"totalHits"`
	XLocTarget  float64 `json:"xLocTarget" yaml:"xLocTarget"`
	XLocBall    float64 `json:"xLocBall" yaml:"xLocBall"`
	YLocBall    float64 `json:"yLocBall" yaml:"yLocBall"`
}

// ResultFromState maps a game state reading onto the result schema.
func ResultFromState(s GameState) Result {
	return Result{
		TotalTrials: s.TotalTrials,
		TotalHits:   s.TotalHits,
		XLocTarget:  s.TargetLoc,
		XLocBall:    s.BallX,
		YLocBall:    s.BallY,
	}
}

// EndReason records which trigger ended a trial.
type EndReason string

const (
	ReasonCompleted EndReason = "completed" // shot threshold reached
	ReasonTimeout   EndReason = "timeout"   // trial duration elapsed
	ReasonAborted   EndReason = "aborted"   // ended from outside
)

// Sink receives the result of a finished trial.
type Sink interface {
	FinishTrial(Result)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Result)

// FinishTrial calls f.
func (f SinkFunc) FinishTrial(r Result) {
	f(r)
}
