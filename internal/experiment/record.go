package experiment

import (
	"time"

	"github.com/vovakirdan/slingshot-trial/internal/trial"
)

// Record is one finished trial as seen by the host: the result the
// controller handed off plus where and when it happened.
type Record struct {
	SessionID   string
	TrialID     string
	Participant string
	Experiment  string
	Index       int // 1-based position in the experiment
	Stimulus    string
	Result      trial.Result
	Reason      trial.EndReason
	Duration    time.Duration
	StartedAt   time.Time
}

// Earnings returns the reward in cents the participant earned in the trial.
func (r Record) Earnings() int {
	return r.Result.TotalHits * trial.RewardPerHit
}

// RecordSaver persists finished trials.
// This allows the runner to save records without a direct storage dependency.
type RecordSaver interface {
	SaveRecord(rec Record) error
}

// Summary is the outcome of a whole experiment run.
type Summary struct {
	SessionID string
	Records   []Record
}

// Earnings returns the total reward over all trials.
func (s Summary) Earnings() int {
	total := 0
	for _, r := range s.Records {
		total += r.Earnings()
	}
	return total
}

// EventKind tells observers what happened.
type EventKind int

const (
	EventTrialStarted EventKind = iota
	EventTrialEnded
)

// Event is delivered to observers as trials start and end.
type Event struct {
	Kind   EventKind
	Index  int // 1-based
	Total  int
	Record Record // set for EventTrialEnded
}
