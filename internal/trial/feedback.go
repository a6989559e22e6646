package trial

import (
	"fmt"
	"time"

	"github.com/vovakirdan/slingshot-trial/internal/core"
)

// Feedback strip layout, in pixels relative to the strip.
const (
	feedbackLabel       = "Total Earnings:"
	feedbackBaseline    = 20
	feedbackLabelOffset = -100 // from the horizontal center
	feedbackValueOffset = 40
)

// startFeedback draws the earnings readout now and on every following
// animation frame until the trial ends.
func (c *Controller) startFeedback() {
	var write func(time.Time)
	write = func(time.Time) {
		if c.ended.Load() {
			return
		}
		s, ok := c.readState()
		drawFeedback(c.feedback, s, ok)
		c.feedbackFrame = c.timers.RequestFrame(write)
	}
	write(c.env.Scheduler.Now())
}

// Earnings returns the reward in cents for a state reading.
// An unpopulated state earns nothing.
func Earnings(s GameState, ok bool) int {
	if !ok {
		return 0
	}
	return s.TotalHits * RewardPerHit
}

// drawFeedback repaints the earnings strip.
func drawFeedback(dst *core.Canvas, s GameState, ok bool) {
	if dst == nil {
		return
	}
	w := float64(dst.Width())
	dst.ClearRect(core.NewRect(0, 0, w, float64(dst.Height())))

	center := w / 2
	dst.FillText(center+feedbackLabelOffset, feedbackBaseline, feedbackLabel, core.ColorDefault)
	dst.FillText(center+feedbackValueOffset, feedbackBaseline,
		fmt.Sprintf("%d cents", Earnings(s, ok)), core.ColorBrightGreen)
}
