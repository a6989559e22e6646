package trial

// startCompletionWatcher polls the shot counter until it satisfies the
// threshold. Not armed when TotalShots is unset.
func (c *Controller) startCompletionWatcher() {
	if c.cfg.TotalShots <= 0 {
		return
	}
	c.poll = c.timers.Every(c.cfg.PollInterval, func() {
		if c.ended.Load() {
			return
		}
		s, ok := c.readState()
		if !ok {
			return
		}
		if c.cfg.Completion.Reached(s.TotalTrials, c.cfg.TotalShots) {
			c.terminate(ReasonCompleted)
		}
	})
}
