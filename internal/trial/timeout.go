package trial

// startTimeout arms the trial deadline. Not armed when TrialDuration is
// unset.
func (c *Controller) startTimeout() {
	if c.cfg.TrialDuration <= 0 {
		return
	}
	c.timeout = c.timers.AfterFunc(c.cfg.TrialDuration, func() {
		c.terminate(ReasonTimeout)
	})
}
