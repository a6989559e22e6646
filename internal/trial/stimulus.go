package trial

import (
	"github.com/vovakirdan/slingshot-trial/internal/core"
	"github.com/vovakirdan/slingshot-trial/internal/host"
)

// PointerSource registers pointer listeners on the stimulus canvas.
type PointerSource interface {
	OnPointer(fn func(host.PointerEvent)) host.Handle
}

// groupPointer registers listeners on src and hands them to the trial's
// timer group, so they are released with the timers.
type groupPointer struct {
	src   PointerSource
	group *host.Group
}

func (p groupPointer) OnPointer(fn func(host.PointerEvent)) host.Handle {
	return p.group.Adopt(p.src.OnPointer(fn))
}

// Surface is what a stimulus gets to work with. Everything registered
// through Timers or Pointer is released when the trial ends.
type Surface struct {
	Canvas  *core.Canvas
	Timers  host.Scheduler
	Pointer PointerSource
}

// Stimulus draws the interactive game onto the surface and updates its game
// state as a side effect. Render is called once, before any trial process
// starts; a returned error fails the trial.
type Stimulus interface {
	Render(s *Surface, cfg Config) error
}

// StimulusFunc adapts a function to Stimulus.
type StimulusFunc func(s *Surface, cfg Config) error

// Render calls f.
func (f StimulusFunc) Render(s *Surface, cfg Config) error {
	return f(s, cfg)
}
