// Package slingshot is the interactive stimulus of the slingshot trial: the
// participant pulls a ball back on an elastic band and lets go to hit a
// target. Every shot and hit is counted in the shared Data store.
package slingshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/slingshot-trial/internal/core"
	"github.com/vovakirdan/slingshot-trial/internal/host"
	"github.com/vovakirdan/slingshot-trial/internal/registry"
	"github.com/vovakirdan/slingshot-trial/internal/trial"
)

// ID is the registry name of the game.
const ID = "slingshot"

// ResetDelay is how long a finished shot stays on screen before the ball
// returns to the anchor.
const ResetDelay = 500 * time.Millisecond

var (
	ErrCanvasSize = errors.New("slingshot: canvas size must be positive")
	ErrBallSize   = errors.New("slingshot: ball size must be positive")
	ErrTargetSize = errors.New("slingshot: target size must be positive")
)

func init() {
	registry.Register(ID, func() registry.Stimulus { return New() })
}

// Game implements the slingshot stimulus. One instance serves one trial.
type Game struct {
	data Data

	body  Body
	ball  Ball
	phase Phase
	slow  int // consecutive slow frames
	hit   bool
	last  ShotEnd

	canvas *core.Canvas
	timers host.Scheduler

	ballColor   core.Color
	targetColor core.Color
	hitColor    core.Color
}

// New creates a game. Its Data stays unpopulated until Render runs.
func New() *Game {
	return &Game{phase: PhaseReady}
}

// ID returns the registry name.
func (g *Game) ID() string { return ID }

// Title returns the display name.
func (g *Game) Title() string { return "Slingshot" }

// Snapshot exposes the game state to the trial controller.
func (g *Game) Snapshot() (trial.GameState, bool) {
	return g.data.Snapshot()
}

// Phase returns the current shot phase.
func (g *Game) Phase() Phase { return g.phase }

// Ball returns the ball.
func (g *Game) Ball() Ball { return g.ball }

// Anchor returns the rest position of the ball.
func (g *Game) Anchor() Vec { return g.body.Anchor }

// Target returns the target square.
func (g *Game) Target() core.Rect { return g.body.Target }

// LastShot returns how the most recent shot ended.
func (g *Game) LastShot() ShotEnd { return g.last }

// Render sets the scene up, populates the game state and starts the
// animation. Everything it schedules goes through s.Timers and s.Pointer,
// so it stops with the trial.
func (g *Game) Render(s *trial.Surface, cfg trial.Config) error {
	p := cfg.Params
	switch {
	case s.Canvas == nil || s.Canvas.Width() <= 0 || s.Canvas.Height() <= 0:
		return ErrCanvasSize
	case p.BallSize <= 0:
		return fmt.Errorf("%w: got %d", ErrBallSize, p.BallSize)
	case p.TargetSize <= 0:
		return fmt.Errorf("%w: got %d", ErrTargetSize, p.TargetSize)
	}

	w, h := float64(s.Canvas.Width()), float64(s.Canvas.Height())
	size := float64(p.TargetSize)
	g.body = Body{
		Anchor:   core.V(p.BallXPos*w, p.BallYPos*h),
		Target:   core.NewRect(p.TargetXPos*w-size/2, p.TargetYPos*h-size/2, size, size),
		Width:    w,
		Height:   h,
		Tension:  p.Tension,
		Friction: core.ClampF(p.Friction, 0, 1),
	}
	g.ball = Ball{Pos: g.body.Anchor, Radius: float64(p.BallSize)}
	g.phase = PhaseReady
	g.canvas = s.Canvas
	g.timers = s.Timers
	g.ballColor = color(p.BallColor, core.ColorBlue)
	g.targetColor = color(p.TargetColor, core.ColorRed)
	g.hitColor = color(p.TargetColorHit, core.ColorGreen)

	g.data.init(g.body.Target.X, g.ball.Pos)

	s.Pointer.OnPointer(g.handlePointer)
	g.draw()
	g.timers.RequestFrame(g.frame)
	return nil
}

func color(name string, fallback core.Color) core.Color {
	if c, ok := core.ParseColor(name); ok && c != core.ColorDefault {
		return c
	}
	return fallback
}

func (g *Game) frame(time.Time) {
	g.Step()
	g.draw()
	g.timers.RequestFrame(g.frame)
}

// Step advances the simulation by one animation frame.
func (g *Game) Step() {
	switch g.phase {
	case PhaseSpring:
		if g.body.spring(&g.ball) {
			g.phase = PhaseFlying
			g.slow = 0
			return
		}
		if g.stalled() {
			g.endShot(ShotRest)
		}
	case PhaseFlying:
		if end := g.body.fly(&g.ball, &g.slow); end != ShotNone {
			g.endShot(end)
		}
	}
}

// stalled catches a band with no tension, which never reaches the anchor.
func (g *Game) stalled() bool {
	if g.ball.Vel.Len() >= RestSpeed {
		g.slow = 0
		return false
	}
	g.slow++
	return g.slow >= RestTicks
}

func (g *Game) handlePointer(ev host.PointerEvent) {
	switch ev.Kind {
	case host.PointerPress:
		if g.phase == PhaseReady && ev.Pos.Sub(g.ball.Pos).Len() <= g.grabRadius() {
			g.phase = PhaseDragging
			g.ball.Pos = g.body.pull(ev.Pos)
		}
	case host.PointerMove:
		if g.phase == PhaseDragging {
			g.ball.Pos = g.body.pull(ev.Pos)
		}
	case host.PointerRelease:
		if g.phase == PhaseDragging {
			g.release()
		}
	}
}

// grabRadius is generous since a terminal cell is 8x16 pixels.
func (g *Game) grabRadius() float64 {
	return max(3*g.ball.Radius, 2*core.CellHeightPx)
}

func (g *Game) release() {
	if g.ball.Pos.Sub(g.body.Anchor).Len() < MinPull {
		g.ball.Pos = g.body.Anchor
		g.phase = PhaseReady
		return
	}
	g.body.Release = g.ball.Pos
	g.ball.Vel = Vec{}
	g.slow = 0
	g.phase = PhaseSpring
}

func (g *Game) endShot(end ShotEnd) {
	g.hit = end == ShotHit
	g.last = end
	g.phase = PhaseResetting
	g.ball.Vel = Vec{}
	g.data.recordShot(g.ball.Pos, g.hit)
	g.timers.AfterFunc(ResetDelay, g.respawn)
}

func (g *Game) respawn() {
	g.ball = Ball{Pos: g.body.Anchor, Radius: g.ball.Radius}
	g.hit = false
	g.slow = 0
	g.phase = PhaseReady
}
