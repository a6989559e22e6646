package slingshot

import "github.com/vovakirdan/slingshot-trial/internal/core"

// Vec is a position or velocity in canvas pixels.
type Vec = core.Vec

// Physics constants, per animation frame.
const (
	Gravity   = 0.25 // px/frame^2
	MaxPull   = 100  // px a ball can be pulled away from the anchor
	MinPull   = 5    // shorter pulls are treated as a cancelled shot
	RestSpeed = 0.05 // px/frame
	RestTicks = 30   // frames below RestSpeed before the ball counts as stopped
)

// Phase is the shot state machine.
type Phase string

const (
	PhaseReady     Phase = "ready"     // ball at the anchor
	PhaseDragging  Phase = "dragging"  // pointer holds the ball
	PhaseSpring    Phase = "spring"    // released, band pulls the ball back
	PhaseFlying    Phase = "flying"    // detached, gravity and drag only
	PhaseResetting Phase = "resetting" // shot over, waiting to respawn
)

// ShotEnd describes why a shot finished.
type ShotEnd int

const (
	ShotNone ShotEnd = iota
	ShotHit
	ShotOut
	ShotRest
)

func (e ShotEnd) String() string {
	switch e {
	case ShotHit:
		return "hit"
	case ShotOut:
		return "out"
	case ShotRest:
		return "rest"
	default:
		return "none"
	}
}

// Ball is the projectile.
type Ball struct {
	Pos    Vec
	Vel    Vec
	Radius float64
}

// Body holds the physical setup of one round.
type Body struct {
	Anchor   Vec
	Release  Vec // where the ball was let go
	Target   core.Rect
	Width    float64
	Height   float64
	Tension  float64
	Friction float64
}

// pull clamps a pointer position to the band's reach.
func (b *Body) pull(p Vec) Vec {
	return b.Anchor.Add(p.Sub(b.Anchor).Limit(MaxPull))
}

// spring advances a ball attached to the band. It reports true once the
// ball has passed the anchor and detaches.
func (b *Body) spring(ball *Ball) bool {
	toAnchor := b.Anchor.Sub(ball.Pos)
	ball.Vel = ball.Vel.Add(toAnchor.Scale(b.Tension)).Scale(1 - b.Friction)
	ball.Pos = ball.Pos.Add(ball.Vel)

	// Past the anchor once the displacement points away from the release side.
	return ball.Pos.Sub(b.Anchor).Dot(b.Release.Sub(b.Anchor)) <= 0
}

// fly advances a free ball by one frame and reports how the shot ended,
// or ShotNone while it is still in flight.
func (b *Body) fly(ball *Ball, slowTicks *int) ShotEnd {
	ball.Vel.Y += Gravity
	ball.Vel = ball.Vel.Scale(1 - b.Friction)
	ball.Pos = ball.Pos.Add(ball.Vel)

	if b.Target.IntersectsCircle(ball.Pos, ball.Radius) {
		return ShotHit
	}
	if b.out(ball) {
		return ShotOut
	}

	if ball.Vel.Len() < RestSpeed {
		*slowTicks++
		if *slowTicks >= RestTicks {
			return ShotRest
		}
	} else {
		*slowTicks = 0
	}
	return ShotNone
}

// out reports whether the ball left the canvas sideways or through the
// bottom. Leaving through the top is allowed since gravity brings it back.
func (b *Body) out(ball *Ball) bool {
	r := ball.Radius
	return ball.Pos.X < -r || ball.Pos.X > b.Width+r || ball.Pos.Y > b.Height+r
}
