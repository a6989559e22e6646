package slingshot

import "github.com/vovakirdan/slingshot-trial/internal/core"

const (
	ballRune   = '●'
	targetRune = '█'
	bandRune   = '·'
	postRune   = '│'
)

// draw repaints the whole scene.
func (g *Game) draw() {
	c := g.canvas
	if c == nil {
		return
	}
	c.Clear()

	// Slingshot post below the anchor.
	a := g.body.Anchor
	c.Line(a.Add(core.V(0, g.ball.Radius+core.CellHeightPx)), core.V(a.X, g.body.Height), postRune, core.ColorGray)

	targetColor := g.targetColor
	if g.hit {
		targetColor = g.hitColor
	}
	c.FillRect(g.body.Target, targetRune, targetColor)

	if g.phase == PhaseDragging || g.phase == PhaseSpring {
		c.Line(a, g.ball.Pos, bandRune, core.ColorYellow)
	}
	c.FillCircle(g.ball.Pos, g.ball.Radius, ballRune, g.ballColor)
}
