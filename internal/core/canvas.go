package core

import "math"

// Terminal cell size in canvas pixels. A 500x500 canvas maps to 63x32 cells.
const (
	CellWidthPx  = 8
	CellHeightPx = 16
)

// Canvas is a pixel-addressed drawing surface backed by a cell Screen.
// Coordinates passed to its methods are pixels; each pixel maps to the cell
// that contains it.
type Canvas struct {
	width  int // pixels
	height int // pixels
	screen *Screen
}

// NewCanvas creates a canvas of the given pixel dimensions.
func NewCanvas(width, height int) *Canvas {
	width = max(width, 0)
	height = max(height, 0)
	return &Canvas{
		width:  width,
		height: height,
		screen: NewScreen(cellsFor(width, CellWidthPx), cellsFor(height, CellHeightPx)),
	}
}

func cellsFor(px, cell int) int {
	return (px + cell - 1) / cell
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int {
	return c.height
}

// Screen exposes the underlying cell buffer.
func (c *Canvas) Screen() *Screen {
	return c.screen
}

// CellAt converts a pixel position to the containing cell.
func (c *Canvas) CellAt(x, y float64) (col, row int) {
	return int(math.Floor(x / CellWidthPx)), int(math.Floor(y / CellHeightPx))
}

// PixelAt returns the pixel position of a cell's center.
func (c *Canvas) PixelAt(col, row int) Vec {
	return Vec{
		X: float64(col)*CellWidthPx + CellWidthPx/2,
		Y: float64(row)*CellHeightPx + CellHeightPx/2,
	}
}

// Clear blanks the whole canvas.
func (c *Canvas) Clear() {
	c.screen.Clear()
}

// ClearRect blanks every cell touched by the pixel rectangle.
func (c *Canvas) ClearRect(r Rect) {
	x0, y0 := c.CellAt(r.X, r.Y)
	x1, y1 := c.CellAt(r.Right()-1, r.Bottom()-1)
	c.screen.ClearRect(x0, y0, x1-x0+1, y1-y0+1)
}

// FillText draws text with its baseline at pixel (x, y).
func (c *Canvas) FillText(x, y float64, text string, col Color) {
	cx, cy := c.CellAt(x, y-1)
	c.screen.DrawText(cx, cy, text, col)
}

// FillRect fills every cell whose center lies in the pixel rectangle.
// A rectangle smaller than a cell still marks the cell containing its center.
func (c *Canvas) FillRect(r Rect, fill rune, col Color) {
	drawn := false
	for row := 0; row < c.screen.Height(); row++ {
		for cx := 0; cx < c.screen.Width(); cx++ {
			if r.Contains(c.PixelAt(cx, row)) {
				c.screen.SetColor(cx, row, fill, col)
				drawn = true
			}
		}
	}
	if !drawn {
		cx, cy := c.CellAt(r.X+r.W/2, r.Y+r.H/2)
		c.screen.SetColor(cx, cy, fill, col)
	}
}

// FillCircle marks the cells covered by a circle, or the cell containing its
// center when the circle is smaller than a cell.
func (c *Canvas) FillCircle(center Vec, radius float64, fill rune, col Color) {
	drawn := false
	for row := 0; row < c.screen.Height(); row++ {
		for cx := 0; cx < c.screen.Width(); cx++ {
			if c.PixelAt(cx, row).Sub(center).Len() <= radius {
				c.screen.SetColor(cx, row, fill, col)
				drawn = true
			}
		}
	}
	if !drawn {
		cx, cy := c.CellAt(center.X, center.Y)
		c.screen.SetColor(cx, cy, fill, col)
	}
}

// Line draws a straight line between two pixel positions.
func (c *Canvas) Line(a, b Vec, fill rune, col Color) {
	x0, y0 := c.CellAt(a.X, a.Y)
	x1, y1 := c.CellAt(b.X, b.Y)
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		c.screen.SetColor(x0, y0, fill, col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(x0) + t*float64(x1-x0)))
		y := int(math.Round(float64(y0) + t*float64(y1-y0)))
		c.screen.SetColor(x, y, fill, col)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
