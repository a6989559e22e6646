package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != ' ' {
				t.Fatalf("New screen should be filled with spaces, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetColor(5, 5, 'X', ColorRed)
	cell := s.GetCell(5, 5)
	if cell.Rune != 'X' || cell.Color != ColorRed {
		t.Errorf("GetCell(5, 5) = %+v, expected red 'X'", cell)
	}

	// Out of bounds should be silent
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.Set(0, -1, 'A')
	s.Set(0, 100, 'A')

	if s.Get(-1, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
}

func TestScreenClearRect(t *testing.T) {
	s := NewScreen(10, 4)
	for y := 0; y < 4; y++ {
		s.DrawText(0, y, strings.Repeat("#", 10), ColorDefault)
	}

	s.ClearRect(2, 1, 3, 2)

	if s.Row(0) != "##########" {
		t.Errorf("Row 0 = %q, should be untouched", s.Row(0))
	}
	if s.Row(1) != "##   #####" {
		t.Errorf("Row 1 = %q, expected %q", s.Row(1), "##   #####")
	}
	if s.Row(3) != "##########" {
		t.Errorf("Row 3 = %q, should be untouched", s.Row(3))
	}
}

func TestScreenDrawTextClipped(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawText(18, 0, "Hello", ColorGreen)

	if s.Get(18, 0) != 'H' || s.Get(19, 0) != 'e' {
		t.Error("Text should be clipped at right boundary")
	}
	if s.GetCell(18, 0).Color != ColorGreen {
		t.Error("DrawText should keep the color")
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(3, 2)
	s.Set(0, 0, 'a')
	s.Set(2, 1, 'b')

	expected := "a  \n  b"
	if s.String() != expected {
		t.Errorf("String() = %q, expected %q", s.String(), expected)
	}
}

func TestCanvasDimensions(t *testing.T) {
	c := NewCanvas(500, 500)

	if c.Width() != 500 || c.Height() != 500 {
		t.Errorf("Canvas size = %dx%d, expected 500x500", c.Width(), c.Height())
	}
	if c.Screen().Width() != 63 {
		t.Errorf("Screen().Width() = %d, expected 63", c.Screen().Width())
	}
	if c.Screen().Height() != 32 {
		t.Errorf("Screen().Height() = %d, expected 32", c.Screen().Height())
	}

	strip := NewCanvas(500, 40)
	if strip.Screen().Height() != 3 {
		t.Errorf("40px strip should have 3 rows, got %d", strip.Screen().Height())
	}
}

func TestCanvasCellMapping(t *testing.T) {
	c := NewCanvas(100, 100)

	col, row := c.CellAt(17, 33)
	if col != 2 || row != 2 {
		t.Errorf("CellAt(17, 33) = (%d, %d), expected (2, 2)", col, row)
	}

	p := c.PixelAt(2, 2)
	if p != V(20, 40) {
		t.Errorf("PixelAt(2, 2) = %v, expected (20, 40)", p)
	}
}

func TestCanvasFillText(t *testing.T) {
	c := NewCanvas(500, 40)
	c.FillText(150, 20, "Total", ColorDefault)

	// baseline 20px sits in row 1, x=150px is column 18
	if got := c.Screen().Row(1)[18:23]; got != "Total" {
		t.Errorf("FillText wrote %q at row 1, expected %q", got, "Total")
	}

	c.ClearRect(NewRect(0, 0, 500, 40))
	if strings.TrimSpace(c.Screen().String()) != "" {
		t.Error("ClearRect over the whole canvas should blank it")
	}
}

func TestCanvasSmallShapesStillVisible(t *testing.T) {
	c := NewCanvas(100, 100)
	c.FillCircle(V(50, 50), 2, 'o', ColorBlue)

	col, row := c.CellAt(50, 50)
	cell := c.Screen().GetCell(col, row)
	if cell.Rune != 'o' || cell.Color != ColorBlue {
		t.Errorf("tiny circle should mark its center cell, got %+v", cell)
	}
}
