package core

// RuntimeConfig describes the terminal a canvas is shown in.
type RuntimeConfig struct {
	ScreenW   int // Screen width in characters
	ScreenH   int // Screen height in characters
	FrameRate int // Animation frames per second (default 60)
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:   80,
		ScreenH:   24,
		FrameRate: 60,
	}
}

// CellsForPixels returns the cell size of a canvas of the given pixel size.
func CellsForPixels(widthPx, heightPx int) (cols, rows int) {
	return cellsFor(max(widthPx, 0), CellWidthPx), cellsFor(max(heightPx, 0), CellHeightPx)
}

// Fits reports whether a canvas of the given pixel size fits on screen
// together with padW columns and padH rows of surrounding chrome.
func (c RuntimeConfig) Fits(widthPx, heightPx, padW, padH int) bool {
	cols, rows := CellsForPixels(widthPx, heightPx)
	return cols+padW <= c.ScreenW && rows+padH <= c.ScreenH
}
