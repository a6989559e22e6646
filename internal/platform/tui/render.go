package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/slingshot-trial/internal/core"
)

// palette maps canvas colors to ANSI colors. ColorDefault and unknown
// colors render unstyled.
var palette = map[core.Color]lipgloss.Color{
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
}

func cellStyle(c core.Color) lipgloss.Style {
	st := lipgloss.NewStyle()
	if fg, ok := palette[c]; ok {
		st = st.Foreground(fg)
	}
	return st
}

// cellRun is a horizontal stretch of cells sharing one color.
type cellRun struct {
	color core.Color
	text  []rune
}

func rowRuns(s *core.Screen, y int) []cellRun {
	var runs []cellRun
	for x := range s.Width() {
		c := s.GetCell(x, y)
		if n := len(runs); n > 0 && runs[n-1].color == c.Color {
			runs[n-1].text = append(runs[n-1].text, c.Rune)
			continue
		}
		runs = append(runs, cellRun{color: c.Color, text: []rune{c.Rune}})
	}
	return runs
}

// RenderScreen renders a canvas Screen one line per row, styling each
// same-color run once.
func RenderScreen(s *core.Screen) string {
	lines := make([]string, s.Height())
	for y := range lines {
		var b strings.Builder
		for _, run := range rowRuns(s, y) {
			b.WriteString(cellStyle(run.color).Render(string(run.text)))
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// Shared styles.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
)

func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
