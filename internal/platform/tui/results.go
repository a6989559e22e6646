package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/slingshot-trial/internal/experiment"
	"github.com/vovakirdan/slingshot-trial/internal/storage"
	"github.com/vovakirdan/slingshot-trial/internal/trial"
)

// Results layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show the session sidebar
	sidebarWidth       = 24 // Width of session sidebar
	maxSessions        = 50 // Max sessions to load
)

// ResultsKeyMap defines the key bindings for the results browser.
type ResultsKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextSession key.Binding
	PrevSession key.Binding
	Quit        key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ResultsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextSession, k.PrevSession, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ResultsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextSession, k.PrevSession},
		{k.Quit},
	}
}

// DefaultResultsKeyMap returns default key bindings.
func DefaultResultsKeyMap() ResultsKeyMap {
	return ResultsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextSession: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next session"),
		),
		PrevSession: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev session"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// TrialRow is one line of a results table.
type TrialRow struct {
	Index    int
	Reason   string
	Shots    int
	Hits     int
	Duration time.Duration
}

// RowsFromRecords converts runner records to table rows.
func RowsFromRecords(recs []experiment.Record) []TrialRow {
	rows := make([]TrialRow, len(recs))
	for i, r := range recs {
		rows[i] = TrialRow{
			Index:    r.Index,
			Reason:   string(r.Reason),
			Shots:    r.Result.TotalTrials,
			Hits:     r.Result.TotalHits,
			Duration: r.Duration,
		}
	}
	return rows
}

// RowsFromTrials converts stored trials to table rows.
func RowsFromTrials(recs []storage.TrialRecord) []TrialRow {
	rows := make([]TrialRow, len(recs))
	for i, r := range recs {
		rows[i] = TrialRow{
			Index:    r.TrialIndex,
			Reason:   r.EndReason,
			Shots:    r.TotalTrials,
			Hits:     r.TotalHits,
			Duration: time.Duration(r.DurationMs) * time.Millisecond,
		}
	}
	return rows
}

// newTrialTable creates a table of trial rows.
func newTrialTable(rows []TrialRow, height int, focused bool) table.Model {
	columns := []table.Column{
		{Title: "Trial", Width: 6},
		{Title: "Ended", Width: 10},
		{Title: "Shots", Width: 6},
		{Title: "Hits", Width: 6},
		{Title: "Earned", Width: 9},
		{Title: "Time", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(focused),
		table.WithHeight(max(height, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	if !focused {
		s.Selected = lipgloss.NewStyle()
	}
	t.SetStyles(s)

	t.SetRows(tableRows(rows))
	return t
}

func tableRows(rows []TrialRow) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{
			fmt.Sprintf("#%d", r.Index),
			r.Reason,
			fmt.Sprintf("%d", r.Shots),
			fmt.Sprintf("%d", r.Hits),
			formatCents(r.Hits * trial.RewardPerHit),
			fmt.Sprintf("%.1fs", r.Duration.Seconds()),
		}
	}
	return out
}

func formatCents(c int) string {
	return fmt.Sprintf("%d cents", c)
}

// ResultsModel is the Bubble Tea model for browsing stored sessions.
type ResultsModel struct {
	store       *storage.Store
	sessions    []storage.SessionStats
	cursor      int
	trials      []storage.TrialRecord
	table       table.Model
	help        help.Model
	keys        ResultsKeyMap
	width       int
	height      int
	err         error
	quitting    bool
	showSidebar bool
}

// NewResultsModel creates a new results browser.
func NewResultsModel(store *storage.Store, width, height int) ResultsModel {
	h := help.New()
	h.ShowAll = false

	m := ResultsModel{
		store:       store,
		keys:        DefaultResultsKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}

	if store != nil {
		m.sessions, m.err = store.Sessions(maxSessions)
	}
	m.loadTrials()
	return m
}

// loadTrials loads the trials of the selected session.
func (m *ResultsModel) loadTrials() {
	m.trials = nil
	if m.store != nil && len(m.sessions) > 0 {
		trials, err := m.store.SessionTrials(m.sessions[m.cursor].SessionID)
		if err != nil {
			m.err = err
		}
		m.trials = trials
	}
	m.table = newTrialTable(RowsFromTrials(m.trials), m.height-8, true)
}

// Init initializes the results model.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results browser.
func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextSession):
			if len(m.sessions) > 0 {
				m.cursor = (m.cursor + 1) % len(m.sessions)
				m.loadTrials()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevSession):
			if len(m.sessions) > 0 {
				m.cursor--
				if m.cursor < 0 {
					m.cursor = len(m.sessions) - 1
				}
				m.loadTrials()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.loadTrials()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the results browser.
func (m ResultsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "RESULTS"
	if len(m.sessions) > 0 {
		s := m.sessions[m.cursor]
		title = fmt.Sprintf("RESULTS - %s (%s)", s.Participant, s.LastPlayed.Format("Jan 02 15:04"))
	}
	b.WriteString(titleStyle.MarginBottom(1).Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	// Help bar
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the results with a sidebar of sessions.
func (m ResultsModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Sessions\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, s := range m.sessions {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}

		name := s.Participant
		if name == "" {
			name = s.SessionID[:min(8, len(s.SessionID))]
		}
		maxLen := sidebarWidth - 6
		if len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()),
		"  ",
		frameStyle.Padding(0, 1).Render(m.renderTableContent()),
	)
}

// renderNarrowLayout renders the selected session only.
func (m ResultsModel) renderNarrowLayout() string {
	var b strings.Builder

	if len(m.sessions) > 0 {
		line := fmt.Sprintf("< session %d/%d >", m.cursor+1, len(m.sessions))
		b.WriteString(centerText(subtleStyle.Render(line), m.width))
		b.WriteString("\n\n")
	}

	b.WriteString(centerText(frameStyle.Padding(0, 1).Render(m.renderTableContent()), m.width))
	return b.String()
}

// renderTableContent renders the table or empty message.
func (m ResultsModel) renderTableContent() string {
	if len(m.trials) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No trials recorded yet.\nRun an experiment to collect results!")
	}

	total := 0
	for _, t := range m.trials {
		total += t.Earnings()
	}
	return m.table.View() + "\n" + subtleStyle.Render("Total earnings: "+formatCents(total))
}

// RunResults runs the results browser.
func RunResults(store *storage.Store, width, height int) error {
	p := tea.NewProgram(
		NewResultsModel(store, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
