package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/slingshot-trial/internal/config"
	"github.com/vovakirdan/slingshot-trial/internal/experiment"
	"github.com/vovakirdan/slingshot-trial/internal/host"
)

// Screen position of the display's top-left cell: one header line, then
// the frame border.
const (
	displayTop  = 2
	displayLeft = 1
)

// Options configure an experiment session.
type Options struct {
	// Context ends the experiment when done, e.g. when an SSH session closes.
	Context context.Context

	Experiment  config.Experiment
	FrameRate   int
	Participant string
	Saver       experiment.RecordSaver
	Logger      *log.Logger
}

// session is the part of the model shared by every copy of the value
// Model: the host loop, its display and the runner driving them.
type session struct {
	loop    *host.Loop
	display *host.Display
	runner  *experiment.Runner
	exp     config.Experiment

	ctx    context.Context
	cancel context.CancelFunc
	events chan tea.Msg

	once     sync.Once
	launched atomic.Bool
	done     chan struct{}
	summary  experiment.Summary
	err      error
}

type trialEventMsg experiment.Event

type experimentDoneMsg struct {
	summary experiment.Summary
	err     error
}

func newSession(opts Options) *session {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	s := &session{
		loop:    host.NewLoop(opts.FrameRate),
		display: host.NewDisplay(),
		exp:     opts.Experiment,
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan tea.Msg, 16),
		done:    make(chan struct{}),
	}
	s.runner = experiment.New(s.loop, s.display,
		experiment.WithSaver(opts.Saver),
		experiment.WithLogger(opts.Logger),
		experiment.WithParticipant(opts.Participant),
		experiment.WithObserver(func(e experiment.Event) { s.send(trialEventMsg(e)) }),
	)
	return s
}

// start launches the loop and the runner once.
func (s *session) start() {
	s.once.Do(func() {
		s.launched.Store(true)
		loopCtx, stopLoop := context.WithCancel(context.Background())
		go s.loop.Run(loopCtx) //nolint:errcheck // returns only on cancel

		go func() {
			defer close(s.done)
			defer stopLoop()
			s.summary, s.err = s.runner.Run(s.ctx, s.exp)
			if errors.Is(s.err, context.Canceled) {
				s.err = nil // quitting early is not a failure
			}
			s.send(experimentDoneMsg{summary: s.summary, err: s.err})
		}()
	})
}

// send delivers a message to the program unless the session was cancelled.
func (s *session) send(msg tea.Msg) {
	select {
	case s.events <- msg:
	case <-s.ctx.Done():
	}
}

func (s *session) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-s.events:
			return msg
		case <-s.done:
			// The runner may have finished after the program stopped listening.
			select {
			case msg := <-s.events:
				return msg
			default:
				return experimentDoneMsg{summary: s.summary, err: s.err}
			}
		}
	}
}

// wait stops the experiment and blocks until the runner returns.
func (s *session) wait() (experiment.Summary, error) {
	s.cancel()
	if !s.launched.Load() {
		return experiment.Summary{}, nil
	}
	<-s.done
	return s.summary, s.err
}

// Model is the Bubble Tea model of a running experiment.
type Model struct {
	s         *session
	keys      TrialKeyMap
	help      help.Model
	frameRate int
	width     int
	height    int

	index    int // current trial, 1-based
	total    int
	finished bool
	quitting bool
	summary  experiment.Summary
	err      error
	results  table.Model
}

// NewModel creates a model for the experiment in opts.
func NewModel(opts Options) Model {
	if opts.FrameRate <= 0 {
		opts.FrameRate = host.DefaultFrameRate
	}
	return Model{
		s:         newSession(opts),
		keys:      DefaultTrialKeyMap(),
		help:      help.New(),
		frameRate: opts.FrameRate,
		total:     len(opts.Experiment.Trials),
	}
}

// Init starts the experiment and the redraw loop.
func (m Model) Init() tea.Cmd {
	m.s.start()
	return tea.Batch(m.s.waitForEvent(), tickCmd(m.frameRate))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.finished {
			return m, nil
		}
		return m, tickCmd(m.frameRate)

	case trialEventMsg:
		m.index = msg.Index
		m.total = msg.Total
		return m, m.s.waitForEvent()

	case experimentDoneMsg:
		m.finished = true
		m.summary = msg.summary
		m.err = msg.err
		m.results = newTrialTable(RowsFromRecords(msg.summary.Records), len(msg.summary.Records)+1, false)
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		// Cancelling aborts the current trial; its record is still saved.
		m.quitting = true
		m.s.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleMouse forwards a mouse gesture to the stimulus on the loop.
func (m Model) handleMouse(msg tea.MouseMsg) {
	kind, ok := PointerKind(msg)
	if !ok || m.finished {
		return
	}
	col, row := msg.X-displayLeft, msg.Y-displayTop
	d := m.s.display
	m.s.loop.Post(func() {
		d.DispatchCell(kind, col, row)
	})
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.finished {
		return m.viewSummary()
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	var feedback, stimulus, prompt string
	var mounted bool
	var cols, rows int
	m.s.loop.Inspect(func() {
		mounted = m.s.display.Mounted()
		if !mounted {
			return
		}
		fs := m.s.display.Feedback().Screen()
		ss := m.s.display.Stimulus().Screen()
		feedback = RenderScreen(fs)
		stimulus = RenderScreen(ss)
		prompt = m.s.display.Prompt()
		cols, rows = ss.Width(), fs.Height()+ss.Height()
	})

	if !mounted {
		b.WriteString(subtleStyle.Render("Preparing the next trial..."))
		b.WriteString("\n")
	} else {
		b.WriteString(frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, feedback, stimulus)))
		b.WriteString("\n")
		if prompt != "" {
			b.WriteString(lipgloss.NewStyle().Width(cols + 2).Render(prompt))
			b.WriteString("\n")
		}
		if m.width > 0 && (m.width < cols+2 || m.height < rows+displayTop+2) {
			b.WriteString(errorStyle.Render(fmt.Sprintf("terminal too small: need %dx%d", cols+2, rows+displayTop+2)))
			b.WriteString("\n")
		}
	}

	b.WriteString(subtleStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) header() string {
	status := "starting"
	if m.index > 0 {
		status = fmt.Sprintf("trial %d/%d", m.index, m.total)
	}
	return titleStyle.Render("SLINGSHOT") + "  " +
		subtleStyle.Render(status+" - drag the ball with the mouse and release to shoot")
}

func (m Model) viewSummary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("EXPERIMENT COMPLETE"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n\n")
	}
	if len(m.summary.Records) > 0 {
		b.WriteString(frameStyle.Padding(0, 1).Render(m.results.View()))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Total earnings: %s\n", formatCents(m.summary.Earnings())))
	}
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Summary returns the finished experiment, valid once the runner is done.
func (m Model) Summary() experiment.Summary {
	return m.summary
}

// Run runs an experiment in the local terminal and returns once the
// runner has finished, including saving the last trial.
func Run(opts Options) (experiment.Summary, error) {
	model := NewModel(opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	summary, runErr := model.s.wait()
	if err != nil {
		return summary, err
	}
	return summary, runErr
}
