package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/slingshot-trial/internal/host"
)

// TrialKeyMap defines the key bindings while an experiment runs.
type TrialKeyMap struct {
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k TrialKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k TrialKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Help, k.Quit}}
}

// DefaultTrialKeyMap returns default key bindings.
func DefaultTrialKeyMap() TrialKeyMap {
	return TrialKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "end experiment"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// PointerKind translates a mouse message into a pointer gesture.
// Only the left button starts a drag; motion and release are forwarded
// whatever the button, the stimulus ignores them when nothing is held.
func PointerKind(msg tea.MouseMsg) (host.PointerKind, bool) {
	switch msg.Action {
	case tea.MouseActionPress:
		return host.PointerPress, msg.Button == tea.MouseButtonLeft
	case tea.MouseActionMotion:
		return host.PointerMove, true
	case tea.MouseActionRelease:
		return host.PointerRelease, true
	}
	return host.PointerPress, false
}
