// Package status renders the one-line status bar shared by the views.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
)

// State is what the owning view is doing.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateThinking  State = "thinking"
	StateError     State = "error"
	StateHelp      State = "help"
	StateResults   State = "results"
)

// busyLabels are shown while a service call is in flight.
var busyLabels = map[State]string{
	StateSearching: "Searching...",
	StateThinking:  "Thinking...",
	StateHelp:      "Help",
}

// Bar shows the view state on the left and key hints on the right.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	help        help.Model
	hints       []key.Binding
	state       State
	message     string
	resultCount int
	width       int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = s.Muted
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted

	return &Bar{
		styles: s,
		keymap: km,
		help:   h,
		state:  StateReady,
		width:  80,
	}
}

// Init implements the component contract.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; views drive the bar through its setters.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left := s.status()
	right := s.help.ShortHelpView(s.bindings())
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) status() string {
	if label, ok := busyLabels[s.state]; ok {
		return s.styles.Muted.Render(label)
	}
	if s.state == StateError {
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	}
	switch {
	case s.message != "":
		return s.styles.Normal.Render(s.message)
	case s.resultCount > 0:
		return s.styles.Normal.Render(fmt.Sprintf("%d results", s.resultCount))
	default:
		return s.styles.Muted.Render("Ready")
	}
}

func (s *Bar) bindings() []key.Binding {
	switch {
	case s.hints != nil:
		return s.hints
	case s.state == StateResults && s.resultCount > 0:
		return s.keymap.ResultsHelp()
	default:
		return s.keymap.ShortHelp()
	}
}

// SetHints overrides the key hints. Nil restores the defaults.
func (s *Bar) SetHints(bindings []key.Binding) {
	s.hints = bindings
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the text shown in the ready and error states.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetResultCount sets the result count.
func (s *Bar) SetResultCount(count int) {
	s.resultCount = count
}

// ResultCount returns the current result count.
func (s *Bar) ResultCount() int {
	return s.resultCount
}

// SetWidth sets the bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
	s.help.Width = width / 2
}

// Width returns the bar width.
func (s *Bar) Width() int {
	return s.width
}

// Clear returns the bar to the ready state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
}
