// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
)

// Input wraps a bubbles textinput with a styled label.
type Input struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// New creates a focused input with the given label and placeholder.
func New(s *styles.Styles, label, placeholder string) *Input {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 50

	return &Input{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     50,
	}
}

// NewSearchInput creates the input used by the search view.
func NewSearchInput(s *styles.Styles) *Input {
	return New(s, "Search: ", "Enter search query...")
}

// NewQuestionInput creates the input used by the chat view.
func NewQuestionInput(s *styles.Styles) *Input {
	return New(s, "Ask: ", "Ask a question about the drawings...")
}

// Init initialises the input.
func (i *Input) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textinput, cmd = i.textinput.Update(msg)
	return i, cmd
}

// View renders the label and input.
func (i *Input) View() string {
	label := i.styles.Title.Render(i.label)
	field := i.styles.InputField.Render(i.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Label returns the input label.
func (i *Input) Label() string {
	return i.label
}

// Value returns the current input value.
func (i *Input) Value() string {
	return i.textinput.Value()
}

// SetValue sets the input value.
func (i *Input) SetValue(value string) {
	i.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (i *Input) Focus() tea.Cmd {
	return i.textinput.Focus()
}

// Blur removes focus from the input.
func (i *Input) Blur() {
	i.textinput.Blur()
}

// Focused returns whether the input is focused.
func (i *Input) Focused() bool {
	return i.textinput.Focused()
}

// SetWidth sets the width of the input.
func (i *Input) SetWidth(width int) {
	i.width = width
	// Account for label and padding
	inputWidth := width - len(i.label) - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	i.textinput.Width = inputWidth
}

// Width returns the current width.
func (i *Input) Width() int {
	return i.width
}

// Reset clears the input.
func (i *Input) Reset() {
	i.textinput.Reset()
}
