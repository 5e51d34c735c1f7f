// Package styles holds the palette and lipgloss styles used by the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// Theme is a palette. Each colour has a light and a dark terminal variant.
type Theme struct {
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Surface   lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
}

// Blueprint is the default palette: drawing-sheet blues with redline errors.
func Blueprint() *Theme {
	return &Theme{
		Primary:   lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"},
		Secondary: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"},
		Text:      lipgloss.AdaptiveColor{Light: "#0F172A", Dark: "#E2E8F0"},
		Muted:     lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"},
		Surface:   lipgloss.AdaptiveColor{Light: "#E2E8F0", Dark: "#1E293B"},
		Success:   lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"},
		Warning:   lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"},
		Error:     lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"},
		Border:    lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#334155"},
	}
}

// Styles are the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Help     lipgloss.Style

	// InputField frames text inputs.
	InputField lipgloss.Style
	// StatusBar is the bottom line of every view.
	StatusBar lipgloss.Style
	// Border frames overlays such as action menus.
	Border lipgloss.Style

	// UserTurn and AssistantTurn prefix chat transcript entries.
	UserTurn      lipgloss.Style
	AssistantTurn lipgloss.Style
	// Citation renders "[file, Page n]" references.
	Citation lipgloss.Style
}

// NewStyles derives styles from a theme. Nil means Blueprint.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = Blueprint()
	}
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	return &Styles{
		theme:    theme,
		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Text).Background(theme.Surface).Bold(true),
		Error:    fg(theme.Error),
		Success:  fg(theme.Success),
		Warning:  fg(theme.Warning),
		Help:     fg(theme.Muted),

		InputField: framed.Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Surface).Padding(0, 1),
		Border:     framed,

		UserTurn:      fg(theme.Secondary).Bold(true),
		AssistantTurn: fg(theme.Primary).Bold(true),
		Citation:      fg(theme.Muted).Italic(true),
	}
}

// DefaultStyles returns the Blueprint styles.
func DefaultStyles() *Styles {
	return NewStyles(Blueprint())
}

// Theme returns the palette behind the styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Confidence picks the colour for an answer's confidence label.
func (s *Styles) Confidence(c domain.Confidence) lipgloss.Style {
	switch c {
	case domain.ConfidenceHigh:
		return s.Success
	case domain.ConfidenceMedium:
		return s.Warning
	case domain.ConfidenceLow, domain.ConfidenceNone:
		return s.Error
	default:
		return s.Muted
	}
}
