// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/planroom/internal/core/domain"
)

// MatchList displays retrieval matches in a navigable list.
type MatchList struct {
	matches  []domain.Match
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewMatchList creates a new match list component.
func NewMatchList(s *styles.Styles) *MatchList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &MatchList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the match list.
func (r *MatchList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *MatchList) Update(msg tea.Msg) (*MatchList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the match list.
func (r *MatchList) View() string {
	if len(r.matches) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.matches)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.matches))), "")

	// Each match takes three lines.
	visibleCount := (r.height - 4) / 3
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.matches) {
		end = len(r.matches)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderMatch(i, &r.matches[i]))
	}

	return strings.Join(lines, "\n")
}

// renderMatch formats a match as title, scores and preview lines.
func (r *MatchList) renderMatch(index int, m *domain.Match) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := fmt.Sprintf("%s (page %d)", m.Chunk.Filename, m.Chunk.PageNumber)
	maxTitleLen := r.width - 20
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	title = truncate(title, maxTitleLen)

	score := fmt.Sprintf("%.2f", m.FusedScore)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitleLen, title, score))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitleLen, title)) +
			r.styles.Muted.Render(score)
	}

	signals := r.styles.Citation.Render(fmt.Sprintf("    lexical %.2f  vector %.2f", m.LexicalScore, m.VectorScore))

	maxPreviewLen := r.width - 6
	if maxPreviewLen < 20 {
		maxPreviewLen = 20
	}
	preview := strings.Join(strings.Fields(m.Chunk.Content), " ")
	previewLine := r.styles.Muted.Render("    " + truncate(preview, maxPreviewLen))

	return titleLine + "\n" + signals + "\n" + previewLine
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetMatches replaces the list contents and resets the selection.
func (r *MatchList) SetMatches(matches []domain.Match) {
	r.matches = matches
	r.selected = 0
}

// Matches returns the current matches.
func (r *MatchList) Matches() []domain.Match {
	return r.matches
}

// Selected returns the index of the selected match.
func (r *MatchList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *MatchList) SetSelected(index int) {
	if index >= 0 && index < len(r.matches) {
		r.selected = index
	}
}

// SelectedMatch returns the currently selected match, or nil if none.
func (r *MatchList) SelectedMatch() *domain.Match {
	if r.selected < 0 || r.selected >= len(r.matches) {
		return nil
	}
	return &r.matches[r.selected]
}

// MoveUp moves selection up.
func (r *MatchList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *MatchList) MoveDown() {
	if r.selected < len(r.matches)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *MatchList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of matches.
func (r *MatchList) Count() int {
	return len(r.matches)
}

// IsEmpty returns whether the list is empty.
func (r *MatchList) IsEmpty() bool {
	return len(r.matches) == 0
}
