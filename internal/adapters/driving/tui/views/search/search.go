// Package search is the retrieval-only view. It shows the lexical and
// vector scores behind each match and lets the user jump to page text.
package search

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// DefaultTopK is the number of matches requested per search.
const DefaultTopK = 10

type mode int

const (
	modeQuery mode = iota
	modeResults
	modeActions
)

// Labels of the actions offered on a selected match.
const (
	actionViewContent = "View page text"
	actionOpenFile    = "Open original file"
	actionNarrow      = "Search only this document"
)

var actionLabels = []string{actionViewContent, actionOpenFile, actionNarrow}

// View is the search screen: a query line, the ranked matches, a score
// breakdown for the selected match and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Input
	list      *list.MatchList
	statusbar *status.Bar

	searchService   driving.SearchService
	documentService driving.DocumentService
	ctx             context.Context
	topK            int

	mode    mode
	action  int
	filters domain.Filters
	err     error

	width  int
	height int
	ready  bool
}

// NewView creates a search view. A nil document service disables the
// open action.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	documentService driving.DocumentService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:          s,
		keymap:          km,
		input:           input.NewSearchInput(s),
		list:            list.NewMatchList(s),
		statusbar:       status.NewBar(s, km),
		searchService:   searchService,
		documentService: documentService,
		ctx:             context.Background(),
		topK:            DefaultTopK,
		width:           80,
		height:          24,
	}
}

// WithContext sets the context passed to the services.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the query line.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case modeActions:
			return v, v.updateActions(msg)
		case modeResults:
			return v, v.updateResults(msg)
		default:
			return v, v.updateQuery(msg)
		}

	case messages.SearchCompleted:
		v.showResults(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.mode == modeQuery {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) updateQuery(msg tea.KeyMsg) tea.Cmd {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Back):
		return changeView(messages.ViewMenu)
	case keymap.Matches(msg.String(), v.keymap.Submit):
		return v.submit()
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *View) updateResults(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return changeView(messages.ViewMenu)
	case keymap.Matches(key, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(key, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(key, v.keymap.NewSearch):
		v.focusQuery("")
	case keymap.Matches(key, v.keymap.Actions):
		if v.list.SelectedMatch() != nil {
			v.mode = modeActions
			v.action = 0
		}
	}
	return nil
}

func (v *View) updateActions(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		v.mode = modeResults
	case keymap.Matches(key, v.keymap.Up):
		v.action = max(v.action-1, 0)
	case keymap.Matches(key, v.keymap.Down):
		v.action = min(v.action+1, len(actionLabels)-1)
	case keymap.Matches(key, v.keymap.Select):
		v.mode = modeResults
		if m := v.list.SelectedMatch(); m != nil {
			return v.runAction(actionLabels[v.action], *m)
		}
	}
	return nil
}

func (v *View) runAction(label string, m domain.Match) tea.Cmd {
	doc := domain.Document{ID: m.Chunk.DocumentID, Filename: m.Chunk.Filename}

	switch label {
	case actionViewContent:
		return func() tea.Msg {
			return messages.DocumentSelected{Document: doc, From: messages.ViewSearch, Page: m.Chunk.PageNumber}
		}
	case actionOpenFile:
		if v.documentService == nil {
			v.statusbar.SetMessage("Open not available")
			return nil
		}
		if err := v.documentService.Open(v.ctx, doc.ID); err != nil {
			v.statusbar.SetMessage("Open: " + err.Error())
			return nil
		}
		v.statusbar.SetMessage("Opening " + doc.Filename)
	case actionNarrow:
		text, _, _ := ParseQuery(v.input.Value())
		v.input.SetValue(fmt.Sprintf("doc:%s %s", doc.Filename, text))
		return v.submit()
	}
	return nil
}

// submit parses the query line and starts a search.
func (v *View) submit() tea.Cmd {
	text, filters, err := ParseQuery(v.input.Value())
	if err != nil {
		v.setError(err)
		return nil
	}
	if text == "" {
		return nil
	}

	v.filters = filters
	v.err = nil
	v.statusbar.SetState(status.StateSearching)
	v.mode = modeResults
	v.input.Blur()

	opts := domain.SearchOptions{TopK: v.topK, Filters: filters}
	svc, ctx := v.searchService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		matches, err := svc.Search(ctx, text, opts)
		return messages.SearchCompleted{Matches: matches, Err: err}
	}
}

func (v *View) showResults(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.list.SetMatches(msg.Matches)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(msg.Matches))
	v.mode = modeResults
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) focusQuery(value string) {
	v.mode = modeQuery
	v.input.SetValue(value)
	v.input.Focus()
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Search Drawings"), "", v.input.View()}
	if scope := describeFilters(v.filters); scope != "" {
		sections = append(sections, v.styles.Muted.Render("Scope: "+scope))
	}
	sections = append(sections, "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if m := v.list.SelectedMatch(); m != nil && v.mode != modeQuery {
		sections = append(sections, "", v.renderBreakdown(m))
	}
	if v.mode == modeActions {
		sections = append(sections, "", v.renderActions())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderBreakdown shows how the selected match's fused score was built.
func (v *View) renderBreakdown(m *domain.Match) string {
	const barWidth = 20
	bar := func(score float64) string {
		n := int(score*barWidth + 0.5)
		n = min(max(n, 0), barWidth)
		return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
	}
	lines := []string{
		v.styles.Subtitle.Render(fmt.Sprintf("%s, page %d, chunk %d", m.Chunk.Filename, m.Chunk.PageNumber, m.Chunk.ChunkIndex)),
		fmt.Sprintf("  keyword %s %.2f", bar(m.LexicalScore), m.LexicalScore),
		fmt.Sprintf("  meaning %s %.2f", bar(m.VectorScore), m.VectorScore),
		fmt.Sprintf("  fused   %s %.2f", bar(m.FusedScore), m.FusedScore),
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderActions() string {
	lines := make([]string, len(actionLabels))
	for i, label := range actionLabels {
		if i == v.action {
			lines[i] = v.styles.Selected.Render("> " + label)
		} else {
			lines[i] = v.styles.Normal.Render("  " + label)
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	// header, input, scope, breakdown and status bar
	v.list.SetDimensions(width, height-15)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the raw query line.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery replaces the query line.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Filters returns the filters of the last submitted query.
func (v *View) Filters() domain.Filters {
	return v.filters
}

// Matches returns the current matches.
func (v *View) Matches() []domain.Match {
	return v.list.Matches()
}

// SelectedIndex returns the index of the selected match.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedMatch returns the selected match, or nil.
func (v *View) SelectedMatch() *domain.Match {
	return v.list.SelectedMatch()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// Reset returns the view to an empty query.
func (v *View) Reset() {
	v.focusQuery("")
	v.list.SetMatches(nil)
	v.filters = domain.Filters{}
	v.ClearError()
}

// InputFocused returns whether the query line has focus.
func (v *View) InputFocused() bool {
	return v.mode == modeQuery
}
