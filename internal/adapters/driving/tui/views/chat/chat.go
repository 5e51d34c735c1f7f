// Package chat provides the conversational question answering view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// maxSourcesShown caps the citations rendered under one answer.
const maxSourcesShown = 5

// Turn is one question and its answer.
type Turn struct {
	Question string
	Answer   *driving.Answer
	Err      error
}

// Pending reports whether the turn is still waiting for an answer.
func (t *Turn) Pending() bool {
	return t.Answer == nil && t.Err == nil
}

// View is the chat view: a transcript above a question input.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Input
	statusbar *status.Bar

	queryService driving.QueryService
	ctx          context.Context

	turns          []Turn
	conversationID string
	filters        domain.Filters
	scrollOffset   int

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, queryService driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.ChatHelp())

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		statusbar:    bar,
		queryService: queryService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetFilters restricts every question to part of the corpus.
func (v *View) SetFilters(f domain.Filters) {
	v.filters = f
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ConversationReset:
		v.Reset()
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(msg.String(), v.keymap.NewConversation):
		return v, func() tea.Msg { return messages.ConversationReset{} }

	case keymap.Matches(msg.String(), v.keymap.Submit):
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.Pending() {
			return v, nil
		}
		v.turns = append(v.turns, Turn{Question: question})
		v.input.Reset()
		v.scrollOffset = 0
		v.statusbar.SetState(status.StateThinking)
		v.statusbar.SetMessage("")
		return v, v.ask(question)
	}

	switch msg.String() {
	case "pgup", "ctrl+u":
		v.scrollOffset += v.transcriptHeight() / 2
		if maxOffset := v.maxScrollOffset(); v.scrollOffset > maxOffset {
			v.scrollOffset = maxOffset
		}
		return v, nil
	case "pgdown", "ctrl+d":
		v.scrollOffset -= v.transcriptHeight() / 2
		if v.scrollOffset < 0 {
			v.scrollOffset = 0
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask returns a command that answers the question within the current conversation.
func (v *View) ask(question string) tea.Cmd {
	req := driving.QueryRequest{
		Text:           question,
		Filters:        v.filters,
		ConversationID: v.conversationID,
	}
	return func() tea.Msg {
		if v.queryService == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoQueryService}
		}
		answer, err := v.queryService.Query(v.ctx, req)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if len(v.turns) == 0 {
		return
	}
	turn := &v.turns[len(v.turns)-1]
	if !turn.Pending() {
		return
	}

	if msg.Err != nil {
		turn.Err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	turn.Answer = msg.Answer
	if msg.Answer != nil && msg.Answer.ConversationID != "" {
		v.conversationID = msg.Answer.ConversationID
	}
	v.statusbar.SetState(status.StateReady)
	if msg.Answer != nil && msg.Answer.Cached {
		v.statusbar.SetMessage("Answered from cache")
	} else {
		v.statusbar.SetMessage("")
	}
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("Planroom Chat")
	if v.conversationID != "" {
		header += "  " + v.styles.Muted.Render("conversation "+shortID(v.conversationID))
	}
	if !v.filters.IsEmpty() {
		header += "  " + v.styles.Warning.Render(describeFilters(v.filters))
	}

	sections := []string{header, "", v.renderTranscript(), "", v.input.View(), "", v.statusbar.View()}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTranscript renders the visible window of the conversation.
func (v *View) renderTranscript() string {
	lines := v.transcriptLines()
	if len(lines) == 0 {
		return v.styles.Muted.Render("Ask about door schedules, fire ratings, specifications...")
	}

	height := v.transcriptHeight()
	end := len(lines) - v.scrollOffset
	start := end - height
	if start < 0 {
		start = 0
	}
	return strings.Join(lines[start:end], "\n")
}

func (v *View) transcriptLines() []string {
	textWidth := v.width - 4
	if textWidth < 20 {
		textWidth = 20
	}
	wrap := lipgloss.NewStyle().Width(textWidth)

	var lines []string
	for i := range v.turns {
		turn := &v.turns[i]
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, v.styles.UserTurn.Render("You: ")+turn.Question)

		switch {
		case turn.Err != nil:
			lines = append(lines, v.styles.Error.Render("Error: "+turn.Err.Error()))
		case turn.Pending():
			lines = append(lines, v.styles.Muted.Render("..."))
		default:
			lines = append(lines, v.styles.AssistantTurn.Render("Planroom:"))
			lines = append(lines, strings.Split(wrap.Render(turn.Answer.Answer), "\n")...)
			lines = append(lines, v.renderSources(turn.Answer)...)
		}
	}
	return lines
}

func (v *View) renderSources(a *driving.Answer) []string {
	lines := make([]string, 0, len(a.Sources)+1)
	for i, src := range a.Sources {
		if i == maxSourcesShown {
			lines = append(lines, v.styles.Citation.Render(fmt.Sprintf("  ... and %d more", len(a.Sources)-i)))
			break
		}
		lines = append(lines, v.styles.Citation.Render(fmt.Sprintf("  [%d] %s, page %d", i+1, src.Filename, src.Page)))
	}

	confidence := "Confidence: " + v.styles.Confidence(a.Confidence).Render(string(a.Confidence))
	if a.Cached {
		confidence += v.styles.Muted.Render(" (cached)")
	}
	return append(lines, confidence)
}

func (v *View) transcriptHeight() int {
	// Reserve lines for header, input and status bar.
	h := v.height - 9
	if h < 3 {
		h = 3
	}
	return h
}

func (v *View) maxScrollOffset() int {
	maxOffset := len(v.transcriptLines()) - v.transcriptHeight()
	if maxOffset < 0 {
		return 0
	}
	return maxOffset
}

func describeFilters(f domain.Filters) string {
	parts := make([]string, 0, 2)
	if f.DocumentID != "" {
		parts = append(parts, "doc "+shortID(f.DocumentID))
	}
	switch {
	case f.PageFrom > 0 && f.PageTo > 0:
		parts = append(parts, fmt.Sprintf("pages %d-%d", f.PageFrom, f.PageTo))
	case f.PageFrom > 0:
		parts = append(parts, fmt.Sprintf("pages %d+", f.PageFrom))
	case f.PageTo > 0:
		parts = append(parts, fmt.Sprintf("pages 1-%d", f.PageTo))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Turns returns the conversation so far.
func (v *View) Turns() []Turn {
	return v.turns
}

// ConversationID returns the active conversation, empty before the first answer.
func (v *View) ConversationID() string {
	return v.conversationID
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return len(v.turns) > 0 && v.turns[len(v.turns)-1].Pending()
}

// Reset discards the transcript and starts a new conversation.
func (v *View) Reset() {
	v.turns = nil
	v.conversationID = ""
	v.scrollOffset = 0
	v.input.Reset()
	v.input.Focus()
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}
