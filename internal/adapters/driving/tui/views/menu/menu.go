// Package menu is the start screen of the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// Item is one menu entry. Items without a view quit the program.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

var defaultItems = []Item{
	{Label: "Ask a Question", Description: "cited answers from your drawings and specs", View: messages.ViewChat},
	{Label: "Search Drawings", Description: "ranked passages with keyword and meaning scores", View: messages.ViewSearch},
	{Label: "Documents", Description: "browse, read, open or delete uploads", View: messages.ViewDocuments},
	{Label: "Settings", Description: "models, retrieval weights and cache", View: messages.ViewSettings},
	{Label: "Help", Description: "key bindings", View: messages.ViewHelp},
	{Label: "Quit", Quit: true},
}

// View is the menu screen.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	selected int
	corpus   *driving.Health
	width    int
	height   int
	ready    bool
}

// NewView creates the menu.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
		items:  defaultItems,
		width:  80,
		height: 24,
	}
}

// Init implements the view contract.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles navigation. Digits pick an item directly.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.CorpusLoaded:
		if msg.Err == nil {
			v.corpus = msg.Health
		}

	case tea.KeyMsg:
		key := msg.String()
		switch {
		case keymap.Matches(key, v.keymap.Up):
			v.selected = max(v.selected-1, 0)
		case keymap.Matches(key, v.keymap.Down):
			v.selected = min(v.selected+1, len(v.items)-1)
		case keymap.Matches(key, v.keymap.Select):
			return v, v.choose(v.selected)
		case keymap.Matches(key, v.keymap.Quit):
			return v, tea.Quit
		case len(key) == 1 && key[0] >= '1' && int(key[0]-'0') <= len(v.items):
			v.selected = int(key[0] - '1')
			return v, v.choose(v.selected)
		}
	}
	return v, nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Planroom"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Construction Document Assistant"))
	b.WriteString("\n")
	if v.corpus != nil {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d documents, %d chunks indexed, %d cached answers",
			v.corpus.DocumentCount, v.corpus.ChunkCount, v.corpus.CacheEntries)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		cursor, label := "  ", v.styles.Normal.Render(item.Label)
		if i == v.selected {
			cursor, label = "> ", v.styles.Subtitle.Render(item.Label)
		}
		fmt.Fprintf(&b, "%s%d. %s", cursor, i+1, label)
		if item.Description != "" && v.width >= 60 {
			b.WriteString(v.styles.Muted.Render("  " + item.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [1-6] Jump  [Enter] Select  [q] Quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}

// Corpus returns the last loaded index counts, or nil.
func (v *View) Corpus() *driving.Health {
	return v.corpus
}
