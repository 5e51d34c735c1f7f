package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/planroom/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView       *menu.View
	chatView       *chat.View
	searchView     *search.View
	documentsView  *documents.View
	docContentView *doccontent.View
	settingsView   *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// startView is shown after Init instead of the menu when set.
	startView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		menuView:       menu.NewView(s),
		chatView:       chat.NewView(s, km, ports.Query),
		searchView:     search.NewView(s, km, ports.Search, ports.Document),
		documentsView:  documents.NewView(s, ports.Document),
		docContentView: doccontent.NewView(s, ports.Document),
		settingsView:   settings.NewView(s, ports.Settings),
		currentView:    messages.ViewMenu,
		startView:      messages.ViewMenu,
	}, nil
}

// WithContext sets the context used by every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.docContentView.WithContext(ctx)
	return a
}

// WithFilters restricts chat questions to part of the corpus.
func (a *App) WithFilters(f domain.Filters) *App {
	a.chatView.SetFilters(f)
	return a
}

// StartIn opens the given view instead of the menu.
func (a *App) StartIn(view messages.ViewType) *App {
	a.startView = view
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("planroom"), a.loadCorpus()}
	if a.startView != messages.ViewMenu {
		view := a.startView
		cmds = append(cmds, func() tea.Msg { return messages.ViewChanged{View: view} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewChat:
			return a, a.chatView.Init()
		case messages.ViewSearch:
			a.searchView.Reset()
			return a, a.searchView.Init()
		case messages.ViewDocuments:
			return a, a.documentsView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewMenu:
			return a, a.loadCorpus()
		case messages.ViewDocContent, messages.ViewHelp:
		}
		return a, nil

	case messages.CorpusLoaded:
		a.menuView, cmd = a.menuView.Update(msg)
		return a, cmd

	case messages.AnswerReceived, messages.ConversationReset:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.DocumentsLoaded, messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
		a.err = a.documentsView.Err()
		return a, cmd

	case messages.DocumentSelected:
		doc := msg.Document
		a.currentView = messages.ViewDocContent
		return a, a.docContentView.SetDocument(&doc, msg.From, msg.Page)

	case messages.DocumentContentLoaded:
		a.docContentView, cmd = a.docContentView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.updateCurrent(msg)

	case messages.StatusChanged:
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.updateCurrent(msg)
}

// loadCorpus fetches index counts for the menu header.
func (a *App) loadCorpus() tea.Cmd {
	svc, ctx := a.ports.Document, a.ctx
	return func() tea.Msg {
		h, err := svc.Health(ctx)
		return messages.CorpusLoaded{Health: h, Err: err}
	}
}

// updateCurrent forwards a message to the active view.
func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocContent:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp lists every binding in grouped columns.
func (a *App) viewHelp() string {
	h := help.New()
	h.Width = a.width
	h.FullSeparator = "    "
	h.Styles.FullKey = a.styles.Subtitle
	h.Styles.FullDesc = a.styles.Normal

	return a.styles.Title.Render("Help") + "\n\n" +
		h.FullHelpView(a.keymap.FullHelp()) + "\n\n" +
		a.styles.Muted.Render("Chat scrolls with pgup/pgdn. Search queries accept doc:, page: and pages: scope tokens.") + "\n\n" +
		a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.docContentView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
