// Package documents is the table of ingested uploads.
package documents

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// ErrNoDocumentService is returned by every command when the view has no service.
var ErrNoDocumentService = errors.New("document service not available")

type mode int

const (
	modeList mode = iota
	modeFilter
	modeActions
	modeConfirm
)

// Order is how the table is sorted. The s key cycles through them.
type Order int

const (
	OrderNewest Order = iota
	OrderName
	OrderChunks
)

var orderLabels = [...]string{"newest", "name", "chunks"}

func (o Order) String() string { return orderLabels[o] }

const (
	actionRead = iota
	actionOpen
	actionDelete
	actionCancel
)

var actionLabels = [...]string{"Read extracted text", "Open original file", "Delete", "Cancel"}

const timeLayout = "2006-01-02 15:04"

// View lists documents in a table with a filename filter.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model
	svc    driving.DocumentService
	ctx    context.Context

	all    []domain.Document
	shown  []domain.Document
	table  table.Model
	filter textinput.Model
	order  Order

	mode    mode
	action  int
	width   int
	height  int
	loading bool
	err     error
	notice  string
}

// NewView creates the documents view.
func NewView(s *styles.Styles, svc driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ts := table.DefaultStyles()
	ts.Header = s.Subtitle.Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(s.Theme().Border)
	ts.Cell = s.Normal.Padding(0, 1)
	ts.Selected = s.Selected

	fi := textinput.New()
	fi.Prompt = "/ "
	fi.Placeholder = "filename"
	fi.CharLimit = 128

	h := help.New()
	h.Styles.ShortKey = s.Help
	h.Styles.ShortDesc = s.Help
	h.Styles.ShortSeparator = s.Help

	v := &View{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
		help:   h,
		svc:    svc,
		ctx:    context.Background(),
		table:  table.New(table.WithStyles(ts), table.WithHeight(16)),
		filter: fi,
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context passed to the service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init resets the view and reloads the list.
func (v *View) Init() tea.Cmd {
	v.mode = modeList
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc, ctx := v.svc, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := svc.List(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles keys and service replies.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch v.mode {
		case modeFilter:
			return v.updateFilter(msg)
		case modeActions:
			return v.updateActions(msg)
		case modeConfirm:
			return v.updateConfirm(msg)
		default:
			return v.updateList(msg)
		}

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.all = msg.Documents
			v.refresh()
		}

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = "Deleted " + cmp.Or(msg.Filename, msg.DocumentID)
		v.loading = true
		return v, v.load()

	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

func (v *View) updateList(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		v.table.MoveUp(1)
	case keymap.Matches(k, v.keymap.Down):
		v.table.MoveDown(1)
	case keymap.Matches(k, v.keymap.Actions):
		if len(v.shown) > 0 {
			v.mode, v.action = modeActions, actionRead
		}
	case keymap.Matches(k, v.keymap.Filter):
		v.mode = modeFilter
		return v, v.filter.Focus()
	case keymap.Matches(k, v.keymap.Sort):
		v.order = (v.order + 1) % Order(len(orderLabels))
		v.refresh()
	case keymap.Matches(k, v.keymap.Open):
		if doc := v.SelectedDocument(); doc != nil {
			return v, v.open(*doc)
		}
	case keymap.Matches(k, v.keymap.Delete):
		if len(v.shown) > 0 {
			v.mode = modeConfirm
		}
	case keymap.Matches(k, v.keymap.Reload):
		v.loading, v.notice = true, ""
		return v, v.load()
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	return v, nil
}

// updateFilter narrows the table on every keystroke. Enter keeps the
// filter and esc drops it.
func (v *View) updateFilter(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.filter.SetValue("")
		fallthrough
	case tea.KeyEnter:
		v.filter.Blur()
		v.mode = modeList
		v.refresh()
		return v, nil
	}
	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	v.refresh()
	return v, cmd
}

func (v *View) updateActions(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		v.action = max(v.action-1, actionRead)
	case keymap.Matches(k, v.keymap.Down):
		v.action = min(v.action+1, actionCancel)
	case keymap.Matches(k, v.keymap.Back):
		v.mode = modeList
	case keymap.Matches(k, v.keymap.Select):
		v.mode = modeList
		doc := v.SelectedDocument()
		if doc == nil {
			return v, nil
		}
		selected := *doc
		switch v.action {
		case actionRead:
			return v, func() tea.Msg {
				return messages.DocumentSelected{Document: selected, From: messages.ViewDocuments}
			}
		case actionOpen:
			return v, v.open(selected)
		case actionDelete:
			v.mode = modeConfirm
		}
	}
	return v, nil
}

func (v *View) updateConfirm(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.mode = modeList
	if k := msg.String(); k != "y" && k != "Y" {
		return v, nil
	}
	if doc := v.SelectedDocument(); doc != nil {
		return v, v.remove(*doc)
	}
	return v, nil
}

func (v *View) open(doc domain.Document) tea.Cmd {
	svc, ctx := v.svc, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoDocumentService}
		}
		if err := svc.Open(ctx, doc.ID); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return messages.StatusChanged{Message: "Opened " + doc.Filename}
	}
}

func (v *View) remove(doc domain.Document) tea.Cmd {
	svc, ctx := v.svc, v.ctx
	return func() tea.Msg {
		deleted := messages.DocumentDeleted{DocumentID: doc.ID, Filename: doc.Filename}
		if svc == nil {
			deleted.Err = ErrNoDocumentService
		} else {
			deleted.Err = svc.Delete(ctx, doc.ID)
		}
		return deleted
	}
}

// refresh rebuilds the shown rows from the full list, the filter and the order.
func (v *View) refresh() {
	needle := strings.ToLower(strings.TrimSpace(v.filter.Value()))
	shown := make([]domain.Document, 0, len(v.all))
	for _, d := range v.all {
		if needle == "" || strings.Contains(strings.ToLower(d.Filename), needle) {
			shown = append(shown, d)
		}
	}
	v.shown = shown

	byName := func(a, b domain.Document) int {
		return cmp.Compare(strings.ToLower(a.Filename), strings.ToLower(b.Filename))
	}
	slices.SortStableFunc(v.shown, func(a, b domain.Document) int {
		switch v.order {
		case OrderChunks:
			return cmp.Or(cmp.Compare(b.ChunkCount, a.ChunkCount), byName(a, b))
		case OrderName:
			return byName(a, b)
		default:
			return cmp.Or(b.UploadedAt.Compare(a.UploadedAt), byName(a, b))
		}
	})

	rows := make([]table.Row, len(v.shown))
	for i, d := range v.shown {
		uploaded := ""
		if !d.UploadedAt.IsZero() {
			uploaded = d.UploadedAt.Local().Format(timeLayout)
		}
		rows[i] = table.Row{d.Filename, strconv.Itoa(d.ChunkCount), uploaded}
	}
	v.table.SetRows(rows)
	v.table.SetCursor(min(v.table.Cursor(), max(len(rows)-1, 0)))
}

// View renders the table, or the action menu over it.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Documents (%d)", len(v.all))
	if len(v.shown) != len(v.all) {
		title = fmt.Sprintf("Documents (%d of %d)", len(v.shown), len(v.all))
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString(v.styles.Muted.Render("  sorted by " + v.order.String()))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
		b.WriteString("\n\n")
		return b.String() + v.footer()
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if len(v.all) == 0 {
		b.WriteString(v.styles.Muted.Render("No documents indexed. Run `planroom ingest <path>` to add drawings."))
		b.WriteString("\n\n")
		return b.String() + v.footer()
	}

	if v.mode == modeActions {
		return b.String() + v.actionsView()
	}

	if v.mode == modeFilter || v.filter.Value() != "" {
		b.WriteString(v.filter.View())
		b.WriteString("\n")
	}
	if len(v.shown) == 0 {
		b.WriteString(v.styles.Muted.Render("No filenames match."))
	} else {
		b.WriteString(v.table.View())
	}
	b.WriteString("\n\n")

	if doc := v.SelectedDocument(); v.mode == modeConfirm && doc != nil {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Delete %s and its chunks? [y/N]", doc.Filename)))
		b.WriteString("\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}
	return b.String() + v.footer()
}

func (v *View) actionsView() string {
	var b strings.Builder
	if doc := v.SelectedDocument(); doc != nil {
		b.WriteString(v.styles.Subtitle.Render("Actions for: " + doc.Filename))
		b.WriteString("\n\n")
	}
	for i, label := range actionLabels {
		if i == v.action {
			b.WriteString(v.styles.Selected.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))
	return v.styles.Border.Padding(0, 1).Render(b.String())
}

func (v *View) footer() string {
	return v.help.ShortHelpView(v.keymap.DocumentsHelp())
}

// SetDimensions resizes the table. The filename column takes the slack.
func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.help.Width = width
	v.filter.Width = max(width-6, 10)
	v.table.SetColumns([]table.Column{
		{Title: "File", Width: max(width-36, 16)},
		{Title: "Chunks", Width: 8},
		{Title: "Uploaded", Width: len(timeLayout) + 2},
	})
	v.table.SetWidth(width)
	v.table.SetHeight(max(height-9, 5))
}

// Documents returns the rows currently shown, filtered and sorted.
func (v *View) Documents() []domain.Document {
	return v.shown
}

// SelectedIndex is the table cursor.
func (v *View) SelectedIndex() int {
	return v.table.Cursor()
}

// SelectedDocument returns the document under the cursor, or nil.
func (v *View) SelectedDocument() *domain.Document {
	if i := v.table.Cursor(); i >= 0 && i < len(v.shown) {
		return &v.shown[i]
	}
	return nil
}

// Order returns the current sort order.
func (v *View) Order() Order {
	return v.order
}

// Filtering reports whether the filter box has focus.
func (v *View) Filtering() bool {
	return v.mode == modeFilter
}

// IsShowingMenu reports whether the action menu is open.
func (v *View) IsShowingMenu() bool {
	return v.mode == modeActions
}

// IsConfirmingDelete reports whether the delete prompt is shown.
func (v *View) IsConfirmingDelete() bool {
	return v.mode == modeConfirm
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
