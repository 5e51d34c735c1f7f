// Package doccontent shows the extracted text of a document page by page.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/planroom/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// chrome is the number of lines taken by the title, rule and footer.
const chrome = 6

// View is a scrollable reader over one document. Multi-page documents
// get a heading per page and n/p jump between pages.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	viewport   viewport.Model
	document   *domain.Document
	from       messages.ViewType
	content    string
	pages      []domain.Page
	pageStarts []int
	lines      []string
	jumpTo     int

	width   int
	height  int
	loading bool
	err     error
}

// NewView creates a new document content view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		viewport:        viewport.New(80, 24-chrome),
		from:            messages.ViewDocuments,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDocument starts loading a document. Esc returns to from. A positive
// page scrolls to that page once the text arrives.
func (v *View) SetDocument(doc *domain.Document, from messages.ViewType, page int) tea.Cmd {
	v.document = doc
	v.from = from
	v.jumpTo = page
	v.content = ""
	v.pages = nil
	v.pageStarts = nil
	v.lines = nil
	v.err = nil
	v.loading = true
	v.viewport.SetContent("")
	v.viewport.GotoTop()

	svc, ctx := v.documentService, v.ctx
	return func() tea.Msg {
		if doc == nil || svc == nil {
			return messages.DocumentContentLoaded{Err: ErrNoDocumentService}
		}
		content, err := svc.GetContent(ctx, doc.ID)
		return messages.DocumentContentLoaded{DocumentID: doc.ID, Content: content, Err: err}
	}
}

// Init implements the view contract; loading starts in SetDocument.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v, v.handleKey(msg)

	case messages.DocumentContentLoaded:
		if v.document != nil && msg.DocumentID != "" && msg.DocumentID != v.document.ID {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.content = msg.Content
			v.pages = domain.SplitPages(msg.Content)
			v.layout()
			if v.jumpTo > 0 {
				v.GotoPage(v.jumpTo)
			}
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		from := v.from
		return func() tea.Msg { return messages.ViewChanged{View: from} }
	case "o":
		if v.document == nil || v.documentService == nil {
			return nil
		}
		svc, ctx, id := v.documentService, v.ctx, v.document.ID
		return func() tea.Msg {
			if err := svc.Open(ctx, id); err != nil {
				return messages.ErrorOccurred{Err: err}
			}
			return nil
		}
	case "n", "]":
		v.GotoPage(v.CurrentPage() + 1)
	case "p", "[":
		v.GotoPage(v.CurrentPage() - 1)
	case "g", "home":
		v.viewport.GotoTop()
	case "G", "end":
		v.viewport.GotoBottom()
	default:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return cmd
	}
	return nil
}

// layout wraps every page to the view width and records where each page
// starts so the reader can jump between them.
func (v *View) layout() {
	v.lines = nil
	v.pageStarts = nil
	width := max(v.viewport.Width-2, 20)
	headed := len(v.pages) > 1

	for _, p := range v.pages {
		if headed && len(v.lines) > 0 {
			v.lines = append(v.lines, "")
		}
		v.pageStarts = append(v.pageStarts, len(v.lines))
		if headed {
			v.lines = append(v.lines, v.styles.Subtitle.Render(fmt.Sprintf("Page %d", p.Number)))
		}
		text := strings.TrimRight(p.Text, "\n")
		if strings.TrimSpace(text) == "" {
			v.lines = append(v.lines, v.styles.Muted.Render("(blank page)"))
			continue
		}
		v.lines = append(v.lines, strings.Split(ansi.Wrap(text, width, ""), "\n")...)
	}
	v.viewport.SetContent(strings.Join(v.lines, "\n"))
}

// GotoPage scrolls to the start of a page number, clamped to the document.
func (v *View) GotoPage(number int) {
	if len(v.pages) == 0 {
		return
	}
	i := min(max(number-1, 0), len(v.pages)-1)
	v.viewport.SetYOffset(v.pageStarts[i])
}

// CurrentPage returns the number of the page at the top of the viewport.
func (v *View) CurrentPage() int {
	if len(v.pages) == 0 {
		return 0
	}
	current := 0
	for i, start := range v.pageStarts {
		if start <= v.viewport.YOffset {
			current = i
		}
	}
	return v.pages[current].Number
}

// View renders the document content view.
func (v *View) View() string {
	title := "Document Content"
	if v.document != nil {
		title = v.document.Filename
		if title == "" {
			title = v.document.ID
		}
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading content..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.pages) == 0:
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		b.WriteString(v.viewport.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Page %d of %d  [%.0f%%]",
			v.CurrentPage(), len(v.pages), v.viewport.ScrollPercent()*100)))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [n/p] next/prev page  [g/G] top/bottom  [o] open file  [esc] back"))
	return b.String()
}

// SetDimensions resizes the reader and rewraps the text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = max(width-2, 20)
	v.viewport.Height = max(height-chrome, 1)
	if v.pages != nil {
		v.layout()
	}
}

// Document returns the current document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Content returns the raw document text.
func (v *View) Content() string {
	return v.content
}

// From returns the view that esc returns to.
func (v *View) From() messages.ViewType {
	return v.from
}

// Lines returns the wrapped lines shown in the viewport.
func (v *View) Lines() []string {
	return v.lines
}

// Offset returns the index of the first visible line.
func (v *View) Offset() int {
	return v.viewport.YOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
