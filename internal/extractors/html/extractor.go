// Package html extracts readable text from HTML documents.
package html

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Extract strips markup. HTML has no pages, so the result is one page.
func (e *Extractor) Extract(_ context.Context, upload *domain.Upload) ([]domain.Page, error) {
	if upload == nil {
		return nil, domain.ErrInvalidInput
	}
	text, err := stripHTML(string(upload.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExtraction, upload.Filename, err)
	}
	return domain.SplitPages(text), nil
}

// hiddenElements never carry document text.
const hiddenElements = "head, script, style, noscript, svg, template"

var blockElements = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "blockquote": true, "pre": true, "table": true, "section": true,
	"article": true, "br": true, "hr": true, "dt": true, "dd": true, "caption": true,
}

// stripHTML drops non-content elements, turns block boundaries into
// newlines and table cells into tabs, then collapses whitespace per line.
func stripHTML(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}
	doc.Find(hiddenElements).Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		writeText(&b, n)
	}

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}

func writeText(b *strings.Builder, n *xhtml.Node) {
	switch n.Type {
	case xhtml.TextNode:
		b.WriteString(n.Data)
		return
	case xhtml.CommentNode, xhtml.DoctypeNode:
		return
	}

	block := n.Type == xhtml.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	switch {
	case block:
		b.WriteByte('\n')
	case n.Type == xhtml.ElementNode && (n.Data == "td" || n.Data == "th"):
		b.WriteByte('\t')
	}
}
