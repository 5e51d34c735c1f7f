// Package markdown extracts text from Markdown documents.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Extract strips formatting and returns one page.
func (e *Extractor) Extract(_ context.Context, upload *domain.Upload) ([]domain.Page, error) {
	if upload == nil {
		return nil, domain.ErrInvalidInput
	}
	return domain.SplitPages(stripMarkdown(string(upload.Content))), nil
}

var (
	fence        = regexp.MustCompile("(?m)^```.*$")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*)([^*_\n]+)(\*\*|__|\*)`)
	blockquote   = regexp.MustCompile(`(?m)^>\s?`)
	rule         = regexp.MustCompile(`(?m)^\s*[-*_]{3,}\s*$`)
	listMarker   = regexp.MustCompile(`(?m)^(\s*)([-*+]|\d+\.)\s+`)
	tableDivider = regexp.MustCompile(`(?m)^\s*\|?(\s*:?-+:?\s*\|)+\s*:?-*:?\s*$`)
	pipes        = regexp.MustCompile(`\s*\|\s*`)
	manyNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes Markdown syntax. Code blocks keep their content
// because specification sections often quote tables in them.
func stripMarkdown(content string) string {
	content = fence.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquote.ReplaceAllString(content, "")
	content = tableDivider.ReplaceAllString(content, "")
	content = rule.ReplaceAllString(content, "")
	content = listMarker.ReplaceAllString(content, "$1")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.Contains(line, "|") {
			line = strings.Trim(strings.TrimSpace(line), "|")
			line = pipes.ReplaceAllString(line, "\t")
		}
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = strings.Join(lines, "\n")
	content = manyNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
