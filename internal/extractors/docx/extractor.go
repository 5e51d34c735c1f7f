// Package docx extracts Word documents. The text of word/document.xml
// becomes pages split at explicit page breaks.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const documentPart = "word/document.xml"

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".docx"}
}

// Extract reads the main document part of the archive.
func (e *Extractor) Extract(_ context.Context, upload *domain.Upload) ([]domain.Page, error) {
	if upload == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(upload.Content), int64(len(upload.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a docx archive: %w", domain.ErrExtraction, upload.Filename, err)
	}

	content, err := readPart(reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, upload.Filename, err)
	}

	text, err := parseDocumentXML(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: parse document.xml: %w", domain.ErrExtraction, upload.Filename, err)
	}
	return domain.SplitPages(text), nil
}

func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("missing %s", name)
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text   []textElement `xml:"t"`
	Tabs   []struct{}    `xml:"tab"`
	Breaks []lineBreak   `xml:"br"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type lineBreak struct {
	Type string `xml:"type,attr"`
}

// parseDocumentXML joins paragraphs with newlines. A <w:br w:type="page"/>
// inside a run emits a page break.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", err
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, br := range r.Breaks {
				if br.Type == "page" {
					result.WriteString(domain.PageBreak)
				}
			}
			if len(r.Tabs) > 0 {
				result.WriteString("\t")
			}
			for _, t := range r.Text {
				result.WriteString(t.Content)
			}
		}
	}
	return strings.TrimSpace(result.String()), nil
}
