// Package eml extracts email messages such as RFIs and transmittals.
// The message body is page 1; each text attachment follows as its own page.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles RFC 822 email files.
type Extractor struct{}

// New creates a new email extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".eml"}
}

// part is one decoded leaf of a message.
type part struct {
	mediaType  string
	filename   string
	attachment bool
	body       string
}

// Extract returns the message body followed by its text attachments.
func (e *Extractor) Extract(_ context.Context, upload *domain.Upload) ([]domain.Page, error) {
	if upload == nil {
		return nil, domain.ErrInvalidInput
	}

	msg, err := mail.ReadMessage(bytes.NewReader(upload.Content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", upload.Filename, domain.ErrExtraction, err)
	}

	parts, err := readParts(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", upload.Filename, domain.ErrExtraction, err)
	}

	var plain, html []string
	var attachments []part
	var binaries []string
	for _, p := range parts {
		switch {
		case p.attachment && strings.HasPrefix(p.mediaType, "text/"):
			attachments = append(attachments, p)
		case p.attachment:
			binaries = append(binaries, p.filename)
		case p.mediaType == "text/plain":
			plain = append(plain, p.body)
		case p.mediaType == "text/html":
			html = append(html, stripTags(p.body))
		}
	}

	var sb strings.Builder
	for _, h := range []string{"From", "To", "Cc", "Date", "Subject"} {
		if v := decodeHeader(msg.Header.Get(h)); v != "" {
			fmt.Fprintf(&sb, "%s: %s\n", h, v)
		}
	}
	if names := append(attachmentNames(attachments), binaries...); len(names) > 0 {
		fmt.Fprintf(&sb, "Attachments: %s\n", strings.Join(names, ", "))
	}
	sb.WriteString("\n")
	// Plain text wins when both alternatives are present.
	if len(plain) > 0 {
		sb.WriteString(strings.Join(plain, "\n"))
	} else {
		sb.WriteString(strings.Join(html, "\n"))
	}

	pages := []domain.Page{{Number: 1, Text: strings.TrimSpace(sb.String())}}
	for _, a := range attachments {
		pages = append(pages, domain.Page{
			Number: len(pages) + 1,
			Text:   "Attachment: " + a.filename + "\n\n" + strings.TrimSpace(a.body),
		})
	}
	return pages, nil
}

func attachmentNames(parts []part) []string {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.filename
	}
	return names
}

// readParts walks a possibly nested MIME body and returns its leaves.
func readParts(contentType, encoding string, body io.Reader) ([]part, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if !strings.HasPrefix(mediaType, "multipart/") {
		data, err := decodeBody(encoding, body)
		if err != nil {
			return nil, err
		}
		return []part{{mediaType: mediaType, body: string(data)}}, nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, errors.New("multipart message without boundary")
	}

	var out []part
	mr := multipart.NewReader(body, boundary)
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}

		partType := p.Header.Get("Content-Type")
		if sub, _, err := mime.ParseMediaType(partType); err == nil && strings.HasPrefix(sub, "multipart/") {
			nested, err := readParts(partType, "", p)
			if err != nil {
				return out, err
			}
			out = append(out, nested...)
			continue
		}

		leaf, err := readParts(partType, p.Header.Get("Content-Transfer-Encoding"), p)
		if err != nil {
			return out, err
		}
		disposition, _, _ := mime.ParseMediaType(p.Header.Get("Content-Disposition"))
		for i := range leaf {
			leaf[i].filename = decodeHeader(p.FileName())
			leaf[i].attachment = disposition == "attachment" || leaf[i].filename != ""
			if leaf[i].attachment && leaf[i].filename == "" {
				leaf[i].filename = "unnamed"
			}
		}
		out = append(out, leaf...)
	}
}

// decodeBody undoes base64 transfer encoding. Quoted-printable parts are
// already decoded by mime/multipart.
func decodeBody(encoding string, r io.Reader) ([]byte, error) {
	if strings.EqualFold(strings.TrimSpace(encoding), "base64") {
		r = base64.NewDecoder(base64.StdEncoding, &newlineStripper{r: r})
	}
	return io.ReadAll(r)
}

// newlineStripper drops CR and LF so wrapped base64 decodes cleanly.
type newlineStripper struct {
	r io.Reader
}

func (n *newlineStripper) Read(p []byte) (int, error) {
	for {
		count, err := n.r.Read(p)
		kept := 0
		for _, b := range p[:count] {
			if b != '\r' && b != '\n' {
				p[kept] = b
				kept++
			}
		}
		if kept > 0 || err != nil {
			return kept, err
		}
	}
}

// decodeHeader decodes RFC 2047 encoded words.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// stripTags removes markup from an HTML body and drops blank lines.
func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			sb.WriteByte(' ')
		case !inTag:
			sb.WriteRune(r)
		}
	}

	lines := strings.Split(sb.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
