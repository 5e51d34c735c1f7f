package domain

import (
	"crypto/md5" //nolint:gosec // Fingerprint only, not a security boundary.
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// PageBreak separates pages in extracted text, as emitted by pdftotext.
const PageBreak = "\f"

// Document represents an uploaded file that has been ingested.
type Document struct {
	// ID is a fingerprint of the filename. Re-uploading the same
	// logical file yields the same ID, which makes ingestion idempotent.
	ID string

	// Filename is the original upload name, used for citations.
	Filename string

	// StoragePath is where the raw upload was persisted.
	StoragePath string

	// ChunkCount is the number of chunks produced. Zero is valid
	// (for example, a scanned PDF with no text layer).
	ChunkCount int

	// UploadedAt is when the document was last ingested.
	UploadedAt time.Time
}

// Chunk represents a searchable unit within a document page.
// Chunks are immutable once created and owned by the index store.
type Chunk struct {
	// ID is derived from (DocumentID, PageNumber, ChunkIndex).
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Filename is denormalised from the Document for citation.
	Filename string

	// PageNumber is the 1-based page the text was extracted from.
	PageNumber int

	// ChunkIndex is the ordinal position within the page.
	ChunkIndex int

	// Content is the text content of this chunk.
	Content string

	// Terms is the lexical posting table: analysed term to frequency.
	Terms map[string]int

	// Embedding is the dense vector representation for semantic search.
	Embedding []float32
}

// Page is one unit of extracted text.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the raw extracted text.
	Text string
}

// Upload is a raw document handed to ingestion.
type Upload struct {
	// Filename is the client-supplied name.
	Filename string

	// Content is the raw file bytes.
	Content []byte
}

// ExtractedDocument pairs a Document with its extracted pages.
// It is the input to the chunking pipeline.
type ExtractedDocument struct {
	Document Document
	Pages    []Page
}

// DocumentID returns the stable fingerprint for a filename.
func DocumentID(filename string) string {
	sum := md5.Sum([]byte(filename)) //nolint:gosec // See import.
	return hex.EncodeToString(sum[:])
}

// ChunkID returns the deterministic chunk identifier.
func ChunkID(documentID string, page, index int) string {
	return fmt.Sprintf("%s_page%d_chunk%d", documentID, page, index)
}

// SplitPages splits text on form feeds into numbered pages.
// A trailing form feed does not start a new page. Blank pages keep
// their number so later pages are cited correctly.
func SplitPages(text string) []Page {
	text = strings.TrimSuffix(text, PageBreak)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, PageBreak)
	pages := make([]Page, len(parts))
	for i, part := range parts {
		pages[i] = Page{Number: i + 1, Text: part}
	}
	return pages
}
