package domain

// Filters narrows retrieval to part of the corpus.
// Zero values mean "no restriction".
type Filters struct {
	// DocumentID restricts matches to one document.
	DocumentID string `json:"document_id,omitempty"`

	// PageFrom is the first page (inclusive).
	PageFrom int `json:"page_from,omitempty"`

	// PageTo is the last page (inclusive).
	PageTo int `json:"page_to,omitempty"`
}

// IsEmpty returns true if no filter is set.
func (f Filters) IsEmpty() bool {
	return f.DocumentID == "" && f.PageFrom == 0 && f.PageTo == 0
}

// Allows reports whether a chunk passes the filters.
func (f Filters) Allows(c *Chunk) bool {
	if f.DocumentID != "" && c.DocumentID != f.DocumentID {
		return false
	}
	if f.PageFrom > 0 && c.PageNumber < f.PageFrom {
		return false
	}
	if f.PageTo > 0 && c.PageNumber > f.PageTo {
		return false
	}
	return true
}

// Match is a chunk scored by the hybrid retriever.
type Match struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// LexicalScore is the normalised term overlap score in [0,1].
	LexicalScore float64

	// VectorScore is the normalised cosine similarity in [0,1].
	VectorScore float64

	// FusedScore is the weighted combination used for ranking.
	FusedScore float64
}

// SearchOptions configures a retrieval call.
type SearchOptions struct {
	// TopK is the maximum number of matches.
	TopK int

	// Filters restricts the candidate set.
	Filters Filters
}

// Source is a citation attached to an answer.
type Source struct {
	Filename string `json:"filename" yaml:"filename"`
	Page     int    `json:"page" yaml:"page"`
	Preview  string `json:"text_preview,omitempty" yaml:"text_preview,omitempty"`
}

// Confidence is a coarse label for how well an answer is grounded.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// ConfidenceFor maps the best fused score to a Confidence label.
func ConfidenceFor(topScore float64) Confidence {
	switch {
	case topScore >= 0.75:
		return ConfidenceHigh
	case topScore >= 0.4:
		return ConfidenceMedium
	case topScore > 0:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// PreviewLength is the maximum number of runes in a source preview.
const PreviewLength = 200

// Preview returns the first PreviewLength runes of text, marked with an
// ellipsis when truncated.
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= PreviewLength {
		return text
	}
	return string(r[:PreviewLength]) + "..."
}

// SourcesFrom deduplicates matches by (filename, page) preserving rank
// order and returns at most limit sources. limit <= 0 means unlimited.
func SourcesFrom(matches []Match, limit int) []Source {
	type key struct {
		file string
		page int
	}
	seen := make(map[key]bool, len(matches))
	sources := make([]Source, 0, len(matches))
	for i := range matches {
		c := &matches[i].Chunk
		k := key{c.Filename, c.PageNumber}
		if seen[k] {
			continue
		}
		seen[k] = true
		sources = append(sources, Source{
			Filename: c.Filename,
			Page:     c.PageNumber,
			Preview:  Preview(c.Content),
		})
		if limit > 0 && len(sources) == limit {
			break
		}
	}
	return sources
}
