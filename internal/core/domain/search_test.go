package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilters_Allows(t *testing.T) {
	chunk := &Chunk{DocumentID: "doc1", PageNumber: 4}

	tests := []struct {
		name     string
		filters  Filters
		expected bool
	}{
		{"empty filters", Filters{}, true},
		{"matching document", Filters{DocumentID: "doc1"}, true},
		{"other document", Filters{DocumentID: "doc2"}, false},
		{"page inside range", Filters{PageFrom: 2, PageTo: 4}, true},
		{"page before range", Filters{PageFrom: 5}, false},
		{"page after range", Filters{PageTo: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filters.Allows(chunk))
		})
	}
}

func TestFilters_IsEmpty(t *testing.T) {
	assert.True(t, Filters{}.IsEmpty())
	assert.False(t, Filters{PageTo: 1}.IsEmpty())
}

func TestConfidenceFor(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ConfidenceFor(1.0))
	assert.Equal(t, ConfidenceHigh, ConfidenceFor(0.75))
	assert.Equal(t, ConfidenceMedium, ConfidenceFor(0.5))
	assert.Equal(t, ConfidenceLow, ConfidenceFor(0.1))
	assert.Equal(t, ConfidenceNone, ConfidenceFor(0))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))

	long := strings.Repeat("é", 250)
	p := Preview(long)
	assert.True(t, strings.HasSuffix(p, "..."))
	assert.Equal(t, PreviewLength+3, len([]rune(p)))
}

func TestSourcesFrom_DedupesByFilePage(t *testing.T) {
	matches := []Match{
		{Chunk: Chunk{Filename: "a.pdf", PageNumber: 1, Content: "one"}},
		{Chunk: Chunk{Filename: "a.pdf", PageNumber: 1, Content: "two"}},
		{Chunk: Chunk{Filename: "a.pdf", PageNumber: 2, Content: "three"}},
		{Chunk: Chunk{Filename: "b.pdf", PageNumber: 1, Content: "four"}},
	}

	sources := SourcesFrom(matches, 0)
	assert.Len(t, sources, 3)
	assert.Equal(t, "one", sources[0].Preview)

	assert.Len(t, SourcesFrom(matches, 2), 2)
}
