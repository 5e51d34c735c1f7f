// Package analysis turns text into the lexical terms used for ranking.
//
// Text is case-folded, split on non-alphanumeric runs, filtered against
// an English stop-word list and stemmed with the Snowball English stemmer.
// Chunks and queries must go through the same Analyzer so their terms meet.
package analysis

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Analyzer is a stop-word filtering, stemming tokenizer.
// It is stateless and safe for concurrent use.
type Analyzer struct {
	stopWords map[string]bool
	minLength int
	maxLength int
	stem      bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithoutStemming disables the Snowball stemmer.
func WithoutStemming() Option {
	return func(a *Analyzer) {
		a.stem = false
	}
}

// WithStopWords replaces the default stop-word list.
func WithStopWords(words []string) Option {
	return func(a *Analyzer) {
		a.stopWords = toSet(words)
	}
}

// New creates an Analyzer with English defaults.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		stopWords: toSet(defaultStopWords),
		minLength: 2,
		maxLength: 50,
		stem:      true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Tokens returns the analysed terms in order, duplicates kept.
func (a *Analyzer) Tokens(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if a.stopWords[word] {
			continue
		}
		if n := len([]rune(word)); n < a.minLength || n > a.maxLength {
			continue
		}
		tokens = append(tokens, a.stemWord(word))
	}
	return tokens
}

// Terms returns each analysed term with its frequency.
func (a *Analyzer) Terms(text string) map[string]int {
	tokens := a.Tokens(text)
	freq := make(map[string]int, len(tokens))
	for _, token := range tokens {
		freq[token]++
	}
	return freq
}

func (a *Analyzer) stemWord(word string) string {
	if !a.stem || !isLetters(word) {
		return word
	}
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}

// isLetters reports whether word is worth stemming. Marks such as
// "d101" and plain numbers are kept verbatim.
func isLetters(word string) bool {
	for _, r := range word {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	return true
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}
