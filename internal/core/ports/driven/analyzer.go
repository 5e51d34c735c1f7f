package driven

// Analyzer turns text into lexical terms.
// The same analyzer must be used for chunks and queries.
type Analyzer interface {
	// Terms returns each analysed term with its frequency.
	Terms(text string) map[string]int

	// Tokens returns the analysed terms in order, duplicates kept.
	Tokens(text string) []string
}
