package domain

import (
	"math"
	"strings"
	"unicode/utf8"
)

// EvaluationCase is a fixed question and the keywords a grounded answer
// is expected to mention.
type EvaluationCase struct {
	Query    string   `json:"query"`
	Category string   `json:"category"`
	Keywords []string `json:"expected_keywords"`
}

// DefaultEvaluationCases covers the questions a typical drawing and
// specification set should be able to answer.
func DefaultEvaluationCases() []EvaluationCase {
	return []EvaluationCase{
		{"What is the fire rating for corridor partitions?", "specifications",
			[]string{"fire", "rating", "corridor", "partition", "hour", "hr"}},
		{"What flooring material is specified for the lobby?", "materials",
			[]string{"floor", "lobby", "material", "finish"}},
		{"Are there any accessibility requirements for doors?", "compliance",
			[]string{"accessibility", "door", "ada", "requirement", "clearance"}},
		{"What are the door dimensions?", "dimensions",
			[]string{"door", "dimension", "width", "height", "mm", "size"}},
		{"What types of HVAC systems are specified?", "mep",
			[]string{"hvac", "system", "mechanical", "air", "conditioning"}},
		{"What is the ceiling height in the main corridor?", "dimensions",
			[]string{"ceiling", "height", "corridor", "meter", "mm"}},
		{"What is the wall construction specification?", "specifications",
			[]string{"wall", "construction", "partition", "specification"}},
		{"Are there fire safety systems specified?", "safety",
			[]string{"fire", "safety", "system", "alarm", "sprinkler", "suppression"}},
	}
}

// Correctness grades one evaluated answer.
type Correctness string

// Correctness grades.
const (
	CorrectnessCorrect   Correctness = "correct"
	CorrectnessPartial   Correctness = "partially_correct"
	CorrectnessIncorrect Correctness = "incorrect"
	CorrectnessError     Correctness = "error"
)

// Grading thresholds on the share of expected keywords found.
const (
	correctKeywordShare = 0.3
	partialKeywordShare = 0.2
	minAnswerRunes      = 20
	answerPreviewRunes  = 200
)

// EvaluationResult is the outcome of one case.
type EvaluationResult struct {
	Query        string      `json:"query"`
	Category     string      `json:"category"`
	Answer       string      `json:"answer"`
	SourcesCount int         `json:"sources_count"`
	KeywordScore float64     `json:"keyword_score"`
	Correctness  Correctness `json:"correctness"`
	HasSources   bool        `json:"has_sources"`
}

// EvaluationSummary counts results per grade.
type EvaluationSummary struct {
	Correct          int `json:"correct"`
	PartiallyCorrect int `json:"partially_correct"`
	Incorrect        int `json:"incorrect"`
	Error            int `json:"error"`
	WithSources      int `json:"total_with_sources"`
}

// Add counts r.
func (s *EvaluationSummary) Add(r *EvaluationResult) {
	switch r.Correctness {
	case CorrectnessCorrect:
		s.Correct++
	case CorrectnessPartial:
		s.PartiallyCorrect++
	case CorrectnessIncorrect:
		s.Incorrect++
	case CorrectnessError:
		s.Error++
	}
	if r.HasSources {
		s.WithSources++
	}
}

// EvaluationReport is the result of a full evaluation run.
type EvaluationReport struct {
	TotalQueries  int                `json:"total_queries"`
	IndexedChunks int                `json:"indexed_chunks"`
	Results       []EvaluationResult `json:"results"`
	Summary       EvaluationSummary  `json:"summary"`
}

// Grade scores answer against c. The keyword score is the share of
// expected keywords found as case-insensitive substrings, rounded to two
// decimals. An answer counts as correct when it cites sources, is longer
// than a stub and mentions at least 30% of the keywords.
func (c *EvaluationCase) Grade(answer string, sources int) EvaluationResult {
	lower := strings.ToLower(answer)
	var hits int
	for _, k := range c.Keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			hits++
		}
	}
	var score float64
	if len(c.Keywords) > 0 {
		score = math.Round(float64(hits)/float64(len(c.Keywords))*100) / 100
	}

	hasAnswer := utf8.RuneCountInString(lower) > minAnswerRunes && !strings.Contains(lower, "error")
	hasSources := sources > 0

	grade := CorrectnessIncorrect
	switch {
	case score >= correctKeywordShare && hasSources && hasAnswer:
		grade = CorrectnessCorrect
	case score >= partialKeywordShare && hasAnswer:
		grade = CorrectnessPartial
	}

	return EvaluationResult{
		Query:        c.Query,
		Category:     c.Category,
		Answer:       preview(answer, answerPreviewRunes),
		SourcesCount: sources,
		KeywordScore: score,
		Correctness:  grade,
		HasSources:   hasSources,
	}
}

// Failed records a case whose query returned an error.
func (c *EvaluationCase) Failed(err error) EvaluationResult {
	return EvaluationResult{
		Query:       c.Query,
		Category:    c.Category,
		Answer:      "Error: " + err.Error(),
		Correctness: CorrectnessError,
	}
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
