package domain

// DefaultConflictTopics are the areas where drawings and specifications
// most often disagree.
func DefaultConflictTopics() []string {
	return []string{
		"door fire ratings",
		"wall fire ratings",
		"floor finishes",
		"accessibility requirements",
		"dimensions and measurements",
	}
}

// Conflict is a potential inconsistency the model flagged for a topic.
type Conflict struct {
	Topic      string     `json:"topic" yaml:"topic"`
	Finding    string     `json:"potential_conflict" yaml:"potential_conflict"`
	Sources    []Source   `json:"sources" yaml:"sources"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// ConflictReport lists the conflicts found across the checked topics.
type ConflictReport struct {
	TopicsChecked  int        `json:"topics_checked" yaml:"topics_checked"`
	ConflictsFound int        `json:"conflicts_found" yaml:"conflicts_found"`
	Conflicts      []Conflict `json:"conflicts" yaml:"conflicts"`
	Analysis       string     `json:"analysis" yaml:"analysis"`
}
