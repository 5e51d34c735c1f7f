package analysis

var defaultStopWords = []string{
	// Articles
	"a", "an", "the",

	// Pronouns
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
	"you", "your", "yours", "yourself", "yourselves",
	"he", "him", "his", "himself", "she", "her", "hers", "herself",
	"it", "its", "itself", "they", "them", "their", "theirs", "themselves",

	// Prepositions
	"of", "at", "by", "for", "with", "about", "against", "between",
	"into", "through", "during", "before", "after", "above", "below",
	"to", "from", "up", "down", "in", "out", "on", "off", "over", "under",

	// Conjunctions
	"and", "or", "but", "if", "while", "because", "as", "until",
	"than", "so", "nor", "yet",

	// Common verbs
	"is", "am", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having",
	"do", "does", "did", "doing",
	"will", "would", "should", "could", "can", "may", "might", "must",

	// Other common words
	"this", "that", "these", "those",
	"what", "which", "who", "whom", "whose", "when", "where", "why", "how",
	"all", "each", "every", "both", "few", "more", "most", "other", "some", "such",
	"no", "not", "only", "own", "same", "then", "there", "too", "very",
	"please", "tell", "show", "give", "list",
}
