package domain

import "time"

// QueryRecord is one logged query.
type QueryRecord struct {
	Query          string    `json:"query"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Documents      []string  `json:"documents"`
	Cached         bool      `json:"cached"`
	Timestamp      time.Time `json:"timestamp"`
}

// QueryCount is a query and how often it was asked.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Analytics summarises query activity.
type Analytics struct {
	// TotalQueries is the number of logged queries.
	TotalQueries int `json:"total_queries"`

	// Recent holds the latest queries, newest last.
	Recent []QueryRecord `json:"recent_queries"`

	// Popular holds the most asked queries, most frequent first.
	Popular []QueryCount `json:"popular_queries"`

	// DocumentUsage counts how often each filename was cited.
	DocumentUsage map[string]int `json:"document_usage"`
}
