package domain

// DefaultHistoryTurns is how many prior turns are sent with a query.
const DefaultHistoryTurns = 10

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered chat history.
type Conversation struct {
	ID    string
	Turns []Turn
}
