package lexchat

import "time"

// Role is a conversation turn author.
type Role string

const (
	// RoleUser marks a question turn.
	RoleUser Role = "user"
	// RoleAssistant marks an answer turn.
	RoleAssistant Role = "assistant"
)

// Turn is one conversation exchange entry.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ResultChunk is one streamed answer fragment.
type ResultChunk struct {
	QueryResult string `json:"queryResult"`
}

// Session is a persisted conversation.
type Session struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	MessageCount int       `json:"messageCount"`
}

// Message is one persisted conversation turn.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// QueryRequest is the input of the stateless query endpoint.
type QueryRequest struct {
	Query               string `json:"query"`
	ConversationHistory []Turn `json:"conversationHistory,omitempty"`
}

// ChatRequest is the input of the session-backed chat endpoint. An empty
// SessionID starts a new session.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId,omitempty"`
}
