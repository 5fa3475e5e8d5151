package domain

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn written by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a turn produced by the model.
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the two supported values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one exchange unit in a conversation. Assistant turns are only
// persisted with their final, non-empty content; an empty assistant turn
// exists solely in the transport layer while a response is streaming.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session groups the messages of one conversation.
type Session struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	MessageCount int       `json:"messageCount"`
}

// Message is a persisted conversation turn.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Turn converts a persisted message back into its history representation.
func (m Message) Turn() Turn {
	return Turn{Role: m.Role, Content: m.Content}
}
