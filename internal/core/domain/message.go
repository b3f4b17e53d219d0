package domain

import "time"

// MessageRole identifies the author of a message.
type MessageRole string

// Message roles.
const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Valid reports whether the role is one of the known values.
func (r MessageRole) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single turn within a conversation.
type Message struct {
	// ID is the database row identifier. Zero until persisted.
	ID int64

	// ConversationID links the message to its conversation.
	ConversationID int64

	// Role identifies the author: user, assistant, or system.
	Role MessageRole

	// Content is the message body.
	Content string

	// TokensUsed is the provider-reported token count. Zero when unknown.
	TokensUsed int

	// ModelUsed is the model that produced an assistant message.
	ModelUsed string

	// Metadata holds provider-specific extras. Nil when absent.
	Metadata map[string]any

	// CreatedAt orders messages within a conversation.
	CreatedAt time.Time
}

// NewMessage creates an unpersisted message.
func NewMessage(conversationID int64, role MessageRole, content string) Message {
	return Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
}
