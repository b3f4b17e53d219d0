package domain

import (
	"time"

	"github.com/google/uuid"
)

// Priority classifies how prominently a conversation is surfaced.
type Priority string

// Conversation priorities.
const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Conversation is a chat session with an AI provider.
type Conversation struct {
	// ID is the database row identifier. Zero until persisted.
	ID int64

	// UUID is the stable external identifier, safe to expose to callers.
	UUID string

	// Title is the human-readable conversation title.
	Title string

	// PersonaID references the persona active in this conversation.
	// Zero for no persona.
	PersonaID int64

	// Archived hides the conversation from default listings.
	Archived bool

	// Metadata holds derived statistics and tags. Nil when not loaded.
	Metadata *ConversationMetadata

	// CreatedAt is when the conversation was created.
	CreatedAt time.Time

	// UpdatedAt advances whenever a message is added or the conversation
	// is modified. Listings order by this field.
	UpdatedAt time.Time
}

// ConversationMetadata holds derived statistics for a conversation.
type ConversationMetadata struct {
	TotalMessages int      `json:"total_messages"`
	TotalTokens   int      `json:"total_tokens"`
	LastModelUsed string   `json:"last_model_used,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Priority      Priority `json:"priority,omitempty"`
}

// NewConversation creates an unpersisted conversation with a fresh UUID.
func NewConversation(title string, personaID int64) Conversation {
	now := time.Now().UTC()
	return Conversation{
		UUID:      uuid.NewString(),
		Title:     title,
		PersonaID: personaID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
