package driven

import (
	"context"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// ConversationStore persists conversations.
type ConversationStore interface {
	// Create persists a new conversation and returns it with its
	// assigned ID.
	Create(ctx context.Context, title string, personaID int64) (*domain.Conversation, error)

	// Get retrieves a conversation by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.Conversation, error)

	// List returns conversations ordered by most recently updated.
	// Archived conversations are excluded unless includeArchived is set.
	List(ctx context.Context, limit, offset int, includeArchived bool) ([]domain.Conversation, error)

	// Search returns conversations whose title or message content
	// matches the query, ordered by most recently updated.
	Search(ctx context.Context, query string, limit int) ([]domain.Conversation, error)

	// SearchMessages runs ranked full-text search over message content
	// and returns matches with highlighted snippets, most relevant
	// first.
	SearchMessages(ctx context.Context, query string, limit int) ([]domain.SearchHit, error)

	// SetArchived archives or unarchives a conversation.
	SetArchived(ctx context.Context, id int64, archived bool) error

	// Delete removes a conversation and all of its messages.
	Delete(ctx context.Context, id int64) error
}
