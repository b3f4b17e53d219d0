package driving

import (
	"context"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// ConversationService is the repository API for conversations and their
// messages.
type ConversationService interface {
	// Create starts a new conversation. The title is required.
	Create(ctx context.Context, title string, personaID int64) (*domain.Conversation, error)

	// Get retrieves a conversation by ID.
	Get(ctx context.Context, id int64) (*domain.Conversation, error)

	// List returns conversations, most recently updated first. A zero
	// limit applies the default page size.
	List(ctx context.Context, limit, offset int, includeArchived bool) ([]domain.Conversation, error)

	// Search finds conversations by title or message content.
	Search(ctx context.Context, query string, limit int) ([]domain.Conversation, error)

	// SearchMessages finds individual messages by content, ranked by
	// relevance with highlighted snippets.
	SearchMessages(ctx context.Context, query string, limit int) ([]domain.SearchHit, error)

	// SetArchived archives or unarchives a conversation.
	SetArchived(ctx context.Context, id int64, archived bool) error

	// Delete removes a conversation and its messages.
	Delete(ctx context.Context, id int64) error

	// AddMessage appends a message to a conversation.
	AddMessage(ctx context.Context, msg domain.Message) (*domain.Message, error)

	// AddMessages appends messages through the batched write path and
	// returns the number of rows persisted.
	AddMessages(ctx context.Context, msgs []domain.Message) (int, error)

	// Messages returns a conversation's messages in creation order.
	Messages(ctx context.Context, conversationID int64) ([]domain.Message, error)
}
