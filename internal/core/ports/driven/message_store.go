package driven

import (
	"context"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// MessageStore persists messages within conversations.
type MessageStore interface {
	// Add persists a message and advances the parent conversation's
	// updated_at in the same transaction. Returns the message with its
	// assigned ID.
	Add(ctx context.Context, msg domain.Message) (*domain.Message, error)

	// AddBatch persists messages through the batch writer and returns
	// the number of rows flushed. All rows of a flushed batch commit
	// atomically; a failed flush persists none of them.
	AddBatch(ctx context.Context, msgs []domain.Message) (int, error)

	// ListByConversation returns a conversation's messages in creation
	// order.
	ListByConversation(ctx context.Context, conversationID int64) ([]domain.Message, error)
}
