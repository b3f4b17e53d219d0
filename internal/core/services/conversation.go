package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/core/ports/driven"
	"github.com/custodia-labs/lorevault/internal/core/ports/driving"
)

// Ensure ConversationService implements the interface.
var _ driving.ConversationService = (*ConversationService)(nil)

// maxListLimit caps page sizes requested by callers.
const maxListLimit = 500

// ConversationService manages conversations and their messages.
type ConversationService struct {
	conversations driven.ConversationStore
	messages      driven.MessageStore
}

// NewConversationService creates a new conversation service.
func NewConversationService(conversations driven.ConversationStore, messages driven.MessageStore) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
	}
}

// Create starts a new conversation.
func (s *ConversationService) Create(ctx context.Context, title string, personaID int64) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("conversation title is required: %w", domain.ErrInvalidInput)
	}
	return s.conversations.Create(ctx, title, personaID)
}

// Get retrieves a conversation by ID.
func (s *ConversationService) Get(ctx context.Context, id int64) (*domain.Conversation, error) {
	return s.conversations.Get(ctx, id)
}

// List returns conversations, most recently updated first.
func (s *ConversationService) List(ctx context.Context, limit, offset int, includeArchived bool) ([]domain.Conversation, error) {
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.conversations.List(ctx, limit, offset, includeArchived)
}

// Search finds conversations by title or message content.
func (s *ConversationService) Search(ctx context.Context, query string, limit int) ([]domain.Conversation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrInvalidInput)
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.conversations.Search(ctx, query, limit)
}

// SearchMessages finds individual messages by content, ranked by
// relevance.
func (s *ConversationService) SearchMessages(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrInvalidInput)
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.conversations.SearchMessages(ctx, query, limit)
}

// SetArchived archives or unarchives a conversation.
func (s *ConversationService) SetArchived(ctx context.Context, id int64, archived bool) error {
	return s.conversations.SetArchived(ctx, id, archived)
}

// Delete removes a conversation and its messages.
func (s *ConversationService) Delete(ctx context.Context, id int64) error {
	return s.conversations.Delete(ctx, id)
}

// AddMessage appends a message to a conversation.
func (s *ConversationService) AddMessage(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	if !msg.Role.Valid() {
		return nil, fmt.Errorf("unknown message role %q: %w", msg.Role, domain.ErrInvalidInput)
	}
	if strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("message content is required: %w", domain.ErrInvalidInput)
	}
	return s.messages.Add(ctx, msg)
}

// AddMessages appends messages through the batched write path.
func (s *ConversationService) AddMessages(ctx context.Context, msgs []domain.Message) (int, error) {
	return s.messages.AddBatch(ctx, msgs)
}

// Messages returns a conversation's messages in creation order.
func (s *ConversationService) Messages(ctx context.Context, conversationID int64) ([]domain.Message, error) {
	if _, err := s.conversations.Get(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.messages.ListByConversation(ctx, conversationID)
}
