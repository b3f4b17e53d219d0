package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/core/ports/driven"
)

// messageStore implements driven.MessageStore.
type messageStore struct {
	store *Store
}

var _ driven.MessageStore = (*messageStore)(nil)

const insertMessageSQL = `
	INSERT INTO messages (conversation_id, role, content, tokens_used, model_used, metadata, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

const bumpConversationSQL = `
	UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`

// Add persists a message and advances the parent conversation's
// updated_at atomically.
func (s *messageStore) Add(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	if err := validateMessage(msg); err != nil {
		return nil, err
	}
	metadataJSON, err := marshalMetadata(msg.Metadata)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTransaction(ctx, func(tx *Tx) error {
		res, err := tx.Exec(ctx, insertMessageSQL,
			msg.ConversationID, string(msg.Role), msg.Content, msg.TokensUsed,
			nullString(msg.ModelUsed), metadataJSON, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting message: %w", err)
		}
		msg.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading message id: %w", err)
		}

		if _, err := tx.Exec(ctx, bumpConversationSQL, msg.ConversationID); err != nil {
			return fmt.Errorf("updating conversation: %w", err)
		}
		tx.Touch("messages", "conversations")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// AddBatch persists messages through the batch writer. All rows flush
// in one transaction; a failed flush persists none of them.
func (s *messageStore) AddBatch(ctx context.Context, msgs []domain.Message) (int, error) {
	if len(msgs) == 0 {
		return 0, nil
	}

	w, err := s.store.NewBatchWriter(len(msgs), FlushAtBoundary)
	if err != nil {
		return 0, err
	}

	conversations := make(map[int64]struct{})
	for _, msg := range msgs {
		if err := validateMessage(msg); err != nil {
			return 0, err
		}
		metadataJSON, err := marshalMetadata(msg.Metadata)
		if err != nil {
			return 0, err
		}
		_, err = w.Add(ctx, BatchRow{
			Table: "messages",
			Query: insertMessageSQL,
			Args: []any{msg.ConversationID, string(msg.Role), msg.Content,
				msg.TokensUsed, nullString(msg.ModelUsed), metadataJSON, msg.CreatedAt},
		})
		if err != nil {
			return 0, err
		}
		conversations[msg.ConversationID] = struct{}{}
	}
	for id := range conversations {
		if _, err := w.Add(ctx, BatchRow{Table: "conversations", Query: bumpConversationSQL, Args: []any{id}}); err != nil {
			return 0, err
		}
	}

	if _, err := w.Flush(ctx); err != nil {
		return 0, err
	}
	return len(msgs), nil
}

// ListByConversation returns a conversation's messages in creation order.
func (s *messageStore) ListByConversation(ctx context.Context, conversationID int64) ([]domain.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, tokens_used, model_used, metadata, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at, id`

	return readThrough(ctx, s.store, TTLVolatile, []string{"messages"}, query,
		[]any{conversationID}, func(rows *sql.Rows) ([]domain.Message, error) {
			var out []domain.Message //nolint:prealloc // size unknown from query
			for rows.Next() {
				var m domain.Message
				var role string
				var modelUsed, metadataJSON sql.NullString
				var createdAt sql.NullTime
				if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content,
					&m.TokensUsed, &modelUsed, &metadataJSON, &createdAt); err != nil {
					return nil, fmt.Errorf("scanning message: %w", err)
				}
				m.Role = domain.MessageRole(role)
				m.ModelUsed = modelUsed.String
				if metadataJSON.Valid && metadataJSON.String != jsonNull {
					if err := json.Unmarshal([]byte(metadataJSON.String), &m.Metadata); err != nil {
						return nil, fmt.Errorf("unmarshaling message metadata: %w", err)
					}
				}
				if createdAt.Valid {
					m.CreatedAt = createdAt.Time
				}
				out = append(out, m)
			}
			return out, nil
		})
}

func validateMessage(msg domain.Message) error {
	if msg.ConversationID == 0 {
		return fmt.Errorf("message conversation id is required: %w", domain.ErrInvalidInput)
	}
	if !msg.Role.Valid() {
		return fmt.Errorf("unknown message role %q: %w", msg.Role, domain.ErrInvalidInput)
	}
	if msg.Content == "" {
		return fmt.Errorf("message content is required: %w", domain.ErrInvalidInput)
	}
	return nil
}

// marshalMetadata renders metadata as JSON, or NULL when absent.
func marshalMetadata(meta map[string]any) (any, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata: %w", err)
	}
	return string(b), nil
}
