package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/core/ports/driven"
)

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

const conversationColumns = "id, uuid, title, persona_id, archived, metadata, created_at, updated_at"

// defaultListLimit is the page size used when callers pass zero.
const defaultListLimit = 50

// Create persists a new conversation.
func (s *conversationStore) Create(ctx context.Context, title string, personaID int64) (*domain.Conversation, error) {
	if title == "" {
		return nil, fmt.Errorf("conversation title is required: %w", domain.ErrInvalidInput)
	}

	c := domain.NewConversation(title, personaID)
	res, err := s.store.execInvalidating(ctx, []string{"conversations"}, `
		INSERT INTO conversations (uuid, title, persona_id, archived, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, ?, ?)
	`, c.UUID, c.Title, nullInt64(c.PersonaID), c.Archived, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading conversation id: %w", err)
	}
	return &c, nil
}

// Get retrieves a conversation by ID.
func (s *conversationStore) Get(ctx context.Context, id int64) (*domain.Conversation, error) {
	query := "SELECT " + conversationColumns + " FROM conversations WHERE id = ?"
	c, err := readThrough(ctx, s.store, TTLDefault, []string{"conversations"}, query, []any{id},
		func(rows *sql.Rows) (domain.Conversation, error) {
			if !rows.Next() {
				return domain.Conversation{}, domain.ErrNotFound
			}
			return scanConversation(rows)
		})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns conversations ordered by most recently updated.
func (s *conversationStore) List(ctx context.Context, limit, offset int, includeArchived bool) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := "SELECT " + conversationColumns + " FROM conversations"
	if !includeArchived {
		query += " WHERE archived = FALSE"
	}
	query += " ORDER BY updated_at DESC LIMIT ? OFFSET ?"

	return readThrough(ctx, s.store, TTLDefault, []string{"conversations"}, query,
		[]any{limit, offset}, scanConversations)
}

// Search returns conversations whose title or message content matches
// the query, using the full-text index.
func (s *conversationStore) Search(ctx context.Context, query string, limit int) ([]domain.Conversation, error) {
	match := ftsMatch(query)
	if match == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	stmt := `
		SELECT ` + conversationColumns + ` FROM conversations c
		WHERE c.id IN (
			SELECT conversation_id FROM conversations_fts WHERE conversations_fts MATCH ?
			UNION
			SELECT conversation_id FROM messages_fts WHERE messages_fts MATCH ?
		)
		ORDER BY c.updated_at DESC LIMIT ?`

	return readThrough(ctx, s.store, TTLVolatile, []string{"conversations", "messages"}, stmt,
		[]any{match, match, limit}, scanConversations)
}

// SetArchived archives or unarchives a conversation.
func (s *conversationStore) SetArchived(ctx context.Context, id int64, archived bool) error {
	res, err := s.store.execInvalidating(ctx, []string{"conversations"}, `
		UPDATE conversations SET archived = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, archived, id)
	if err != nil {
		return fmt.Errorf("archiving conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a conversation; its messages cascade.
func (s *conversationStore) Delete(ctx context.Context, id int64) error {
	res, err := s.store.execInvalidating(ctx, []string{"conversations", "messages"},
		"DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanConversation(rows *sql.Rows) (domain.Conversation, error) {
	var c domain.Conversation
	var personaID sql.NullInt64
	var metadataJSON sql.NullString
	var createdAt, updatedAt sql.NullTime
	if err := rows.Scan(&c.ID, &c.UUID, &c.Title, &personaID, &c.Archived,
		&metadataJSON, &createdAt, &updatedAt); err != nil {
		return domain.Conversation{}, fmt.Errorf("scanning conversation: %w", err)
	}

	c.PersonaID = personaID.Int64
	if metadataJSON.Valid && metadataJSON.String != jsonNull {
		var meta domain.ConversationMetadata
		if err := json.Unmarshal([]byte(metadataJSON.String), &meta); err != nil {
			return domain.Conversation{}, fmt.Errorf("unmarshaling conversation metadata: %w", err)
		}
		c.Metadata = &meta
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return c, nil
}

func scanConversations(rows *sql.Rows) ([]domain.Conversation, error) {
	var out []domain.Conversation //nolint:prealloc // size unknown from query
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullInt64 converts a zero ID to a SQL NULL.
func nullInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
