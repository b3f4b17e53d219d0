package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/logger"
)

// ftsMatch turns free-form input into an FTS5 MATCH expression. Each
// term is quoted so operator characters in user input cannot change the
// query's meaning. Returns "" when the input holds no terms.
func ftsMatch(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

// SearchMessages runs ranked full-text search over message content and
// returns matches with highlighted snippets, most relevant first.
func (s *conversationStore) SearchMessages(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	match := ftsMatch(query)
	if match == "" {
		return nil, fmt.Errorf("search query is required: %w", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	stmt := `
		SELECT c.id, m.id, c.title,
		       snippet(messages_fts, 2, '<mark>', '</mark>', '...', 64),
		       bm25(messages_fts),
		       m.created_at
		FROM messages_fts
		JOIN messages m ON m.id = messages_fts.message_id
		JOIN conversations c ON c.id = m.conversation_id
		WHERE messages_fts MATCH ?
		ORDER BY bm25(messages_fts)
		LIMIT ?`

	return readThrough(ctx, s.store, TTLVolatile, []string{"conversations", "messages"}, stmt,
		[]any{match, limit}, scanSearchHits)
}

func scanSearchHits(rows *sql.Rows) ([]domain.SearchHit, error) {
	var out []domain.SearchHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit domain.SearchHit
		var createdAt sql.NullTime
		if err := rows.Scan(&hit.ConversationID, &hit.MessageID, &hit.Title,
			&hit.Snippet, &hit.Rank, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		if createdAt.Valid {
			hit.CreatedAt = createdAt.Time
		}
		out = append(out, hit)
	}
	return out, nil
}

// RebuildSearchIndex repopulates the full-text index from the base
// tables and compacts it. Use after bulk imports or when the index has
// drifted from the data.
func (s *Store) RebuildSearchIndex(ctx context.Context) error {
	return s.withHandle(ctx, func(h *handle) error {
		stmts := []string{
			"DELETE FROM conversations_fts",
			"DELETE FROM messages_fts",
			`INSERT INTO conversations_fts (conversation_id, title, metadata)
				SELECT id, title, metadata FROM conversations`,
			`INSERT INTO messages_fts (message_id, conversation_id, content, role)
				SELECT id, conversation_id, content, role FROM messages`,
			"INSERT INTO conversations_fts(conversations_fts) VALUES('optimize')",
			"INSERT INTO messages_fts(messages_fts) VALUES('optimize')",
		}
		for _, stmt := range stmts {
			if _, err := h.conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("rebuilding search index: %w", mapSQLiteErr(err))
			}
		}
		logger.Info("search index rebuilt")
		return nil
	})
}
