package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/core/ports/driven"
)

// grimoireStore implements driven.GrimoireStore.
type grimoireStore struct {
	store *Store
}

var _ driven.GrimoireStore = (*grimoireStore)(nil)

const grimoireColumns = "id, title, content, category, tags, accessed_count, last_accessed, created_at, updated_at"

// Save creates or updates an entry.
func (s *grimoireStore) Save(ctx context.Context, e domain.GrimoireEntry) (*domain.GrimoireEntry, error) {
	if e.Title == "" || e.Content == "" {
		return nil, fmt.Errorf("entry title and content are required: %w", domain.ErrInvalidInput)
	}

	tagsJSON, err := marshalTags(e.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	if e.ID == 0 {
		res, err := s.store.execInvalidating(ctx, []string{"grimoire_entries"}, `
			INSERT INTO grimoire_entries (title, content, category, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, e.Title, e.Content, nullString(e.Category), tagsJSON, e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("creating grimoire entry: %w", err)
		}
		e.ID, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading grimoire entry id: %w", err)
		}
		return &e, nil
	}

	res, err := s.store.execInvalidating(ctx, []string{"grimoire_entries"}, `
		UPDATE grimoire_entries
		SET title = ?, content = ?, category = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, e.Title, e.Content, nullString(e.Category), tagsJSON, e.UpdatedAt, e.ID)
	if err != nil {
		return nil, fmt.Errorf("updating grimoire entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

// Get retrieves an entry and records the access atomically. Reads go to
// the database every time since each one mutates the access counters.
func (s *grimoireStore) Get(ctx context.Context, id int64) (*domain.GrimoireEntry, error) {
	var e domain.GrimoireEntry
	err := s.store.WithTransaction(ctx, func(tx *Tx) error {
		rows, err := tx.Query(ctx, "SELECT "+grimoireColumns+" FROM grimoire_entries WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("querying grimoire entry: %w", err)
		}
		defer rows.Close()
		if !rows.Next() {
			return domain.ErrNotFound
		}
		e, err = scanGrimoireEntry(rows)
		if err != nil {
			return err
		}
		rows.Close()

		now := time.Now().UTC()
		if _, err := tx.Exec(ctx, `
			UPDATE grimoire_entries
			SET accessed_count = accessed_count + 1, last_accessed = ?
			WHERE id = ?
		`, now, id); err != nil {
			return fmt.Errorf("recording grimoire access: %w", err)
		}
		e.AccessedCount++
		e.LastAccessed = now
		tx.Touch("grimoire_entries")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByCategory returns entries in a category, most recently updated
// first. An empty category returns all entries.
func (s *grimoireStore) ListByCategory(ctx context.Context, category string) ([]domain.GrimoireEntry, error) {
	query := "SELECT " + grimoireColumns + " FROM grimoire_entries"
	var args []any
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY updated_at DESC"

	return readThrough(ctx, s.store, TTLDefault, []string{"grimoire_entries"}, query, args,
		func(rows *sql.Rows) ([]domain.GrimoireEntry, error) {
			var out []domain.GrimoireEntry //nolint:prealloc // size unknown from query
			for rows.Next() {
				e, err := scanGrimoireEntry(rows)
				if err != nil {
					return nil, err
				}
				out = append(out, e)
			}
			return out, nil
		})
}

// Delete removes an entry.
func (s *grimoireStore) Delete(ctx context.Context, id int64) error {
	res, err := s.store.execInvalidating(ctx, []string{"grimoire_entries"},
		"DELETE FROM grimoire_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting grimoire entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanGrimoireEntry(rows *sql.Rows) (domain.GrimoireEntry, error) {
	var e domain.GrimoireEntry
	var category, tagsJSON sql.NullString
	var lastAccessed, createdAt, updatedAt sql.NullTime
	if err := rows.Scan(&e.ID, &e.Title, &e.Content, &category, &tagsJSON,
		&e.AccessedCount, &lastAccessed, &createdAt, &updatedAt); err != nil {
		return domain.GrimoireEntry{}, fmt.Errorf("scanning grimoire entry: %w", err)
	}

	e.Category = category.String
	if tagsJSON.Valid && tagsJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(tagsJSON.String), &e.Tags); err != nil {
			return domain.GrimoireEntry{}, fmt.Errorf("unmarshaling grimoire tags: %w", err)
		}
	}
	if lastAccessed.Valid {
		e.LastAccessed = lastAccessed.Time
	}
	if createdAt.Valid {
		e.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		e.UpdatedAt = updatedAt.Time
	}
	return e, nil
}

func marshalTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshaling tags: %w", err)
	}
	return string(b), nil
}
