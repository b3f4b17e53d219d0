package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/core/ports/driven"
)

// personaStore implements driven.PersonaStore.
type personaStore struct {
	store *Store
}

var _ driven.PersonaStore = (*personaStore)(nil)

const personaColumns = "id, name, description, system_prompt, avatar_path, settings, active, created_at, updated_at"

// Create persists a new persona.
func (s *personaStore) Create(ctx context.Context, p domain.Persona) (*domain.Persona, error) {
	if p.Name == "" || p.SystemPrompt == "" {
		return nil, fmt.Errorf("persona name and system prompt are required: %w", domain.ErrInvalidInput)
	}

	settingsJSON, err := marshalSettings(p.Settings)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	res, err := s.store.execInvalidating(ctx, []string{"personas"}, `
		INSERT INTO personas (name, description, system_prompt, avatar_path, settings, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Name, nullString(p.Description), p.SystemPrompt, nullString(p.AvatarPath),
		settingsJSON, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating persona: %w", err)
	}

	p.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading persona id: %w", err)
	}
	return &p, nil
}

// Get retrieves a persona by ID.
func (s *personaStore) Get(ctx context.Context, id int64) (*domain.Persona, error) {
	query := "SELECT " + personaColumns + " FROM personas WHERE id = ?"
	p, err := readThrough(ctx, s.store, TTLStatic, []string{"personas"}, query, []any{id},
		func(rows *sql.Rows) (domain.Persona, error) {
			if !rows.Next() {
				return domain.Persona{}, domain.ErrNotFound
			}
			return scanPersona(rows)
		})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns active personas ordered by name.
func (s *personaStore) List(ctx context.Context) ([]domain.Persona, error) {
	query := "SELECT " + personaColumns + " FROM personas WHERE active = TRUE ORDER BY name"
	return readThrough(ctx, s.store, TTLStatic, []string{"personas"}, query, nil,
		func(rows *sql.Rows) ([]domain.Persona, error) {
			var out []domain.Persona //nolint:prealloc // size unknown from query
			for rows.Next() {
				p, err := scanPersona(rows)
				if err != nil {
					return nil, err
				}
				out = append(out, p)
			}
			return out, nil
		})
}

// Update applies a partial update. Nil fields are left unchanged.
func (s *personaStore) Update(ctx context.Context, id int64, update domain.PersonaUpdate) error {
	if update.Empty() {
		return nil
	}

	var sets []string
	var args []any
	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, nullString(*update.Description))
	}
	if update.SystemPrompt != nil {
		sets = append(sets, "system_prompt = ?")
		args = append(args, *update.SystemPrompt)
	}
	if update.Settings != nil {
		settingsJSON, err := marshalSettings(update.Settings)
		if err != nil {
			return err
		}
		sets = append(sets, "settings = ?")
		args = append(args, settingsJSON)
	}
	if update.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *update.Active)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := "UPDATE personas SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.store.execInvalidating(ctx, []string{"personas"}, query, args...)
	if err != nil {
		return fmt.Errorf("updating persona: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a persona.
func (s *personaStore) Delete(ctx context.Context, id int64) error {
	res, err := s.store.execInvalidating(ctx, []string{"personas"},
		"DELETE FROM personas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting persona: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPersona(rows *sql.Rows) (domain.Persona, error) {
	var p domain.Persona
	var description, avatarPath, settingsJSON sql.NullString
	var createdAt, updatedAt sql.NullTime
	if err := rows.Scan(&p.ID, &p.Name, &description, &p.SystemPrompt,
		&avatarPath, &settingsJSON, &p.Active, &createdAt, &updatedAt); err != nil {
		return domain.Persona{}, fmt.Errorf("scanning persona: %w", err)
	}

	p.Description = description.String
	p.AvatarPath = avatarPath.String
	if settingsJSON.Valid && settingsJSON.String != jsonNull {
		var settings domain.PersonaSettings
		if err := json.Unmarshal([]byte(settingsJSON.String), &settings); err != nil {
			return domain.Persona{}, fmt.Errorf("unmarshaling persona settings: %w", err)
		}
		p.Settings = &settings
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}

func marshalSettings(settings *domain.PersonaSettings) (any, error) {
	if settings == nil {
		return nil, nil
	}
	b, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("marshaling persona settings: %w", err)
	}
	return string(b), nil
}
