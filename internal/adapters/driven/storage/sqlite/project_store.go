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

// projectStore implements driven.ProjectStore.
type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

const projectColumns = "id, name, description, repository_url, status, metadata, created_at, updated_at"

// Save creates or updates a project.
func (s *projectStore) Save(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("project name is required: %w", domain.ErrInvalidInput)
	}
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}

	metadataJSON, err := marshalMetadata(p.Metadata)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if p.ID == 0 {
		res, err := s.store.execInvalidating(ctx, []string{"projects"}, `
			INSERT INTO projects (name, description, repository_url, status, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, p.Name, nullString(p.Description), nullString(p.RepositoryURL),
			string(p.Status), metadataJSON, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("creating project: %w", err)
		}
		p.ID, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading project id: %w", err)
		}
		return &p, nil
	}

	res, err := s.store.execInvalidating(ctx, []string{"projects"}, `
		UPDATE projects
		SET name = ?, description = ?, repository_url = ?, status = ?, metadata = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, nullString(p.Description), nullString(p.RepositoryURL),
		string(p.Status), metadataJSON, p.UpdatedAt, p.ID)
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// Get retrieves a project by ID.
func (s *projectStore) Get(ctx context.Context, id int64) (*domain.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects WHERE id = ?"
	p, err := readThrough(ctx, s.store, TTLDefault, []string{"projects"}, query, []any{id},
		func(rows *sql.Rows) (domain.Project, error) {
			if !rows.Next() {
				return domain.Project{}, domain.ErrNotFound
			}
			return scanProject(rows)
		})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all projects, most recently updated first.
func (s *projectStore) List(ctx context.Context) ([]domain.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects ORDER BY updated_at DESC"
	return readThrough(ctx, s.store, TTLDefault, []string{"projects"}, query, nil,
		func(rows *sql.Rows) ([]domain.Project, error) {
			var out []domain.Project //nolint:prealloc // size unknown from query
			for rows.Next() {
				p, err := scanProject(rows)
				if err != nil {
					return nil, err
				}
				out = append(out, p)
			}
			return out, nil
		})
}

// Delete removes a project.
func (s *projectStore) Delete(ctx context.Context, id int64) error {
	res, err := s.store.execInvalidating(ctx, []string{"projects"},
		"DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProject(rows *sql.Rows) (domain.Project, error) {
	var p domain.Project
	var description, repositoryURL, metadataJSON sql.NullString
	var status string
	var createdAt, updatedAt sql.NullTime
	if err := rows.Scan(&p.ID, &p.Name, &description, &repositoryURL, &status,
		&metadataJSON, &createdAt, &updatedAt); err != nil {
		return domain.Project{}, fmt.Errorf("scanning project: %w", err)
	}

	p.Description = description.String
	p.RepositoryURL = repositoryURL.String
	p.Status = domain.ProjectStatus(status)
	if metadataJSON.Valid && metadataJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON.String), &p.Metadata); err != nil {
			return domain.Project{}, fmt.Errorf("unmarshaling project metadata: %w", err)
		}
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}
