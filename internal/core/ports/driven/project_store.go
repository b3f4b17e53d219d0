package driven

import (
	"context"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// ProjectStore persists tracked projects.
type ProjectStore interface {
	// Save creates or updates a project. A zero ID creates; the returned
	// project carries the assigned ID.
	Save(ctx context.Context, p domain.Project) (*domain.Project, error)

	// Get retrieves a project by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.Project, error)

	// List returns all projects, most recently updated first.
	List(ctx context.Context) ([]domain.Project, error)

	// Delete removes a project.
	Delete(ctx context.Context, id int64) error
}
