package driven

import (
	"context"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// GrimoireStore persists knowledge-base entries.
type GrimoireStore interface {
	// Save creates or updates an entry. A zero ID creates; the returned
	// entry carries the assigned ID.
	Save(ctx context.Context, e domain.GrimoireEntry) (*domain.GrimoireEntry, error)

	// Get retrieves an entry by ID and records the access (count and
	// timestamp). Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.GrimoireEntry, error)

	// ListByCategory returns entries in a category, most recently
	// updated first. An empty category returns all entries.
	ListByCategory(ctx context.Context, category string) ([]domain.GrimoireEntry, error)

	// Delete removes an entry.
	Delete(ctx context.Context, id int64) error
}
