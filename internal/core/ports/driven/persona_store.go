package driven

import (
	"context"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// PersonaStore persists personas.
type PersonaStore interface {
	// Create persists a new persona and returns it with its assigned ID.
	// Returns domain.ErrAlreadyExists if the name is taken.
	Create(ctx context.Context, p domain.Persona) (*domain.Persona, error)

	// Get retrieves a persona by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.Persona, error)

	// List returns active personas ordered by name.
	List(ctx context.Context) ([]domain.Persona, error)

	// Update applies a partial update. Nil fields are left unchanged.
	Update(ctx context.Context, id int64, update domain.PersonaUpdate) error

	// Delete removes a persona.
	Delete(ctx context.Context, id int64) error
}
