package driving

import (
	"context"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// PersonaService is the repository API for personas.
type PersonaService interface {
	// Create adds a persona. Name and system prompt are required.
	Create(ctx context.Context, p domain.Persona) (*domain.Persona, error)

	// Get retrieves a persona by ID.
	Get(ctx context.Context, id int64) (*domain.Persona, error)

	// List returns active personas ordered by name.
	List(ctx context.Context) ([]domain.Persona, error)

	// Update applies a partial update.
	Update(ctx context.Context, id int64, update domain.PersonaUpdate) error

	// Delete removes a persona.
	Delete(ctx context.Context, id int64) error
}
