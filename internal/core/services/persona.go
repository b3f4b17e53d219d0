package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/core/ports/driven"
	"github.com/custodia-labs/lorevault/internal/core/ports/driving"
)

// Ensure PersonaService implements the interface.
var _ driving.PersonaService = (*PersonaService)(nil)

// PersonaService manages personas.
type PersonaService struct {
	personas driven.PersonaStore
}

// NewPersonaService creates a new persona service.
func NewPersonaService(personas driven.PersonaStore) *PersonaService {
	return &PersonaService{personas: personas}
}

// Create adds a persona.
func (s *PersonaService) Create(ctx context.Context, p domain.Persona) (*domain.Persona, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("persona name is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.SystemPrompt) == "" {
		return nil, fmt.Errorf("persona system prompt is required: %w", domain.ErrInvalidInput)
	}
	return s.personas.Create(ctx, p)
}

// Get retrieves a persona by ID.
func (s *PersonaService) Get(ctx context.Context, id int64) (*domain.Persona, error) {
	return s.personas.Get(ctx, id)
}

// List returns active personas ordered by name.
func (s *PersonaService) List(ctx context.Context) ([]domain.Persona, error) {
	return s.personas.List(ctx)
}

// Update applies a partial update.
func (s *PersonaService) Update(ctx context.Context, id int64, update domain.PersonaUpdate) error {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return fmt.Errorf("persona name cannot be emptied: %w", domain.ErrInvalidInput)
	}
	return s.personas.Update(ctx, id, update)
}

// Delete removes a persona.
func (s *PersonaService) Delete(ctx context.Context, id int64) error {
	return s.personas.Delete(ctx, id)
}
