package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/core/ports/driven"
	"github.com/custodia-labs/lorevault/internal/core/ports/driving"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService manages the knowledge base: grimoire entries, tracked
// projects, and provider configurations.
type LibraryService struct {
	grimoire   driven.GrimoireStore
	projects   driven.ProjectStore
	apiConfigs driven.APIConfigStore
}

// NewLibraryService creates a new library service.
func NewLibraryService(grimoire driven.GrimoireStore, projects driven.ProjectStore, apiConfigs driven.APIConfigStore) *LibraryService {
	return &LibraryService{
		grimoire:   grimoire,
		projects:   projects,
		apiConfigs: apiConfigs,
	}
}

// SaveEntry creates or updates a grimoire entry.
func (s *LibraryService) SaveEntry(ctx context.Context, e domain.GrimoireEntry) (*domain.GrimoireEntry, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return nil, fmt.Errorf("entry title is required: %w", domain.ErrInvalidInput)
	}
	return s.grimoire.Save(ctx, e)
}

// GetEntry retrieves an entry and records the access.
func (s *LibraryService) GetEntry(ctx context.Context, id int64) (*domain.GrimoireEntry, error) {
	return s.grimoire.Get(ctx, id)
}

// ListEntries returns entries in a category; empty returns all.
func (s *LibraryService) ListEntries(ctx context.Context, category string) ([]domain.GrimoireEntry, error) {
	return s.grimoire.ListByCategory(ctx, category)
}

// DeleteEntry removes an entry.
func (s *LibraryService) DeleteEntry(ctx context.Context, id int64) error {
	return s.grimoire.Delete(ctx, id)
}

// SaveProject creates or updates a project.
func (s *LibraryService) SaveProject(ctx context.Context, p domain.Project) (*domain.Project, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("project name is required: %w", domain.ErrInvalidInput)
	}
	return s.projects.Save(ctx, p)
}

// GetProject retrieves a project by ID.
func (s *LibraryService) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	return s.projects.Get(ctx, id)
}

// ListProjects returns all projects.
func (s *LibraryService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

// DeleteProject removes a project.
func (s *LibraryService) DeleteProject(ctx context.Context, id int64) error {
	return s.projects.Delete(ctx, id)
}

// SaveAPIConfig creates or replaces a provider configuration.
func (s *LibraryService) SaveAPIConfig(ctx context.Context, cfg domain.APIConfig) (*domain.APIConfig, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		return nil, fmt.Errorf("provider is required: %w", domain.ErrInvalidInput)
	}
	return s.apiConfigs.Save(ctx, cfg)
}

// GetAPIConfig retrieves the active configuration for a provider.
func (s *LibraryService) GetAPIConfig(ctx context.Context, provider string) (*domain.APIConfig, error) {
	return s.apiConfigs.GetByProvider(ctx, strings.ToLower(provider))
}

// ListAPIConfigs returns all active configurations.
func (s *LibraryService) ListAPIConfigs(ctx context.Context) ([]domain.APIConfig, error) {
	return s.apiConfigs.List(ctx)
}

// DeactivateAPIConfig retires a provider's configuration.
func (s *LibraryService) DeactivateAPIConfig(ctx context.Context, provider string) error {
	return s.apiConfigs.Deactivate(ctx, strings.ToLower(provider))
}
