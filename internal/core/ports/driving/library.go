package driving

import (
	"context"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// LibraryService is the repository API for grimoire entries, projects,
// and provider configurations.
type LibraryService interface {
	// Grimoire entries.
	SaveEntry(ctx context.Context, e domain.GrimoireEntry) (*domain.GrimoireEntry, error)
	GetEntry(ctx context.Context, id int64) (*domain.GrimoireEntry, error)
	ListEntries(ctx context.Context, category string) ([]domain.GrimoireEntry, error)
	DeleteEntry(ctx context.Context, id int64) error

	// Projects.
	SaveProject(ctx context.Context, p domain.Project) (*domain.Project, error)
	GetProject(ctx context.Context, id int64) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	DeleteProject(ctx context.Context, id int64) error

	// Provider configurations.
	SaveAPIConfig(ctx context.Context, cfg domain.APIConfig) (*domain.APIConfig, error)
	GetAPIConfig(ctx context.Context, provider string) (*domain.APIConfig, error)
	ListAPIConfigs(ctx context.Context) ([]domain.APIConfig, error)
	DeactivateAPIConfig(ctx context.Context, provider string) error
}
