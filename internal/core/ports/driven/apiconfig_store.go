package driven

import (
	"context"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// APIConfigStore persists non-secret provider configurations.
// Credentials are handled by the OS keychain, never by this store.
type APIConfigStore interface {
	// Save creates or replaces the configuration for a provider.
	Save(ctx context.Context, cfg domain.APIConfig) (*domain.APIConfig, error)

	// GetByProvider retrieves the active configuration for a provider.
	// Returns domain.ErrNotFound if none is active.
	GetByProvider(ctx context.Context, provider string) (*domain.APIConfig, error)

	// List returns all active configurations.
	List(ctx context.Context) ([]domain.APIConfig, error)

	// Deactivate retires a provider's configuration without deleting it.
	Deactivate(ctx context.Context, provider string) error
}
