package domain

import "time"

// APIConfig is the non-secret configuration for an AI provider: endpoint
// and model preferences. Credentials live in the OS keychain, which is a
// separate collaborator; they are never written to this store.
type APIConfig struct {
	// ID is the database row identifier. Zero until persisted.
	ID int64

	// Provider identifies the AI service ("openai", "anthropic", ...).
	// Unique among active configs.
	Provider string

	// BaseURL overrides the provider's default endpoint. Optional.
	BaseURL string

	// DefaultModel is the model preselected for new conversations.
	DefaultModel string

	// ModelPreferences lists models in preference order.
	ModelPreferences []string

	// Active configs are offered in the UI; deactivated ones are kept for
	// history.
	Active bool

	// CreatedAt is when the config was created.
	CreatedAt time.Time

	// UpdatedAt is when the config was last modified.
	UpdatedAt time.Time
}
