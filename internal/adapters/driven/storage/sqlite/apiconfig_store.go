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

// apiConfigStore implements driven.APIConfigStore.
type apiConfigStore struct {
	store *Store
}

var _ driven.APIConfigStore = (*apiConfigStore)(nil)

const apiConfigColumns = "id, provider, base_url, default_model, model_preferences, active, created_at, updated_at"

// Save creates or replaces the configuration for a provider.
func (s *apiConfigStore) Save(ctx context.Context, cfg domain.APIConfig) (*domain.APIConfig, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("provider is required: %w", domain.ErrInvalidInput)
	}

	prefsJSON, err := marshalTags(cfg.ModelPreferences)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	cfg.Active = true

	_, err = s.store.execInvalidating(ctx, []string{"api_configs"}, `
		INSERT INTO api_configs (provider, base_url, default_model, model_preferences, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			base_url = excluded.base_url,
			default_model = excluded.default_model,
			model_preferences = excluded.model_preferences,
			active = excluded.active,
			updated_at = excluded.updated_at
	`, cfg.Provider, nullString(cfg.BaseURL), nullString(cfg.DefaultModel),
		prefsJSON, cfg.Active, cfg.CreatedAt, cfg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving api config: %w", err)
	}

	// LastInsertId is unreliable on the upsert's update path, so read
	// the row id back directly.
	err = s.store.withHandle(ctx, func(h *handle) error {
		return h.conn.QueryRowContext(ctx,
			"SELECT id FROM api_configs WHERE provider = ?", cfg.Provider).Scan(&cfg.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("reading api config id: %w", err)
	}
	return &cfg, nil
}

// GetByProvider retrieves the active configuration for a provider.
func (s *apiConfigStore) GetByProvider(ctx context.Context, provider string) (*domain.APIConfig, error) {
	query := "SELECT " + apiConfigColumns + " FROM api_configs WHERE provider = ? AND active = TRUE"
	cfg, err := readThrough(ctx, s.store, TTLStatic, []string{"api_configs"}, query, []any{provider},
		func(rows *sql.Rows) (domain.APIConfig, error) {
			if !rows.Next() {
				return domain.APIConfig{}, domain.ErrNotFound
			}
			return scanAPIConfig(rows)
		})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// List returns all active configurations.
func (s *apiConfigStore) List(ctx context.Context) ([]domain.APIConfig, error) {
	query := "SELECT " + apiConfigColumns + " FROM api_configs WHERE active = TRUE ORDER BY provider"
	return readThrough(ctx, s.store, TTLStatic, []string{"api_configs"}, query, nil,
		func(rows *sql.Rows) ([]domain.APIConfig, error) {
			var out []domain.APIConfig //nolint:prealloc // size unknown from query
			for rows.Next() {
				cfg, err := scanAPIConfig(rows)
				if err != nil {
					return nil, err
				}
				out = append(out, cfg)
			}
			return out, nil
		})
}

// Deactivate retires a provider's configuration without deleting it.
func (s *apiConfigStore) Deactivate(ctx context.Context, provider string) error {
	res, err := s.store.execInvalidating(ctx, []string{"api_configs"}, `
		UPDATE api_configs SET active = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE provider = ? AND active = TRUE
	`, provider)
	if err != nil {
		return fmt.Errorf("deactivating api config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAPIConfig(rows *sql.Rows) (domain.APIConfig, error) {
	var cfg domain.APIConfig
	var baseURL, defaultModel, prefsJSON sql.NullString
	var createdAt, updatedAt sql.NullTime
	if err := rows.Scan(&cfg.ID, &cfg.Provider, &baseURL, &defaultModel,
		&prefsJSON, &cfg.Active, &createdAt, &updatedAt); err != nil {
		return domain.APIConfig{}, fmt.Errorf("scanning api config: %w", err)
	}

	cfg.BaseURL = baseURL.String
	cfg.DefaultModel = defaultModel.String
	if prefsJSON.Valid && prefsJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(prefsJSON.String), &cfg.ModelPreferences); err != nil {
			return domain.APIConfig{}, fmt.Errorf("unmarshaling model preferences: %w", err)
		}
	}
	if createdAt.Valid {
		cfg.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		cfg.UpdatedAt = updatedAt.Time
	}
	return cfg, nil
}
