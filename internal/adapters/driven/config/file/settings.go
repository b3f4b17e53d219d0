package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// settingsFile is the settings file name inside the config directory.
const settingsFile = "settings.toml"

// Settings is the on-disk engine configuration. Durations are expressed
// in whole units (seconds, milliseconds) to keep the file hand-editable.
type Settings struct {
	Database  DatabaseSettings  `toml:"database"`
	Pool      PoolSettings      `toml:"pool"`
	Cache     CacheSettings     `toml:"cache"`
	Telemetry TelemetrySettings `toml:"telemetry"`
}

// DatabaseSettings configures the database file and durability.
type DatabaseSettings struct {
	// Path overrides the default database location.
	Path string `toml:"path,omitempty"`

	// Profile selects a preset: "default" or "production".
	Profile string `toml:"profile"`
}

// PoolSettings overrides connection pool sizing.
type PoolSettings struct {
	MaxSize               int `toml:"max_size"`
	MinIdle               int `toml:"min_idle"`
	AcquireTimeoutSeconds int `toml:"acquire_timeout_seconds"`
	IdleTimeoutSeconds    int `toml:"idle_timeout_seconds"`
}

// CacheSettings overrides query cache behavior.
type CacheSettings struct {
	TTLSeconds int `toml:"ttl_seconds"`
}

// TelemetrySettings overrides performance monitoring.
type TelemetrySettings struct {
	SlowQueryThresholdMillis int `toml:"slow_query_threshold_ms"`
	MetricsCapacity          int `toml:"metrics_capacity"`
}

// DefaultSettings returns the settings written on first run.
func DefaultSettings() Settings {
	return Settings{
		Database: DatabaseSettings{Profile: "default"},
		Pool: PoolSettings{
			MaxSize:               10,
			MinIdle:               2,
			AcquireTimeoutSeconds: 30,
			IdleTimeoutSeconds:    300,
		},
		Cache:     CacheSettings{TTLSeconds: 300},
		Telemetry: TelemetrySettings{SlowQueryThresholdMillis: 100, MetricsCapacity: 1000},
	}
}

// Load reads settings from configDir, creating the file with defaults
// when it does not exist yet.
func Load(configDir string) (Settings, error) {
	path := filepath.Join(configDir, settingsFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		settings := DefaultSettings()
		if err := Save(configDir, settings); err != nil {
			return Settings{}, err
		}
		return settings, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	settings := DefaultSettings()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return settings, nil
}

// Save writes settings to configDir.
func Save(configDir string, settings Settings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, settingsFile), data, 0600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}
