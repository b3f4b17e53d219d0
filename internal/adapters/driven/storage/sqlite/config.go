package sqlite

import (
	"fmt"
	"time"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// PoolConfig controls connection pool sizing and timing.
type PoolConfig struct {
	// MaxSize is the maximum number of live connections.
	MaxSize int

	// MinIdle is the number of warm connections kept ready.
	MinIdle int

	// AcquireTimeout bounds how long Acquire waits for a free
	// connection before failing.
	AcquireTimeout time.Duration

	// IdleTimeout is how long a connection may sit idle beyond MinIdle
	// before it is closed.
	IdleTimeout time.Duration
}

// Config describes a storage engine instance.
type Config struct {
	// Path is the database file path. Ignored when InMemory is set.
	Path string

	// Key is the encryption passphrase. Empty disables encryption.
	// Keys are restricted to alphanumerics, dash, and underscore.
	Key string

	// InMemory selects a shared in-memory database. Backup is
	// unavailable in this mode.
	InMemory bool

	Pool PoolConfig

	// Synchronous is the durability level, "NORMAL" or "FULL".
	Synchronous string

	// CacheSizePages is the page cache size passed to the engine.
	CacheSizePages int

	// SecureDelete overwrites deleted content with zeros.
	SecureDelete bool

	// BusyTimeout is how long a statement waits on a locked database.
	BusyTimeout time.Duration

	// CacheTTL is the default lifetime for cached query results.
	CacheTTL time.Duration

	// SlowQueryThreshold marks queries worth logging. Zero disables
	// slow-query logging.
	SlowQueryThreshold time.Duration

	// MetricsCapacity bounds the performance monitor's history.
	MetricsCapacity int
}

// DefaultConfig returns the standard desktop configuration.
func DefaultConfig(path, key string) Config {
	return Config{
		Path: path,
		Key:  key,
		Pool: PoolConfig{
			MaxSize:        10,
			MinIdle:        2,
			AcquireTimeout: 30 * time.Second,
			IdleTimeout:    5 * time.Minute,
		},
		Synchronous:        "NORMAL",
		CacheSizePages:     10000,
		BusyTimeout:        5 * time.Second,
		CacheTTL:           5 * time.Minute,
		SlowQueryThreshold: 100 * time.Millisecond,
		MetricsCapacity:    1000,
	}
}

// ProductionConfig returns a configuration tuned for durability under
// sustained use: full synchronous writes, a larger pool, and secure
// deletion of removed content.
func ProductionConfig(path, key string) Config {
	cfg := DefaultConfig(path, key)
	cfg.Pool.MaxSize = 20
	cfg.Pool.MinIdle = 5
	cfg.Pool.AcquireTimeout = 60 * time.Second
	cfg.Synchronous = "FULL"
	cfg.CacheSizePages = 20000
	cfg.SecureDelete = true
	return cfg
}

// InMemoryConfig returns a configuration for tests and ephemeral
// sessions. The database lives only as long as the Store.
func InMemoryConfig() Config {
	cfg := DefaultConfig("", "")
	cfg.InMemory = true
	cfg.Pool.MaxSize = 5
	cfg.Pool.MinIdle = 1
	cfg.Pool.AcquireTimeout = 10 * time.Second
	return cfg
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("database path is required: %w", domain.ErrInvalidInput)
	}
	if c.Key != "" && !keyPattern.MatchString(c.Key) {
		return fmt.Errorf("encryption key may only contain alphanumerics, dash, and underscore: %w", domain.ErrEncryptionKey)
	}
	if c.Pool.MaxSize < 1 {
		return fmt.Errorf("pool max size must be at least 1: %w", domain.ErrInvalidInput)
	}
	if c.Pool.MinIdle < 0 || c.Pool.MinIdle > c.Pool.MaxSize {
		return fmt.Errorf("pool min idle must be between 0 and max size: %w", domain.ErrInvalidInput)
	}
	if c.Pool.AcquireTimeout <= 0 {
		return fmt.Errorf("pool acquire timeout must be positive: %w", domain.ErrInvalidInput)
	}
	switch c.Synchronous {
	case "NORMAL", "FULL":
	default:
		return fmt.Errorf("synchronous must be NORMAL or FULL, got %q: %w", c.Synchronous, domain.ErrInvalidInput)
	}
	return nil
}
