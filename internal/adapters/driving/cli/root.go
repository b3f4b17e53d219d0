// Package cli implements the lorevault command line interface for
// inspecting and maintaining the encrypted conversation store.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lorevault/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lorevault/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lorevault/internal/logger"
)

// keyEnv names the environment variable holding the encryption key.
const keyEnv = "LOREVAULT_KEY"

var (
	version = "dev"

	verbose bool
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "lorevault",
	Short: "Encrypted local store for AI conversations",
	Long: `LoreVault is the persistence engine behind the Forbidden Library
desktop application: an encrypted SQLite store for conversations,
personas, knowledge-base entries, and provider configurations.

The CLI provides operator commands for backing up, optimizing, and
inspecting the store.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (default ~/.lorevault)")
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}

// resolveDataDir returns the configured data directory, defaulting to
// ~/.lorevault.
func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".lorevault"), nil
}

// readKey obtains the encryption key from the environment, or prompts
// on an interactive terminal.
func readKey() (string, error) {
	if key := os.Getenv(keyEnv); key != "" {
		return key, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no encryption key: set %s or run interactively", keyEnv)
	}

	fmt.Fprint(os.Stderr, "Encryption key: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading encryption key: %w", err)
	}
	return string(raw), nil
}

// openEngine loads settings and opens the storage engine.
func openEngine(cmd *cobra.Command) (*sqlite.Store, error) {
	dir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}

	settings, err := file.Load(dir)
	if err != nil {
		return nil, err
	}

	key, err := readKey()
	if err != nil {
		return nil, err
	}

	dbPath := settings.Database.Path
	if dbPath == "" {
		dbPath = filepath.Join(dir, "lorevault.db")
	}

	cfg := sqlite.DefaultConfig(dbPath, key)
	if settings.Database.Profile == "production" {
		cfg = sqlite.ProductionConfig(dbPath, key)
	}
	applySettings(&cfg, settings)

	store, err := sqlite.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store, nil
}

// applySettings overlays file settings onto a preset configuration.
func applySettings(cfg *sqlite.Config, settings file.Settings) {
	if settings.Pool.MaxSize > 0 {
		cfg.Pool.MaxSize = settings.Pool.MaxSize
	}
	if settings.Pool.MinIdle >= 0 && settings.Pool.MinIdle <= cfg.Pool.MaxSize {
		cfg.Pool.MinIdle = settings.Pool.MinIdle
	}
	if settings.Pool.AcquireTimeoutSeconds > 0 {
		cfg.Pool.AcquireTimeout = time.Duration(settings.Pool.AcquireTimeoutSeconds) * time.Second
	}
	if settings.Pool.IdleTimeoutSeconds > 0 {
		cfg.Pool.IdleTimeout = time.Duration(settings.Pool.IdleTimeoutSeconds) * time.Second
	}
	if settings.Cache.TTLSeconds > 0 {
		cfg.CacheTTL = time.Duration(settings.Cache.TTLSeconds) * time.Second
	}
	if settings.Telemetry.SlowQueryThresholdMillis > 0 {
		cfg.SlowQueryThreshold = time.Duration(settings.Telemetry.SlowQueryThresholdMillis) * time.Millisecond
	}
	if settings.Telemetry.MetricsCapacity > 0 {
		cfg.MetricsCapacity = settings.Telemetry.MetricsCapacity
	}
}
