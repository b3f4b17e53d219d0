package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lorevault/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/core/ports/driven"
	"github.com/custodia-labs/lorevault/internal/logger"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is the encrypted SQLite persistence engine. It owns the
// connection pool, the query cache, and the performance monitor, and
// provides access to all entity store interfaces through wrapper types.
type Store struct {
	cfg     Config
	db      *sql.DB
	pool    *pool
	cache   *Cache
	monitor *Monitor

	// keeper pins the shared in-memory database so it survives pool
	// churn. Nil for file-backed databases.
	keeper *sql.Conn
}

// Open creates the engine described by cfg, verifies the encryption
// key, and brings the schema up to date.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.InMemory {
		cfg.Path = "lorevault-" + uuid.NewString()
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One extra connection beyond the pool for the in-memory keeper.
	db.SetMaxOpenConns(cfg.Pool.MaxSize + 1)
	db.SetMaxIdleConns(2)

	s := &Store{
		cfg:     cfg,
		db:      db,
		cache:   NewCache(cfg.CacheTTL),
		monitor: NewMonitor(cfg.MetricsCapacity, cfg.SlowQueryThreshold),
	}

	if cfg.InMemory {
		keeper, err := db.Conn(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("opening in-memory database: %w", mapSQLiteErr(err))
		}
		s.keeper = keeper
	}

	s.pool, err = newPool(ctx, db, cfg.Pool)
	if err != nil {
		s.Close()
		return nil, err
	}

	if err := s.verifyKey(ctx); err != nil {
		s.Close()
		return nil, err
	}

	if err := s.migrate(ctx, migrations.FS); err != nil {
		s.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("storage engine ready at %s (encrypted=%t)", cfg.Path, cfg.Key != "")
	return s, nil
}

// verifyKey reads the schema header, which fails on the first access
// with a wrong encryption key.
func (s *Store) verifyKey(ctx context.Context) error {
	return s.withHandle(ctx, func(h *handle) error {
		var n int
		row := h.conn.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master")
		if err := row.Scan(&n); err != nil {
			return fmt.Errorf("verifying encryption key: %w", mapSQLiteErr(err))
		}
		return nil
	})
}

// Close shuts down the pool and releases the database.
func (s *Store) Close() error {
	var firstErr error
	if s.pool != nil {
		firstErr = s.pool.close()
	}
	if s.keeper != nil {
		if err := s.keeper.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.db.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	s.cache.Clear()
	return firstErr
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.cfg.Path
}

// Cache returns the engine's query cache.
func (s *Store) Cache() *Cache {
	return s.cache
}

// Monitor returns the engine's performance monitor.
func (s *Store) Monitor() *Monitor {
	return s.monitor
}

// ConversationStore returns a ConversationStore backed by this store.
func (s *Store) ConversationStore() driven.ConversationStore {
	return &conversationStore{store: s}
}

// MessageStore returns a MessageStore backed by this store.
func (s *Store) MessageStore() driven.MessageStore {
	return &messageStore{store: s}
}

// PersonaStore returns a PersonaStore backed by this store.
func (s *Store) PersonaStore() driven.PersonaStore {
	return &personaStore{store: s}
}

// GrimoireStore returns a GrimoireStore backed by this store.
func (s *Store) GrimoireStore() driven.GrimoireStore {
	return &grimoireStore{store: s}
}

// ProjectStore returns a ProjectStore backed by this store.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{store: s}
}

// APIConfigStore returns an APIConfigStore backed by this store.
func (s *Store) APIConfigStore() driven.APIConfigStore {
	return &apiConfigStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(ctx context.Context, fsys embed.FS) error {
	return s.withHandle(ctx, func(h *handle) error {
		_, err := h.conn.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return fmt.Errorf("creating schema_migrations table: %w", err)
		}

		var currentVersion int
		row := h.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
		if err := row.Scan(&currentVersion); err != nil {
			return fmt.Errorf("getting current version: %w", err)
		}

		entries, err := fs.ReadDir(fsys, ".")
		if err != nil {
			return fmt.Errorf("reading migrations directory: %w", err)
		}

		var upFiles []string
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasSuffix(name, ".up.sql") {
				upFiles = append(upFiles, name)
			}
		}
		sort.Strings(upFiles)

		for _, name := range upFiles {
			// Extract version number (e.g., "001_initial.up.sql" -> 1)
			var version int
			if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
				continue // Skip files that don't match pattern
			}

			if version <= currentVersion {
				continue // Already applied
			}

			content, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("reading migration %s: %w", name, err)
			}

			if _, err := h.conn.ExecContext(ctx, string(content)); err != nil {
				return fmt.Errorf("executing migration %s: %v: %w", name, err, domain.ErrSchema)
			}
			if _, err := h.conn.ExecContext(ctx,
				"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
				return fmt.Errorf("recording migration %s: %w", name, err)
			}
			logger.Debug("applied migration %s", name)
		}
		return nil
	})
}

// withHandle runs fn with a pooled session.
func (s *Store) withHandle(ctx context.Context, fn func(h *handle) error) error {
	h, err := s.pool.acquire(ctx)
	if err != nil {
		return err
	}
	defer s.pool.release(h)
	return fn(h)
}

// exec runs a single write statement on a pooled session and records
// its timing.
func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := s.withHandle(ctx, func(h *handle) error {
		start := time.Now()
		r, err := h.conn.ExecContext(ctx, query, args...)
		if err != nil {
			return mapSQLiteErr(err)
		}
		rows, _ := r.RowsAffected()
		s.monitor.Record(query, time.Since(start), rows)
		res = r
		return nil
	})
	return res, err
}

// execInvalidating runs a write statement and drops cached reads of the
// tables it touches.
func (s *Store) execInvalidating(ctx context.Context, tables []string, query string, args ...any) (sql.Result, error) {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateTables(tables...)
	return res, nil
}

// readThrough serves a read from the query cache, falling back to the
// database and caching the scanned result. Cached payloads that fail to
// decode are treated as misses.
func readThrough[T any](ctx context.Context, s *Store, class TTLClass, tables []string, query string, args []any, scan func(*sql.Rows) (T, error)) (T, error) {
	var zero T
	key := Fingerprint(query, args...)

	if payload, ok := s.cache.Get(key); ok {
		var v T
		if err := json.Unmarshal(payload, &v); err == nil {
			return v, nil
		}
		logger.Debug("dropping undecodable cache entry for %s", strings.Join(strings.Fields(query), " "))
		s.cache.Delete(key)
	}

	var v T
	err := s.withHandle(ctx, func(h *handle) error {
		start := time.Now()
		rows, err := h.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return mapSQLiteErr(err)
		}
		defer rows.Close()

		v, err = scan(rows)
		if err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return mapSQLiteErr(err)
		}
		s.monitor.Record(query, time.Since(start), 0)
		return nil
	})
	if err != nil {
		return zero, err
	}

	if payload, err := json.Marshal(v); err == nil {
		s.cache.Put(key, payload, tables, class)
	}
	return v, nil
}

// Backup writes an engine-consistent copy of the database to path using
// VACUUM INTO, which produces a compacted snapshot without blocking
// readers. In-memory databases cannot be backed up.
func (s *Store) Backup(ctx context.Context, path string) error {
	if s.cfg.InMemory {
		return fmt.Errorf("cannot back up an in-memory database: %w", domain.ErrInvalidInput)
	}
	if path == "" {
		return fmt.Errorf("backup path is required: %w", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	err := s.withHandle(ctx, func(h *handle) error {
		if _, err := h.conn.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
			return fmt.Errorf("backing up to %s: %w", path, mapSQLiteErr(err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("backup written to %s", path)
	return nil
}

// Optimize refreshes planner statistics and compacts the database.
// It runs on a pooled session outside any transaction.
func (s *Store) Optimize(ctx context.Context) error {
	return s.withHandle(ctx, func(h *handle) error {
		before, _ := s.fileSize(ctx, h)

		if _, err := h.conn.ExecContext(ctx, "ANALYZE"); err != nil {
			return fmt.Errorf("analyzing database: %w", mapSQLiteErr(err))
		}
		if _, err := h.conn.ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("vacuuming database: %w", mapSQLiteErr(err))
		}

		after, err := s.fileSize(ctx, h)
		if err == nil {
			logger.Info("optimize complete: %d -> %d bytes", before, after)
		}
		return nil
	})
}

// fileSize reports the database size as page_count * page_size.
func (s *Store) fileSize(ctx context.Context, h *handle) (int64, error) {
	var pageCount, pageSize int64
	if err := h.conn.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, err
	}
	if err := h.conn.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, err
	}
	return pageCount * pageSize, nil
}

// Stats returns a snapshot of pool, cache, and query telemetry.
func (s *Store) Stats() driven.EngineStats {
	leased, idle, max := s.pool.stats()
	entries, expired := s.cache.Stats()

	slowest := s.monitor.Slowest(10)
	slow := make([]driven.SlowQuery, 0, len(slowest))
	for _, qm := range slowest {
		slow = append(slow, driven.SlowQuery{
			Query:    qm.Query,
			Duration: qm.Duration,
			Rows:     qm.Rows,
			At:       qm.At,
		})
	}

	return driven.EngineStats{
		LiveConnections:     leased,
		IdleConnections:     idle,
		MaxConnections:      max,
		CacheEntries:        entries,
		CacheExpiredEntries: expired,
		RecordedQueries:     s.monitor.Len(),
		SlowQueries:         slow,
	}
}

var _ driven.Maintenance = (*Store)(nil)
