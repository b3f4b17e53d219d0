package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// newTestStore creates an encrypted file-backed store in a temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	cfg := DefaultConfig(filepath.Join(dir, "lorevault.db"), "test-key-123")
	cfg.Pool.MinIdle = 1

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

// newMemStore creates an in-memory store.
func newMemStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestOpen_CreatesDatabaseFile(t *testing.T) {
	store := newTestStore(t)

	_, err := os.Stat(store.Path())
	require.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, 10, stats.MaxConnections)
	assert.GreaterOrEqual(t, stats.IdleConnections, 1)
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lorevault.db")
	ctx := context.Background()

	cfg := DefaultConfig(path, "correct-key")
	store, err := Open(ctx, cfg)
	require.NoError(t, err)

	_, err = store.ConversationStore().Create(ctx, "first", 0)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Migrations are idempotent and data survives a reopen.
	store, err = Open(ctx, cfg)
	require.NoError(t, err)
	defer store.Close()

	conversations, err := store.ConversationStore().List(ctx, 10, 0, false)
	require.NoError(t, err)
	assert.Len(t, conversations, 1)
}

func TestOpen_WrongKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lorevault.db")
	ctx := context.Background()

	store, err := Open(ctx, DefaultConfig(path, "correct-key"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(ctx, DefaultConfig(path, "wrong-key"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEncryptionKey)
}

func TestOpen_InvalidKeyCharset(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "lorevault.db"), "bad key;--")
	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEncryptionKey)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig("", "key")
	require.ErrorIs(t, cfg.Validate(), domain.ErrInvalidInput)

	cfg = DefaultConfig("/tmp/db", "key")
	cfg.Pool.MinIdle = 20
	require.ErrorIs(t, cfg.Validate(), domain.ErrInvalidInput)

	cfg = DefaultConfig("/tmp/db", "key")
	cfg.Synchronous = "OFF"
	require.ErrorIs(t, cfg.Validate(), domain.ErrInvalidInput)

	require.NoError(t, ProductionConfig("/tmp/db", "key").Validate())
	require.NoError(t, InMemoryConfig().Validate())
}

func TestBackup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.ConversationStore().Create(ctx, "keep me", 0)
	require.NoError(t, err)

	backupPath := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, store.Backup(ctx, backupPath))

	info, err := os.Stat(backupPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestBackup_RejectsInMemory(t *testing.T) {
	store := newMemStore(t)

	err := store.Backup(context.Background(), filepath.Join(t.TempDir(), "backup.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBackup_RejectsEmptyPath(t *testing.T) {
	store := newTestStore(t)

	err := store.Backup(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOptimize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	convs := store.ConversationStore()
	c, err := convs.Create(ctx, "churn", 0)
	require.NoError(t, err)
	require.NoError(t, convs.Delete(ctx, c.ID))

	require.NoError(t, store.Optimize(ctx))

	// The store keeps serving reads after a vacuum.
	_, err = convs.List(ctx, 10, 0, false)
	require.NoError(t, err)
}

func TestStats_ReflectsActivity(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	_, err := store.ConversationStore().Create(ctx, "one", 0)
	require.NoError(t, err)
	_, err = store.ConversationStore().List(ctx, 10, 0, false)
	require.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, 5, stats.MaxConnections)
	assert.Greater(t, stats.RecordedQueries, 0)
	assert.Greater(t, stats.CacheEntries, 0)
}

func TestReadThrough_ServesFromCache(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	_, err := store.ConversationStore().Create(ctx, "cached", 0)
	require.NoError(t, err)

	first, err := store.ConversationStore().List(ctx, 10, 0, false)
	require.NoError(t, err)
	recorded := store.Monitor().Len()

	second, err := store.ConversationStore().List(ctx, 10, 0, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// The repeat read was a cache hit, so no new query was recorded.
	assert.Equal(t, recorded, store.Monitor().Len())
}

func TestReadThrough_CorruptEntryFallsBack(t *testing.T) {
	store := newMemStore(t)
	ctx := context.Background()

	created, err := store.ConversationStore().Create(ctx, "survivor", 0)
	require.NoError(t, err)

	_, err = store.ConversationStore().List(ctx, 10, 0, false)
	require.NoError(t, err)

	// Poison every cached payload; reads must fall back to the database.
	store.cache.mu.Lock()
	for key, e := range store.cache.entries {
		e.payload = []byte("{not json")
		store.cache.entries[key] = e
	}
	store.cache.mu.Unlock()

	conversations, err := store.ConversationStore().List(ctx, 10, 0, false)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, created.ID, conversations[0].ID)
}

func TestRetryableErrors(t *testing.T) {
	assert.True(t, domain.IsRetryable(domain.ErrPoolExhausted))
	assert.True(t, domain.IsRetryable(domain.ErrTxConflict))
	assert.False(t, domain.IsRetryable(domain.ErrNotFound))
}

func TestSlowQueryTelemetry(t *testing.T) {
	store := newMemStore(t)

	store.monitor.Record("SELECT slow", 250*time.Millisecond, 1)
	stats := store.Stats()
	require.NotEmpty(t, stats.SlowQueries)
	assert.Equal(t, "SELECT slow", stats.SlowQueries[0].Query)
}
