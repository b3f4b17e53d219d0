package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// newSmallPoolStore creates a store whose pool saturates quickly.
func newSmallPoolStore(t *testing.T) *Store {
	t.Helper()

	cfg := DefaultConfig(filepath.Join(t.TempDir(), "pool.db"), "test-key")
	cfg.Pool.MaxSize = 2
	cfg.Pool.MinIdle = 1
	cfg.Pool.AcquireTimeout = 50 * time.Millisecond

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestPool_AcquireRelease(t *testing.T) {
	store := newSmallPoolStore(t)
	ctx := context.Background()

	h, err := store.pool.acquire(ctx)
	require.NoError(t, err)

	leased, _, _ := store.pool.stats()
	assert.Equal(t, 1, leased)

	store.pool.release(h)
	leased, idle, _ := store.pool.stats()
	assert.Equal(t, 0, leased)
	assert.GreaterOrEqual(t, idle, 1)
}

func TestPool_ReusesWarmSession(t *testing.T) {
	store := newSmallPoolStore(t)
	ctx := context.Background()

	h1, err := store.pool.acquire(ctx)
	require.NoError(t, err)
	store.pool.release(h1)

	h2, err := store.pool.acquire(ctx)
	require.NoError(t, err)
	defer store.pool.release(h2)

	assert.Same(t, h1, h2)
}

func TestPool_ExhaustionTimesOut(t *testing.T) {
	store := newSmallPoolStore(t)
	ctx := context.Background()

	h1, err := store.pool.acquire(ctx)
	require.NoError(t, err)
	h2, err := store.pool.acquire(ctx)
	require.NoError(t, err)
	defer store.pool.release(h1)
	defer store.pool.release(h2)

	start := time.Now()
	_, err = store.pool.acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPoolExhausted)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPool_WaiterGetsReleasedSession(t *testing.T) {
	store := newSmallPoolStore(t)
	ctx := context.Background()

	h1, err := store.pool.acquire(ctx)
	require.NoError(t, err)
	h2, err := store.pool.acquire(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		store.pool.release(h1)
	}()

	h3, err := store.pool.acquire(ctx)
	require.NoError(t, err)
	store.pool.release(h2)
	store.pool.release(h3)
	wg.Wait()
}

func TestPool_CanceledContext(t *testing.T) {
	store := newSmallPoolStore(t)

	h1, err := store.pool.acquire(context.Background())
	require.NoError(t, err)
	h2, err := store.pool.acquire(context.Background())
	require.NoError(t, err)
	defer store.pool.release(h1)
	defer store.pool.release(h2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.pool.acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAcquireTimeout)
}

func TestPool_ClosedPool(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "pool.db"), "test-key")
	cfg.Pool.MaxSize = 2
	cfg.Pool.MinIdle = 0

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.pool.acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrPoolClosed)
}

func TestPool_ConcurrentCheckouts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.withHandle(ctx, func(h *handle) error {
				var one int
				return h.conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	leased, _, _ := store.pool.stats()
	assert.Equal(t, 0, leased)
}

func TestPool_TrimsIdleBeyondMinimum(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "pool.db"), "test-key")
	cfg.Pool.MaxSize = 4
	cfg.Pool.MinIdle = 1
	cfg.Pool.IdleTimeout = time.Nanosecond

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	ctx := context.Background()
	h1, err := store.pool.acquire(ctx)
	require.NoError(t, err)
	h2, err := store.pool.acquire(ctx)
	require.NoError(t, err)
	h3, err := store.pool.acquire(ctx)
	require.NoError(t, err)

	store.pool.release(h1)
	store.pool.release(h2)
	time.Sleep(time.Millisecond)
	store.pool.release(h3)

	_, idle, _ := store.pool.stats()
	assert.LessOrEqual(t, idle, 2)
	assert.GreaterOrEqual(t, idle, 1)
}
