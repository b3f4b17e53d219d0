package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorevault/internal/adapters/driven/storage/sqlite"
)

func TestMaintenanceService_BackupDefaultPath(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "lorevault.db")

	store, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(dbPath, "test-key"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	svc := NewMaintenanceService(store, dbPath)

	resolved, err := svc.Backup(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(resolved))
	assert.True(t, strings.HasSuffix(resolved, ".backup.db"))

	_, err = os.Stat(resolved)
	assert.NoError(t, err)
}

func TestMaintenanceService_StatsAndOptimize(t *testing.T) {
	store := newTestEngine(t)
	svc := NewMaintenanceService(store, store.Path())

	require.NoError(t, svc.Optimize(context.Background()))

	stats := svc.Stats()
	assert.Greater(t, stats.MaxConnections, 0)
}

func TestMaintenanceService_RebuildSearchIndex(t *testing.T) {
	store := newTestEngine(t)
	svc := NewMaintenanceService(store, store.Path())

	require.NoError(t, svc.RebuildSearchIndex(context.Background()))
}
