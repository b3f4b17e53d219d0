package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

func newLibraryService(t *testing.T) *LibraryService {
	t.Helper()
	store := newTestEngine(t)
	return NewLibraryService(store.GrimoireStore(), store.ProjectStore(), store.APIConfigStore())
}

func TestLibraryService_EntryLifecycle(t *testing.T) {
	svc := newLibraryService(t)
	ctx := context.Background()

	saved, err := svc.SaveEntry(ctx, domain.NewGrimoireEntry(" Notes ", "body", "research"))
	require.NoError(t, err)
	assert.Equal(t, "Notes", saved.Title)

	got, err := svc.GetEntry(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AccessedCount)

	entries, err := svc.ListEntries(ctx, "research")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, svc.DeleteEntry(ctx, saved.ID))
	_, err = svc.GetEntry(ctx, saved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLibraryService_SaveEntryValidation(t *testing.T) {
	svc := newLibraryService(t)

	_, err := svc.SaveEntry(context.Background(), domain.GrimoireEntry{Content: "orphan"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLibraryService_ProjectLifecycle(t *testing.T) {
	svc := newLibraryService(t)
	ctx := context.Background()

	saved, err := svc.SaveProject(ctx, domain.NewProject("lorevault", "engine"))
	require.NoError(t, err)

	saved.Status = domain.ProjectPaused
	_, err = svc.SaveProject(ctx, *saved)
	require.NoError(t, err)

	got, err := svc.GetProject(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectPaused, got.Status)

	require.NoError(t, svc.DeleteProject(ctx, saved.ID))
}

func TestLibraryService_APIConfigNormalizesProvider(t *testing.T) {
	svc := newLibraryService(t)
	ctx := context.Background()

	_, err := svc.SaveAPIConfig(ctx, domain.APIConfig{Provider: "  Anthropic "})
	require.NoError(t, err)

	got, err := svc.GetAPIConfig(ctx, "ANTHROPIC")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", got.Provider)

	require.NoError(t, svc.DeactivateAPIConfig(ctx, "Anthropic"))
	_, err = svc.GetAPIConfig(ctx, "anthropic")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
