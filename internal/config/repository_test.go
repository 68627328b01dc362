package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangxinyong12/auto-fill-extension/internal/config"
)

func TestFileRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "state.json")

	repo := config.NewFileRepository(path)

	_, ok, err := repo.Get(ctx, "enabled")
	require.NoError(t, err)
	assert.False(t, ok, "missing file reads as empty, not as an error")

	require.NoError(t, repo.Set(ctx, "enabled", "true"))
	require.NoError(t, repo.Set(ctx, "site:example.com", "allow"))

	// A fresh instance must see the persisted entries.
	reopened := config.NewFileRepository(path)
	v, ok, err := reopened.Get(ctx, "site:example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "allow", v)
}

func TestFileRepositoryOverwrite(t *testing.T) {
	ctx := context.Background()
	repo := config.NewFileRepository(filepath.Join(t.TempDir(), "state.json"))

	require.NoError(t, repo.Set(ctx, "k", "v1"))
	require.NoError(t, repo.Set(ctx, "k", "v2"))

	v, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := config.NewMemoryRepository()

	_, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "k", "v"))
	v, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestRepositoryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := config.NewMemoryRepository()
	_, _, err := repo.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Set(ctx, "k", "v"), context.Canceled)
}
