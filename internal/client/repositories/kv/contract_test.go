package kv

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key is not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "absent")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "profile", []byte(`{"name":"Ada"}`)))
		got, err := repo.Get(ctx, "profile")
		require.NoError(t, err)
		assert.Equal(t, `{"name":"Ada"}`, string(got))
	})

	t.Run("set overwrites whole value", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "profile", []byte(`{"name":"Bob"}`)))
		got, err := repo.Get(ctx, "profile")
		require.NoError(t, err)
		assert.Equal(t, `{"name":"Bob"}`, string(got))
	})

	t.Run("list returns all keys", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "logs", []byte(`[]`)))
		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string][]byte{
			"profile": []byte(`{"name":"Bob"}`),
			"logs":    []byte(`[]`),
		}, all)
	})

	t.Run("delete removes key", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "logs"))
		_, err := repo.Get(ctx, "logs")
		assert.ErrorIs(t, err, common.ErrorNotFound)
		require.NoError(t, repo.Delete(ctx, "logs"), "deleting a missing key is not an error")
	})

	t.Run("clear empties store", func(t *testing.T) {
		require.NoError(t, repo.Clear(ctx))
		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
