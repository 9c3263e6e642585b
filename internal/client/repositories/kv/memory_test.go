package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Contract(t *testing.T) {
	runContract(t, NewMemoryRepository())
}

func TestMemoryRepository_CopiesValues(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	in := []byte("abc")
	require.NoError(t, r.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[1] = 'Y'
	again, _ := r.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}
