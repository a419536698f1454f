package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory/apps/go-server/internal/game"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	s, err := game.NewSession(game.Options{ID: "g1", Pool: []string{"a", "b"}, Pairs: 2})
	require.NoError(t, err)

	_, err = st.Get(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Save(ctx, s))
	got, err := st.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, st.Delete(ctx, "g1"))
	_, err = st.Get(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, st.Delete(ctx, "missing"))
}
