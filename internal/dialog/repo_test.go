package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NewMemory()

	it, err := s.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, it.State)
	assert.Empty(t, it.Payload)

	require.NoError(t, s.Set(ctx, 42, StateRegName, Payload{"group": "ELECTRICAL", "n": 3}))
	it, err = s.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StateRegName, it.State)
	g, ok := GetString(it.Payload, "group")
	assert.True(t, ok)
	assert.Equal(t, "ELECTRICAL", g)
	assert.Equal(t, float64(3), it.Payload["n"])

	_, ok = GetString(it.Payload, "n")
	assert.False(t, ok)

	require.NoError(t, s.Reset(ctx, 42))
	it, err = s.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, it.State)
}
