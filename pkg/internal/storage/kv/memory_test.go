package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "judilibre:token", []byte("abc"), 10*time.Second))
	require.NoError(t, m.Set(ctx, "forever", []byte("x"), 0))

	got, err := m.Get(ctx, "judilibre:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	now = now.Add(10 * time.Second)

	_, err = m.Get(ctx, "judilibre:token")
	assert.True(t, errors.Is(err, ErrKeyNotFound))

	keys, err := m.Scan(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"forever"}, keys)
	assert.Len(t, m.data, 1)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", in, 0))
	in[0] = 'z'

	out, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[0] = 'y'
	again, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryScanBadPattern(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set(context.Background(), "k", nil, 0))

	_, err := m.Scan(context.Background(), "[")
	assert.Error(t, err)
}
