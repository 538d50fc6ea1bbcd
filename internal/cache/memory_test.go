package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/case-gallery/internal/cache"
)

func newMemory(t *testing.T, sweep time.Duration) *cache.Memory {
	t.Helper()
	m := cache.NewMemory(sweep)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMemory_SetGet(t *testing.T) {
	c := newMemory(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemory_Get_Miss(t *testing.T) {
	c := newMemory(t, 0)

	got, ok, err := c.Get(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMemory_Get_ReturnsCopy(t *testing.T) {
	c := newMemory(t, 0)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("abc"), 0))

	got, _, _ := c.Get(ctx, "k")
	got[0] = 'z'

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemory_Expiry(t *testing.T) {
	c := newMemory(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Janitor_EvictsExpired(t *testing.T) {
	c := newMemory(t, 2*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", []byte("v"), time.Hour))

	assert.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestMemory_DeleteAndFlush(t *testing.T) {
	c := newMemory(t, 0)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, c.Delete(ctx, "a"))
	require.NoError(t, c.Delete(ctx, "a"), "deleting a missing key is not an error")
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Flush(ctx))
	require.NoError(t, c.Flush(ctx), "flushing an empty cache is a no-op")
	assert.Equal(t, 0, c.Len())
}

func TestMemory_Close_Idempotent(t *testing.T) {
	c := cache.NewMemory(time.Millisecond)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestJSONHelpers_RoundTrip(t *testing.T) {
	c := newMemory(t, 0)
	ctx := context.Background()

	type payload struct {
		IDs []int64 `json:"ids"`
	}
	require.NoError(t, cache.SetJSON(ctx, c, "ids", payload{IDs: []int64{3, 1, 2}}, time.Minute))

	got, ok, err := cache.GetJSON[payload](ctx, c, "ids")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{3, 1, 2}, got.IDs)
}

func TestGetJSON_CorruptEntry(t *testing.T) {
	c := newMemory(t, 0)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "bad", []byte("{not json"), 0))

	_, ok, err := cache.GetJSON[map[string]any](ctx, c, "bad")

	assert.Error(t, err)
	assert.False(t, ok)
}

func TestOpen_EmptyURLIsMemory(t *testing.T) {
	s, err := cache.Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok := s.(*cache.Memory)
	assert.True(t, ok)
}
