package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), server
}

func testStore(t *testing.T, store Store) {
	ctx := context.Background()
	entry := &Entry{Status: 200, ContentType: "text/html; charset=utf-8", Body: []byte("<p>page</p>")}

	_, ok, err := store.Get(ctx, "index_page:u0")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "index_page:u0", entry))
	require.NoError(t, store.Set(ctx, "index_page:u7", entry))
	require.NoError(t, store.Set(ctx, "other:u0", entry))

	got, ok, err := store.Get(ctx, "index_page:u0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)

	require.NoError(t, store.Clear(ctx, "index_page:"))
	for _, key := range []string{"index_page:u0", "index_page:u7"} {
		_, ok, err = store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	_, ok, err = store.Get(ctx, "other:u0")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore(16, time.Hour))
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	testStore(t, store)
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(16, 20*time.Millisecond)
	require.NoError(t, store.Set(ctx, "k", &Entry{Status: 200}))
	assert.Eventually(t, func() bool {
		_, ok, _ := store.Get(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestRedisStoreExpires(t *testing.T) {
	ctx := context.Background()
	store, server := newRedisStore(t, time.Second)
	require.NoError(t, store.Set(ctx, "k", &Entry{Status: 200}))
	assert.Equal(t, time.Second, server.TTL("k"))

	server.FastForward(2 * time.Second)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
