package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client), mr
}

func TestStore_Increment(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	n, err := store.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStore_ExpireNX(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Increment(ctx, "counter")
	require.NoError(t, err)
	require.NoError(t, store.ExpireNX(ctx, "counter", 10*time.Second))

	// A second call must not extend the existing TTL.
	require.NoError(t, store.ExpireNX(ctx, "counter", time.Hour))
	assert.Equal(t, 10*time.Second, mr.TTL("counter"))

	mr.FastForward(11 * time.Second)

	exists, err := store.Exists(ctx, "counter")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_SetNX(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	set, err := store.SetNX(ctx, "marker", "1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, set)

	set, err = store.SetNX(ctx, "marker", "1", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, set, "second set is rejected while the marker lives")

	mr.FastForward(31 * time.Second)

	set, err = store.SetNX(ctx, "marker", "1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, set)
}

func TestStore_GetMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	val, err := store.Get(context.Background(), "absent")
	require.NoError(t, err, "a missing key is not an error")
	assert.Empty(t, val)
}

func TestStore_NilClient(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	_, err := store.Increment(ctx, "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = store.SetNX(ctx, "k", "1", time.Second)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, store.ExpireNX(ctx, "k", time.Second), ErrUnavailable)
}

func TestStore_ServerDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.Increment(context.Background(), "k")
	assert.Error(t, err)
}
