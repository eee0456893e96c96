package redisinfra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*CodeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCodeStore(client), mr
}

func TestCodeStore_SetGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, NamespaceOTP, "+251911223344", "123456", 5*time.Minute))

	v, err := store.Get(ctx, NamespaceOTP, "+251911223344")
	require.NoError(t, err)
	assert.Equal(t, "123456", v)

	require.NoError(t, store.Delete(ctx, NamespaceOTP, "+251911223344"))
	_, err = store.Get(ctx, NamespaceOTP, "+251911223344")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCodeStore_CompareAndDelete_ConsumesOnce(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, NamespaceOTP, "k", "654321", time.Minute))

	ok, err := store.CompareAndDelete(ctx, NamespaceOTP, "k", "654321")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.CompareAndDelete(ctx, NamespaceOTP, "k", "654321")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodeStore_CompareAndDelete_LeavesDifferentValue(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, NamespaceOTP, "k", "new-value", time.Minute))

	ok, err := store.CompareAndDelete(ctx, NamespaceOTP, "k", "stale-value")
	require.NoError(t, err)
	assert.False(t, ok)

	// The live value survives the stale attempt.
	v, err := store.Get(ctx, NamespaceOTP, "k")
	require.NoError(t, err)
	assert.Equal(t, "new-value", v)
}

func TestCodeStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, NamespaceOTP, "k", "111111", 300*time.Second))
	mr.FastForward(301 * time.Second)

	_, err := store.Get(ctx, NamespaceOTP, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCodeStore_IncrementAndExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	n, err := store.Increment(ctx, NamespaceRateLimit, "otp:registration:+251911223344")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.Expire(ctx, NamespaceRateLimit, "otp:registration:+251911223344", time.Hour))

	n, err = store.Increment(ctx, NamespaceRateLimit, "otp:registration:+251911223344")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mr.FastForward(time.Hour + time.Second)
	n, err = store.Increment(ctx, NamespaceRateLimit, "otp:registration:+251911223344")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counter restarts after window expiry")
}
