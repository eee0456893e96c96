package otc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahir-ride/api/internal/domain"
	redisinfra "github.com/bahir-ride/api/internal/infrastructure/redis"
)

func newTestService(t *testing.T, code string) (Service, *RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := redisinfra.NewCodeStore(client)
	limiter := NewRateLimiter(store)
	return NewService(store, FixedGenerator{Code: code}, limiter), limiter, mr
}

func TestIssueAndVerify(t *testing.T) {
	svc, _, _ := newTestService(t, "123456")
	ctx := context.Background()

	code, ttl, err := svc.Issue(ctx, "+251911111111", domain.PurposeRegistration, string(domain.RolePassenger))
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.Equal(t, 5*time.Minute, ttl)

	entry, err := svc.Verify(ctx, "+251911111111", domain.PurposeRegistration, "123456")
	require.NoError(t, err)
	assert.Equal(t, string(domain.RolePassenger), entry.Tag)
}

func TestVerifyConsumesCode(t *testing.T) {
	svc, _, _ := newTestService(t, "123456")
	ctx := context.Background()

	_, _, err := svc.Issue(ctx, "+251911111111", domain.PurposeLogin, "")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "+251911111111", domain.PurposeLogin, "123456")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "+251911111111", domain.PurposeLogin, "123456")
	assert.ErrorIs(t, err, domain.ErrCodeExpired)
}

func TestWrongCodeDoesNotConsume(t *testing.T) {
	svc, _, _ := newTestService(t, "123456")
	ctx := context.Background()

	_, _, err := svc.Issue(ctx, "+251911111111", domain.PurposeLogin, "")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "+251911111111", domain.PurposeLogin, "000000")
	assert.ErrorIs(t, err, domain.ErrCodeInvalid)

	// The live code survives the wrong guess.
	_, err = svc.Verify(ctx, "+251911111111", domain.PurposeLogin, "123456")
	assert.NoError(t, err)
}

func TestReissueShadowsOldCode(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := redisinfra.NewCodeStore(client)
	limiter := NewRateLimiter(store)
	ctx := context.Background()

	first := NewService(store, FixedGenerator{Code: "111111"}, limiter)
	_, _, err := first.Issue(ctx, "+251911111111", domain.PurposeLogin, "")
	require.NoError(t, err)

	second := NewService(store, FixedGenerator{Code: "222222"}, limiter)
	_, _, err = second.Issue(ctx, "+251911111111", domain.PurposeLogin, "")
	require.NoError(t, err)

	_, err = second.Verify(ctx, "+251911111111", domain.PurposeLogin, "111111")
	assert.ErrorIs(t, err, domain.ErrCodeInvalid)

	_, err = second.Verify(ctx, "+251911111111", domain.PurposeLogin, "222222")
	assert.NoError(t, err)
}

func TestExpiredCode(t *testing.T) {
	svc, _, mr := newTestService(t, "123456")
	ctx := context.Background()

	_, ttl, err := svc.Issue(ctx, "+251911111111", domain.PurposeReset, "reset")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, ttl)

	mr.FastForward(ttl + time.Second)

	_, err = svc.Verify(ctx, "+251911111111", domain.PurposeReset, "123456")
	assert.ErrorIs(t, err, domain.ErrCodeExpired)
}

func TestResetCodeIsolatedFromLoginCode(t *testing.T) {
	svc, _, _ := newTestService(t, "123456")
	ctx := context.Background()

	_, _, err := svc.Issue(ctx, "+251911111111", domain.PurposeReset, "reset")
	require.NoError(t, err)

	// No login code exists; the reset code must not satisfy a login verify.
	_, err = svc.Verify(ctx, "+251911111111", domain.PurposeLogin, "123456")
	assert.ErrorIs(t, err, domain.ErrCodeExpired)

	_, err = svc.Verify(ctx, "+251911111111", domain.PurposeReset, "123456")
	assert.NoError(t, err)
}

func TestPeekDoesNotConsume(t *testing.T) {
	svc, _, _ := newTestService(t, "123456")
	ctx := context.Background()

	_, _, err := svc.Issue(ctx, "+251911111111", domain.PurposeReset, "reset")
	require.NoError(t, err)

	require.NoError(t, svc.Peek(ctx, "+251911111111", domain.PurposeReset, "123456"))
	require.NoError(t, svc.Peek(ctx, "+251911111111", domain.PurposeReset, "123456"))

	assert.ErrorIs(t, svc.Peek(ctx, "+251911111111", domain.PurposeReset, "999999"), domain.ErrCodeInvalid)

	_, err = svc.Verify(ctx, "+251911111111", domain.PurposeReset, "123456")
	assert.NoError(t, err)
}

func TestConcurrentVerifyExactlyOneWins(t *testing.T) {
	svc, _, _ := newTestService(t, "123456")
	ctx := context.Background()

	_, _, err := svc.Issue(ctx, "+251911111111", domain.PurposeLogin, "")
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Verify(ctx, "+251911111111", domain.PurposeLogin, "123456")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrCodeExpired)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestRateLimiterWindow(t *testing.T) {
	_, limiter, mr := newTestService(t, "123456")
	ctx := context.Background()

	for i := int64(1); i <= 6; i++ {
		count, err := limiter.CheckAndIncrement(ctx, "+251911111111", domain.PurposeLogin)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	// A different purpose counts separately.
	count, err := limiter.CheckAndIncrement(ctx, "+251911111111", domain.PurposeReset)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	mr.FastForward(time.Hour + time.Second)

	count, err = limiter.CheckAndIncrement(ctx, "+251911111111", domain.PurposeLogin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestVerifySuccessResetsCounter(t *testing.T) {
	svc, limiter, _ := newTestService(t, "123456")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.CheckAndIncrement(ctx, "+251911111111", domain.PurposeLogin)
		require.NoError(t, err)
	}

	_, _, err := svc.Issue(ctx, "+251911111111", domain.PurposeLogin, "")
	require.NoError(t, err)
	_, err = svc.Verify(ctx, "+251911111111", domain.PurposeLogin, "123456")
	require.NoError(t, err)

	count, err := limiter.CheckAndIncrement(ctx, "+251911111111", domain.PurposeLogin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
