package otc

import (
	"context"
	"time"

	"github.com/bahir-ride/api/internal/domain"
	redisinfra "github.com/bahir-ride/api/internal/infrastructure/redis"
)

const rateWindow = time.Hour

// RateLimiter counts code requests per (identifier, purpose) in a fixed
// one-hour window. It only reports the count; the orchestrator enforces the
// configured threshold so policy stays adjustable per purpose.
type RateLimiter struct {
	store Store
}

func NewRateLimiter(store Store) *RateLimiter {
	return &RateLimiter{store: store}
}

func rateKey(identifier string, purpose domain.OTCPurpose) string {
	return "otp:" + string(purpose) + ":" + identifier
}

// CheckAndIncrement atomically bumps the counter and returns the new value.
// The window TTL is set when the counter is born (value becomes 1) and never
// extended, so the counter fully resets an hour after the first attempt.
func (l *RateLimiter) CheckAndIncrement(ctx context.Context, identifier string, purpose domain.OTCPurpose) (int64, error) {
	k := rateKey(identifier, purpose)
	count, err := l.store.Increment(ctx, redisinfra.NamespaceRateLimit, k)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.store.Expire(ctx, redisinfra.NamespaceRateLimit, k, rateWindow); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Reset clears the counter. Called after a successful verification so a
// legitimate user starts a fresh abuse window.
func (l *RateLimiter) Reset(ctx context.Context, identifier string, purpose domain.OTCPurpose) error {
	return l.store.Delete(ctx, redisinfra.NamespaceRateLimit, rateKey(identifier, purpose))
}
