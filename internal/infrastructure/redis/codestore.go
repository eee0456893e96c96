package redisinfra

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache namespaces. Kept short; they prefix every key to avoid collisions
// with other platform consumers of the same Redis.
const (
	NamespaceOTP       = "otp"
	NamespaceRateLimit = "rl"
)

// ErrCacheMiss is returned when a key is absent or already expired.
var ErrCacheMiss = errors.New("codestore: key not found")

// CodeStore is a namespaced TTL key-value store for one-time codes and
// rate counters.
type CodeStore struct {
	client *redis.Client
}

func NewCodeStore(client *redis.Client) *CodeStore {
	return &CodeStore{client: client}
}

func key(ns, k string) string { return ns + ":" + k }

// Set stores value under ns:key with the given TTL (0 = no expiry).
func (s *CodeStore) Set(ctx context.Context, ns, k, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key(ns, k), value, ttl).Err()
}

// Get fetches ns:key. Returns ErrCacheMiss when absent.
func (s *CodeStore) Get(ctx context.Context, ns, k string) (string, error) {
	v, err := s.client.Get(ctx, key(ns, k)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return v, err
}

// compareAndDeleteScript deletes ns:key only while it still holds the given
// value, in one server-side step.
var compareAndDeleteScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// CompareAndDelete removes ns:key only if it still holds exactly value, and
// reports whether the delete happened. This is the consumption primitive
// for one-time codes: under concurrent callers exactly one sees true, and a
// value replaced between read and consume is left untouched.
func (s *CodeStore) CompareAndDelete(ctx context.Context, ns, k, value string) (bool, error) {
	n, err := compareAndDeleteScript.Run(ctx, s.client, []string{key(ns, k)}, value).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes ns:key. Deleting an absent key is not an error.
func (s *CodeStore) Delete(ctx context.Context, ns, k string) error {
	return s.client.Del(ctx, key(ns, k)).Err()
}

// Increment atomically increments the integer at ns:key and returns the
// new value. A missing key counts from zero.
func (s *CodeStore) Increment(ctx context.Context, ns, k string) (int64, error) {
	return s.client.Incr(ctx, key(ns, k)).Result()
}

// Expire sets a TTL on an existing raw key. Escape hatch for the rate
// limiter, which must start its window on the first increment only.
func (s *CodeStore) Expire(ctx context.Context, ns, k string, ttl time.Duration) error {
	return s.client.Expire(ctx, key(ns, k), ttl).Err()
}
