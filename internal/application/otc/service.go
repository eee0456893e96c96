package otc

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bahir-ride/api/internal/domain"
	redisinfra "github.com/bahir-ride/api/internal/infrastructure/redis"
)

const (
	codeTTL  = 5 * time.Minute  // registration and login codes
	resetTTL = 10 * time.Minute // password-reset codes
)

// Store is the volatile TTL store codes and counters live in.
type Store interface {
	Set(ctx context.Context, ns, key, value string, ttl time.Duration) error
	Get(ctx context.Context, ns, key string) (string, error)
	CompareAndDelete(ctx context.Context, ns, key, value string) (bool, error)
	Delete(ctx context.Context, ns, key string) error
	Increment(ctx context.Context, ns, key string) (int64, error)
	Expire(ctx context.Context, ns, key string, ttl time.Duration) error
}

// Entry is the stored code payload: the code plus a role-or-kind tag the
// caller acts on after verification.
type Entry struct {
	Code string `json:"otp"`
	Tag  string `json:"tag"`
}

// Service issues and consumes one-time codes. Exactly one live code exists
// per identifier per purpose; issuing again shadows the prior code.
type Service interface {
	Issue(ctx context.Context, identifier string, purpose domain.OTCPurpose, tag string) (code string, ttl time.Duration, err error)
	Verify(ctx context.Context, identifier string, purpose domain.OTCPurpose, code string) (Entry, error)
	Peek(ctx context.Context, identifier string, purpose domain.OTCPurpose, code string) error
}

type service struct {
	store   Store
	gen     CodeGenerator
	limiter *RateLimiter
}

func NewService(store Store, gen CodeGenerator, limiter *RateLimiter) Service {
	return &service{store: store, gen: gen, limiter: limiter}
}

// storageKey maps purpose+identifier onto the cache key. Registration and
// login share one key (a fresh login code shadows an unconsumed
// registration code for the same identifier); reset codes live apart so a
// reset flow can't consume a login code.
func storageKey(identifier string, purpose domain.OTCPurpose) string {
	if purpose == domain.PurposeReset {
		return "reset:" + identifier
	}
	return identifier
}

func purposeTTL(purpose domain.OTCPurpose) time.Duration {
	if purpose == domain.PurposeReset {
		return resetTTL
	}
	return codeTTL
}

func (s *service) Issue(ctx context.Context, identifier string, purpose domain.OTCPurpose, tag string) (string, time.Duration, error) {
	code, err := s.gen.Generate()
	if err != nil {
		return "", 0, err
	}
	payload, err := json.Marshal(Entry{Code: code, Tag: tag})
	if err != nil {
		return "", 0, err
	}
	ttl := purposeTTL(purpose)
	if err := s.store.Set(ctx, redisinfra.NamespaceOTP, storageKey(identifier, purpose), string(payload), ttl); err != nil {
		return "", 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return code, ttl, nil
}

// Verify consumes the live code for identifier+purpose. The consume step
// hard-fails when the store is unreachable: "store down" is never treated
// as "code absent, proceed". On success the purpose's rate counter is
// cleared.
func (s *service) Verify(ctx context.Context, identifier string, purpose domain.OTCPurpose, code string) (Entry, error) {
	k := storageKey(identifier, purpose)

	raw, entry, err := s.fetch(ctx, k, code)
	if err != nil {
		return Entry{}, err
	}

	// The matching read above keeps wrong guesses from consuming the code;
	// the compare-and-delete is the single consumption point, and it only
	// removes the exact payload that was compared. Under concurrent
	// duplicate submissions exactly one caller consumes, and a code
	// reissued between read and consume is left for its rightful owner.
	deleted, err := s.store.CompareAndDelete(ctx, redisinfra.NamespaceOTP, k, raw)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if !deleted {
		return Entry{}, domain.ErrCodeExpired
	}

	// Counter clearing is best-effort; the window expires on its own.
	_ = s.limiter.Reset(ctx, identifier, purpose)

	return entry, nil
}

// Peek validates a code without consuming it, for the pre-submit check in
// the reset flow.
func (s *service) Peek(ctx context.Context, identifier string, purpose domain.OTCPurpose, code string) error {
	_, _, err := s.fetch(ctx, storageKey(identifier, purpose), code)
	return err
}

// fetch loads the stored payload and checks the submitted code against it.
// The raw payload is returned alongside the decoded entry so the consume
// step can delete exactly what was compared.
func (s *service) fetch(ctx context.Context, key, inputCode string) (string, Entry, error) {
	raw, err := s.store.Get(ctx, redisinfra.NamespaceOTP, key)
	if errors.Is(err, redisinfra.ErrCacheMiss) {
		return "", Entry{}, domain.ErrCodeExpired
	}
	if err != nil {
		return "", Entry{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return "", Entry{}, domain.ErrCodeInvalid
	}

	input := strings.TrimSpace(inputCode)
	if len(input) != len(entry.Code) ||
		subtle.ConstantTimeCompare([]byte(input), []byte(entry.Code)) != 1 {
		return "", Entry{}, domain.ErrCodeInvalid
	}
	return raw, entry, nil
}
