package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mycyberclinics/verifysvc/domain"
)

// ScopePolicy fixes the capacity and window for one quota scope
type ScopePolicy struct {
	Capacity int
	Window   time.Duration
}

// Well-known quota scopes
const (
	ScopeSignupIP   = "signup-ip"
	ScopeResendMail = "resend-email"
	ScopeResendIP   = "resend-ip"
	ScopeVerifyIP   = "verify-ip"
)

// DefaultScopePolicies returns the built-in quota table
func DefaultScopePolicies() map[string]ScopePolicy {
	return map[string]ScopePolicy{
		ScopeSignupIP:   {Capacity: 5, Window: time.Hour},
		ScopeResendMail: {Capacity: 3, Window: time.Hour},
		ScopeResendIP:   {Capacity: 10, Window: time.Hour},
		ScopeVerifyIP:   {Capacity: 60, Window: time.Hour},
	}
}

// consumeQuotaLua prunes the bucket's timestamp log, denies when the
// pruned count has reached capacity, otherwise records the new entry.
// KEYS[1] = bucket key (sorted set of timestamps)
// ARGV[1] = now in milliseconds
// ARGV[2] = window in milliseconds
// ARGV[3] = capacity
// ARGV[4] = unique member for this consumption
// Returns {allowed, remaining, retryAfterMs}.
const consumeQuotaLua = `
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, tonumber(ARGV[1]) - tonumber(ARGV[2]))
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  local retry = tonumber(ARGV[2])
  if oldest[2] then
    retry = tonumber(oldest[2]) + tonumber(ARGV[2]) - tonumber(ARGV[1])
  end
  return {0, 0, retry}
end
redis.call('ZADD', KEYS[1], tonumber(ARGV[1]), ARGV[4])
redis.call('PEXPIRE', KEYS[1], tonumber(ARGV[2]))
return {1, tonumber(ARGV[3]) - count - 1, 0}
`

// RateLimiterImpl implements domain.RateLimiter with shared-store
// sliding-window accounting and a per-process sliding-log fallback.
//
// The fallback log is private to this instance and is never written
// back to the shared store, so counts cannot be corrupted when the
// store comes back. Enforcement degrades to per-process while the
// store is down; it never fails open.
type RateLimiterImpl struct {
	store    domain.SharedStore
	policies map[string]ScopePolicy
	now      func() time.Time
	seq      atomic.Uint64

	mu        sync.Mutex
	fallback  map[string][]time.Time // per-bucket entry expiry instants
	lastSweep time.Time
}

// NewRateLimiter creates a rate limiter for the given scope policy table
func NewRateLimiter(store domain.SharedStore, policies map[string]ScopePolicy) *RateLimiterImpl {
	return &RateLimiterImpl{
		store:    store,
		policies: policies,
		now:      time.Now,
		fallback: make(map[string][]time.Time),
	}
}

func bucketKey(scope, key string) string {
	return "quota:" + scope + ":" + key
}

// Consume implements domain.RateLimiter
func (l *RateLimiterImpl) Consume(ctx context.Context, scope, key string) (*domain.QuotaDecision, error) {
	policy, ok := l.policies[scope]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownScope, scope)
	}

	decision, err := l.consumeShared(ctx, policy, bucketKey(scope, key))
	if err == nil {
		return decision, nil
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		return nil, err
	}

	log.Printf("rate limiter: shared store unavailable for scope %s, using in-process fallback: %v", scope, err)
	return l.consumeLocal(policy, bucketKey(scope, key)), nil
}

func (l *RateLimiterImpl) consumeShared(ctx context.Context, policy ScopePolicy, key string) (*domain.QuotaDecision, error) {
	nowMs := l.now().UnixMilli()

	raw, err := l.store.RunAtomic(ctx, consumeQuotaLua, []string{key},
		nowMs,
		policy.Window.Milliseconds(),
		policy.Capacity,
		l.uniqueMember(nowMs),
	)
	if err != nil {
		return nil, err
	}

	reply, ok := raw.([]interface{})
	if !ok || len(reply) != 3 {
		return nil, fmt.Errorf("unexpected quota script reply: %v", raw)
	}
	allowed, _ := reply[0].(int64)
	remaining, _ := reply[1].(int64)
	retryMs, _ := reply[2].(int64)

	if allowed != 1 {
		return &domain.QuotaDecision{
			Allowed:    false,
			RetryAfter: ceilToSecond(time.Duration(retryMs) * time.Millisecond),
		}, nil
	}
	return &domain.QuotaDecision{Allowed: true, Remaining: int(remaining)}, nil
}

// uniqueMember builds a collision-free sorted-set member for one
// consumption. Two consumptions in the same millisecond must not
// collapse into one log entry.
func (l *RateLimiterImpl) uniqueMember(nowMs int64) string {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%d-%d", nowMs, l.seq.Add(1))
	}
	return fmt.Sprintf("%d-%s", nowMs, hex.EncodeToString(suffix))
}

// fallbackSweepInterval bounds how long drained buckets linger in the
// in-process log during an outage.
const fallbackSweepInterval = time.Minute

// consumeLocal mirrors the shared-store semantics against a per-process
// log with the same capacity and window. Entries hold their expiry
// instant, so any bucket can be pruned without knowing its scope policy.
func (l *RateLimiterImpl) consumeLocal(policy ScopePolicy, key string) *domain.QuotaDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	entries := l.fallback[key]
	kept := entries[:0]
	for _, exp := range entries {
		if exp.After(now) {
			kept = append(kept, exp)
		}
	}

	if len(kept) >= policy.Capacity {
		l.fallback[key] = kept
		return &domain.QuotaDecision{Allowed: false, RetryAfter: ceilToSecond(kept[0].Sub(now))}
	}

	l.fallback[key] = append(kept, now.Add(policy.Window))
	return &domain.QuotaDecision{
		Allowed:   true,
		Remaining: policy.Capacity - len(kept) - 1,
	}
}

// sweepLocked drops expired entries across every bucket and deletes
// drained buckets, keeping the fallback map bounded over distinct keys.
// Caller holds l.mu.
func (l *RateLimiterImpl) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < fallbackSweepInterval {
		return
	}
	l.lastSweep = now

	for key, entries := range l.fallback {
		kept := entries[:0]
		for _, exp := range entries {
			if exp.After(now) {
				kept = append(kept, exp)
			}
		}
		if len(kept) == 0 {
			delete(l.fallback, key)
		} else {
			l.fallback[key] = kept
		}
	}
}

// ceilToSecond rounds up so a denial never reports a zero retry hint
func ceilToSecond(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	rounded := d.Truncate(time.Second)
	if rounded < d {
		rounded += time.Second
	}
	return rounded
}

// Compile-time interface compliance verification
var _ domain.RateLimiter = (*RateLimiterImpl)(nil)
