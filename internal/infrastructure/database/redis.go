package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mycyberclinics/verifysvc/domain"
)

// FailureKind classifies a store connection failure
type FailureKind int

const (
	FailureOther FailureKind = iota
	FailureDNS
	FailureTimeout
)

// ClassifyFailure maps a connection error onto a FailureKind instead of
// sniffing error strings.
func ClassifyFailure(err error) FailureKind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureDNS
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureOther
}

// RedisStore implements domain.SharedStore over a single Redis client.
//
// On the first connection failure classified as a DNS failure against a
// non-loopback host, the store re-targets itself once to 127.0.0.1 on
// the same port and keeps serving through the new client. The
// substitution is never attempted a second time, so a flapping resolver
// cannot bounce the client between hosts.
type RedisStore struct {
	mu         sync.Mutex
	client     *redis.Client
	opts       *redis.Options
	retargeted bool

	scriptMu sync.Mutex
	scripts  map[string]*redis.Script
}

// NewRedisStore creates a shared-store adapter for the given address
func NewRedisStore(addr, password string, db int) *RedisStore {
	opts := &redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	return &RedisStore{
		client:  redis.NewClient(opts),
		opts:    opts,
		scripts: make(map[string]*redis.Script),
	}
}

// Ping verifies connectivity, applying the loopback substitution if needed
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.do(ctx, func(c *redis.Client) error {
		return c.Ping(ctx).Err()
	})
}

// Close releases the underlying client
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Close()
}

func (s *RedisStore) current() *redis.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// retarget swaps the client for one pointed at loopback on the same
// port. Returns false when the substitution is not applicable or has
// already been spent.
func (s *RedisStore) retarget() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retargeted {
		return false
	}
	host, port, err := net.SplitHostPort(s.opts.Addr)
	if err != nil || isLoopbackHost(host) {
		return false
	}

	s.retargeted = true
	substitute := net.JoinHostPort("127.0.0.1", port)
	log.Printf("shared store: DNS failure resolving %q, re-targeting to %s", host, substitute)

	_ = s.client.Close()
	opts := *s.opts
	opts.Addr = substitute
	s.opts = &opts
	s.client = redis.NewClient(&opts)
	return true
}

// do runs one store operation, applying the single loopback substitution
// on a DNS failure and wrapping every other failure as store-unavailable.
func (s *RedisStore) do(ctx context.Context, op func(c *redis.Client) error) error {
	err := op(s.current())
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}

	if ClassifyFailure(err) == FailureDNS && s.retarget() {
		err = op(s.current())
		if err == nil || errors.Is(err, redis.Nil) {
			return err
		}
	}

	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

// Get implements domain.SharedStore
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	var val string
	err := s.do(ctx, func(c *redis.Client) error {
		var opErr error
		val, opErr = c.Get(ctx, key).Result()
		return opErr
	})
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrKeyNotFound
	}
	return val, err
}

// SetWithExpiry implements domain.SharedStore
func (s *RedisStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.do(ctx, func(c *redis.Client) error {
		return c.Set(ctx, key, value, ttl).Err()
	})
}

// Increment implements domain.SharedStore
func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	var val int64
	err := s.do(ctx, func(c *redis.Client) error {
		var opErr error
		val, opErr = c.Incr(ctx, key).Result()
		return opErr
	})
	return val, err
}

// Expire implements domain.SharedStore
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.do(ctx, func(c *redis.Client) error {
		return c.Expire(ctx, key, ttl).Err()
	})
}

// TTL implements domain.SharedStore. A key with no expiry or no record
// reports a non-positive duration, matching the Redis convention.
func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	var ttl time.Duration
	err := s.do(ctx, func(c *redis.Client) error {
		var opErr error
		ttl, opErr = c.TTL(ctx, key).Result()
		return opErr
	})
	return ttl, err
}

// AddToSet implements domain.SharedStore
func (s *RedisStore) AddToSet(ctx context.Context, setKey, member string) error {
	return s.do(ctx, func(c *redis.Client) error {
		return c.SAdd(ctx, setKey, member).Err()
	})
}

// RemoveFromSet implements domain.SharedStore
func (s *RedisStore) RemoveFromSet(ctx context.Context, setKey, member string) error {
	return s.do(ctx, func(c *redis.Client) error {
		return c.SRem(ctx, setKey, member).Err()
	})
}

// MembersOf implements domain.SharedStore
func (s *RedisStore) MembersOf(ctx context.Context, setKey string) ([]string, error) {
	var members []string
	err := s.do(ctx, func(c *redis.Client) error {
		var opErr error
		members, opErr = c.SMembers(ctx, setKey).Result()
		return opErr
	})
	return members, err
}

// RunAtomic implements domain.SharedStore by executing a server-side Lua
// script. Scripts are cached per body so repeat calls go through EVALSHA.
func (s *RedisStore) RunAtomic(ctx context.Context, script string, keys []string, args ...any) (any, error) {
	s.scriptMu.Lock()
	compiled, ok := s.scripts[script]
	if !ok {
		compiled = redis.NewScript(script)
		s.scripts[script] = compiled
	}
	s.scriptMu.Unlock()

	var result any
	err := s.do(ctx, func(c *redis.Client) error {
		var opErr error
		result, opErr = compiled.Run(ctx, c, keys, args...).Result()
		return opErr
	})
	return result, err
}

// Del implements domain.SharedStore
func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.do(ctx, func(c *redis.Client) error {
		return c.Del(ctx, keys...).Err()
	})
}

// Compile-time interface compliance verification
var _ domain.SharedStore = (*RedisStore)(nil)
