package mocks

import (
	"context"
	"time"

	"github.com/mycyberclinics/verifysvc/domain"
)

// MockSharedStore implements domain.SharedStore for testing
type MockSharedStore struct {
	GetFunc           func(ctx context.Context, key string) (string, error)
	SetWithExpiryFunc func(ctx context.Context, key, value string, ttl time.Duration) error
	IncrementFunc     func(ctx context.Context, key string) (int64, error)
	ExpireFunc        func(ctx context.Context, key string, ttl time.Duration) error
	TTLFunc           func(ctx context.Context, key string) (time.Duration, error)
	AddToSetFunc      func(ctx context.Context, setKey, member string) error
	RemoveFromSetFunc func(ctx context.Context, setKey, member string) error
	MembersOfFunc     func(ctx context.Context, setKey string) ([]string, error)
	RunAtomicFunc     func(ctx context.Context, script string, keys []string, args ...any) (any, error)
	DelFunc           func(ctx context.Context, keys ...string) error
}

// NewMockSharedStore creates a new MockSharedStore with default behaviors
func NewMockSharedStore() *MockSharedStore {
	return &MockSharedStore{}
}

func (m *MockSharedStore) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", domain.ErrKeyNotFound
}

func (m *MockSharedStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetWithExpiryFunc != nil {
		return m.SetWithExpiryFunc(ctx, key, value, ttl)
	}
	return nil
}

func (m *MockSharedStore) Increment(ctx context.Context, key string) (int64, error) {
	if m.IncrementFunc != nil {
		return m.IncrementFunc(ctx, key)
	}
	return 1, nil
}

func (m *MockSharedStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if m.ExpireFunc != nil {
		return m.ExpireFunc(ctx, key, ttl)
	}
	return nil
}

func (m *MockSharedStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	if m.TTLFunc != nil {
		return m.TTLFunc(ctx, key)
	}
	return time.Minute, nil
}

func (m *MockSharedStore) AddToSet(ctx context.Context, setKey, member string) error {
	if m.AddToSetFunc != nil {
		return m.AddToSetFunc(ctx, setKey, member)
	}
	return nil
}

func (m *MockSharedStore) RemoveFromSet(ctx context.Context, setKey, member string) error {
	if m.RemoveFromSetFunc != nil {
		return m.RemoveFromSetFunc(ctx, setKey, member)
	}
	return nil
}

func (m *MockSharedStore) MembersOf(ctx context.Context, setKey string) ([]string, error) {
	if m.MembersOfFunc != nil {
		return m.MembersOfFunc(ctx, setKey)
	}
	return nil, nil
}

func (m *MockSharedStore) RunAtomic(ctx context.Context, script string, keys []string, args ...any) (any, error) {
	if m.RunAtomicFunc != nil {
		return m.RunAtomicFunc(ctx, script, keys, args...)
	}
	return nil, nil
}

func (m *MockSharedStore) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.SharedStore = (*MockSharedStore)(nil)
