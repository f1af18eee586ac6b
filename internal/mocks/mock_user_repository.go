package mocks

import (
	"context"
	"sync"

	"github.com/mycyberclinics/verifysvc/domain"
)

// MockUserRepository implements domain.UserRepository for testing.
// Without overrides it behaves as an in-memory repository.
type MockUserRepository struct {
	CreateFunc              func(ctx context.Context, user *domain.User) error
	FindByEmailFunc         func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc            func(ctx context.Context, id uint) (*domain.User, error)
	MarkEmailVerifiedFunc   func(ctx context.Context, userID uint) error
	CompleteOnboardingFunc  func(ctx context.Context, userID uint) error
	UpdatePreferencesFunc   func(ctx context.Context, userID uint, prefs map[string]any) error

	mu     sync.Mutex
	nextID uint
	users  map[uint]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		nextID: 1,
		users:  make(map[uint]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, userID uint) error {
	if m.MarkEmailVerifiedFunc != nil {
		return m.MarkEmailVerifiedFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.EmailVerified = true
		return nil
	}
	return domain.ErrUserNotFound
}

func (m *MockUserRepository) CompleteOnboarding(ctx context.Context, userID uint) error {
	if m.CompleteOnboardingFunc != nil {
		return m.CompleteOnboardingFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.OnboardingCompleted = true
		return nil
	}
	return domain.ErrUserNotFound
}

func (m *MockUserRepository) UpdatePreferences(ctx context.Context, userID uint, prefs map[string]any) error {
	if m.UpdatePreferencesFunc != nil {
		return m.UpdatePreferencesFunc(ctx, userID, prefs)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Preferences = prefs
		return nil
	}
	return domain.ErrUserNotFound
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
