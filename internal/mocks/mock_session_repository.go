package mocks

import (
	"context"
	"sync"

	"github.com/mycyberclinics/verifysvc/domain"
)

// MockSessionRepository implements domain.SessionRepository for testing.
// Without overrides it behaves as an in-memory repository.
type MockSessionRepository struct {
	CreateFunc    func(ctx context.Context, session *domain.Session) error
	FindByIDFunc  func(ctx context.Context, sessionID string) (*domain.Session, error)
	IDsByUserFunc func(ctx context.Context, userID uint) ([]string, error)
	UpdateFunc    func(ctx context.Context, session *domain.Session) error
	DeleteFunc    func(ctx context.Context, sessionID string) error

	mu       sync.Mutex
	sessions map[string]*domain.Session
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *MockSessionRepository) IDsByUser(ctx context.Context, userID uint) ([]string, error) {
	if m.IDsByUserFunc != nil {
		return m.IDsByUserFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, session := range m.sessions {
		if session.UserID == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MockSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)
