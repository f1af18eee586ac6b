package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mycyberclinics/verifysvc/domain"
)

const (
	sessionKeyPrefix = "session:"
	userSetKeyPrefix = "user_sessions:"
)

// SessionRepositoryImpl implements domain.SessionRepository on the shared
// store. Records are JSON blobs with a sliding TTL; a per-user membership
// set tracks every live session id so durable-state changes can fan out.
type SessionRepositoryImpl struct {
	store domain.SharedStore
	ttl   time.Duration
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(store domain.SharedStore, ttl time.Duration) *SessionRepositoryImpl {
	return &SessionRepositoryImpl{
		store: store,
		ttl:   ttl,
	}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func userSetKey(userID uint) string {
	return userSetKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Create implements domain.SessionRepository
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.store.SetWithExpiry(ctx, sessionKey(session.ID), string(data), r.ttl); err != nil {
		return err
	}
	if err := r.store.AddToSet(ctx, userSetKey(session.UserID), session.ID); err != nil {
		return err
	}
	// The membership set outlives any single session by the same sliding
	// window; stale ids are tolerated and skipped on read.
	return r.store.Expire(ctx, userSetKey(session.UserID), r.ttl)
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := r.store.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.ExpiresAt.Before(time.Now()) {
		_ = r.store.Del(ctx, sessionKey(sessionID))
		return nil, domain.ErrSessionExpired
	}

	return &session, nil
}

// IDsByUser implements domain.SessionRepository
func (r *SessionRepositoryImpl) IDsByUser(ctx context.Context, userID uint) ([]string, error) {
	return r.store.MembersOf(ctx, userSetKey(userID))
}

// Update rewrites a session record keeping its remaining TTL, so a sync
// write never extends or shortens the session's lifetime. A record whose
// TTL already ran out gets the repository's full TTL back, matching the
// sliding-expiry contract.
func (r *SessionRepositoryImpl) Update(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	remaining, err := r.store.TTL(ctx, sessionKey(session.ID))
	if err != nil {
		return err
	}
	if remaining <= 0 {
		remaining = r.ttl
	}

	return r.store.SetWithExpiry(ctx, sessionKey(session.ID), string(data), remaining)
}

// Delete implements domain.SessionRepository
func (r *SessionRepositoryImpl) Delete(ctx context.Context, sessionID string) error {
	session, err := r.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired) {
			return nil
		}
		return err
	}

	if err := r.store.Del(ctx, sessionKey(sessionID)); err != nil {
		return err
	}
	return r.store.RemoveFromSet(ctx, userSetKey(session.UserID), sessionID)
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*SessionRepositoryImpl)(nil)
