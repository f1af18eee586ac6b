package services

import (
	"context"
	"errors"
	"log"

	"github.com/mycyberclinics/verifysvc/domain"
)

// SessionSyncServiceImpl implements domain.SessionSyncService as a
// best-effort fan-out: every live session registered under the user is
// read, patched, and rewritten with its remaining TTL. Sessions are
// independent records, so one failed update never aborts the others.
type SessionSyncServiceImpl struct {
	sessions domain.SessionRepository
}

// NewSessionSyncService creates a new session sync service
func NewSessionSyncService(sessions domain.SessionRepository) domain.SessionSyncService {
	return &SessionSyncServiceImpl{sessions: sessions}
}

// Propagate implements domain.SessionSyncService
func (s *SessionSyncServiceImpl) Propagate(ctx context.Context, userID uint, patch *domain.SessionPatch) {
	ids, err := s.sessions.IDsByUser(ctx, userID)
	if err != nil {
		log.Printf("session sync: failed to list sessions for user %d: %v", userID, err)
		return
	}

	for _, id := range ids {
		session, err := s.sessions.FindByID(ctx, id)
		if err != nil {
			// Expired or already-deleted ids linger in the membership set
			// until their own TTL clears them.
			if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired) {
				continue
			}
			log.Printf("session sync: failed to read session %s for user %d: %v", id, userID, err)
			continue
		}

		patch.Apply(session)

		if err := s.sessions.Update(ctx, session); err != nil {
			log.Printf("session sync: failed to update session %s for user %d: %v", id, userID, err)
		}
	}
}

// Compile-time interface compliance verification
var _ domain.SessionSyncService = (*SessionSyncServiceImpl)(nil)
