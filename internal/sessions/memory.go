package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/adanyl0v/go-task-api/internal/models"
)

type memoryStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]models.Session
}

// NewMemoryStore returns a Store for single-instance deployments
// and tests. Expired sessions are dropped lazily on access.
func NewMemoryStore() Store {
	return &memoryStore{
		now:      time.Now,
		sessions: make(map[string]models.Session),
	}
}

func (s *memoryStore) SaveSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = *session
	return nil
}

func (s *memoryStore) GetSessionByID(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.live(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *memoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.live(sessionID); !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *memoryStore) live(sessionID string) (models.Session, bool) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return models.Session{}, false
	}
	if !s.now().Before(session.ExpiresAt) {
		delete(s.sessions, sessionID)
		return models.Session{}, false
	}
	return session, true
}
