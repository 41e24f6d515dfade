package memory

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
)

type entry struct {
	session   *domain.Session
	expiresAt time.Time
}

// SessionRepository keeps sessions in process memory. Sessions idle for
// longer than the TTL are treated as gone; a zero TTL keeps them forever.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionRepository returns an empty repository.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *SessionRepository) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[session.ID]; ok && !r.expired(e) {
		return apperrors.Conflict("session " + session.ID + " already exists")
	}
	r.sessions[session.ID] = r.entry(session)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok || r.expired(e) {
		return nil, apperrors.NotFound("session", id)
	}
	return e.session.Clone(), nil
}

func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = r.entry(session)
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (r *SessionRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.sessions {
		if r.expired(e) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, expired or not.
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *SessionRepository) entry(s *domain.Session) entry {
	e := entry{session: s.Clone()}
	if r.ttl > 0 {
		e.expiresAt = r.now().Add(r.ttl)
	}
	return e
}

func (r *SessionRepository) expired(e entry) bool {
	return !e.expiresAt.IsZero() && r.now().After(e.expiresAt)
}
