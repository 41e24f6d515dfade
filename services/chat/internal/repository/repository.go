package repository

import (
	"context"

	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
)

// SessionRepository stores chat sessions. Implementations return copies so
// callers never share a Session with the store.
type SessionRepository interface {
	// Create stores a new session; an existing ID is a conflict.
	Create(ctx context.Context, session *domain.Session) error

	// Get returns the session or an apperrors NotFound error.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Save overwrites a session and refreshes its expiry.
	Save(ctx context.Context, session *domain.Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}
