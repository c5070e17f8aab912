// Package sessions keeps track of issued refresh tokens. A refresh
// token is only accepted while its session is present in the store.
package sessions

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-task-api/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

type Store interface {
	// SaveSession stores the session until its ExpiresAt.
	SaveSession(ctx context.Context, session *models.Session) error

	// GetSessionByID returns ErrSessionNotFound if the session
	// doesn't exist, was deleted or has expired.
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)

	// DeleteSession returns ErrSessionNotFound if there
	// was no live session with the given ID.
	DeleteSession(ctx context.Context, sessionID string) error
}
