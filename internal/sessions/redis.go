package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-api/internal/models"
)

const keyPrefix = "refresh_token:"

type redisStore struct {
	logger zerolog.Logger
	client redis.Cmdable
}

func NewRedisStore(logger zerolog.Logger, client redis.Cmdable) Store {
	return &redisStore{
		logger: logger,
		client: client,
	}
}

func (s *redisStore) SaveSession(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s is already expired", session.ID)
	}

	err := s.client.Set(ctx, sessionKey(session.ID), session.UserID, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Debug().
		Str("session_id", session.ID).
		Str("user_id", session.UserID).
		Time("expires_at", session.ExpiresAt).
		Msg("saved session")
	return nil
}

func (s *redisStore) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	key := sessionKey(sessionID)

	userID, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session ttl: %w", err)
	}
	// A negative ttl means the key has just expired or has no expiration,
	// which never happens for keys written by SaveSession.
	if ttl < 0 {
		return nil, ErrSessionNotFound
	}

	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *redisStore) DeleteSession(ctx context.Context, sessionID string) error {
	deleted, err := s.client.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted == 0 {
		return ErrSessionNotFound
	}
	s.logger.Debug().
		Str("session_id", sessionID).
		Msg("deleted session")
	return nil
}

func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}
