package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-api/internal/models"
	"github.com/adanyl0v/go-task-api/internal/sessions"
	"github.com/adanyl0v/go-task-api/internal/storage"
)

// unknownUserHash is compared against when the username doesn't exist,
// so both branches of Authenticate pay for one argon2id comparison.
var unknownUserHash = sync.OnceValue(func() string {
	hash, err := argon2id.CreateHash("unknown-user-password", argon2id.DefaultParams)
	if err != nil {
		panic(err)
	}
	return hash
})

type authServiceImpl struct {
	logger          zerolog.Logger
	users           storage.UserRepository
	sessions        sessions.Store
	tokens          TokenService
	validate        *validator.Validate
	now             func() time.Time
	comparePassword func(password, hash string) (bool, error)
}

func NewAuthService(
	logger zerolog.Logger,
	users storage.UserRepository,
	sessionStore sessions.Store,
	tokens TokenService,
) AuthService {
	return &authServiceImpl{
		logger:          logger,
		users:           users,
		sessions:        sessionStore,
		tokens:          tokens,
		validate:        newValidator(),
		now:             now,
		comparePassword: argon2id.ComparePasswordAndHash,
	}
}

func (s *authServiceImpl) Signup(ctx context.Context, params SignupParams) (*models.User, error) {
	params.Email = strings.TrimSpace(params.Email)
	params.FirstName = strings.TrimSpace(params.FirstName)
	params.LastName = strings.TrimSpace(params.LastName)

	err := validateStruct(s.validate, params)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Msg("invalid signup params")
		return nil, err
	}

	now := s.now()
	user := &models.User{
		Username:  normalizeUsername(params.Email),
		Email:     params.Email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}
	user.ID = userUUID.String()

	passwordHash, err := argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}
	user.Password = passwordHash

	err = s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.logger.Info().
				Str("username", user.Username).
				Msg("user with this email already exists")
			return nil, ErrUserAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("signed up user")
	return user, nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, params LoginParams) (*TokenPair, error) {
	err := validateStruct(s.validate, params)
	if err != nil {
		return nil, err
	}
	username := normalizeUsername(params.Username)

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_, _ = s.comparePassword(params.Password, unknownUserHash())
			s.logger.Info().
				Str("username", username).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Str("username", username).
			Msg("failed to get user by username")
		return nil, err
	}

	match, err := s.comparePassword(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Info().
			Str("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate refresh token")
		return nil, err
	}

	err = s.sessions.SaveSession(ctx, &models.Session{
		ID:        refresh.ID,
		UserID:    user.ID,
		ExpiresAt: refresh.ExpiresAt,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to save session")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("session_id", refresh.ID).
		Msg("authenticated user")
	return &TokenPair{
		Access:  access,
		Refresh: refresh,
	}, nil
}

func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*AccessToken, error) {
	claims, err := s.tokens.ParseToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		s.logger.Info().
			Err(err).
			Msg("rejected refresh token")
		return nil, err
	}

	session, err := s.liveSession(ctx, claims)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.GenerateAccessToken(session.UserID, claims.Username)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", session.UserID).
		Str("session_id", session.ID).
		Msg("refreshed access token")
	return &AccessToken{Access: access}, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, requester models.Requester, refreshToken string) error {
	claims, err := s.tokens.ParseToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		s.logger.Info().
			Err(err).
			Msg("rejected refresh token")
		return err
	}
	if claims.Subject != requester.UserID {
		s.logger.Warn().
			Str("user_id", requester.UserID).
			Str("token_subject", claims.Subject).
			Msg("refresh token belongs to another user")
		return fmt.Errorf("%w: token subject mismatch", ErrInvalidToken)
	}

	err = s.sessions.DeleteSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sessions.ErrSessionNotFound) {
			return fmt.Errorf("%w: session not found", ErrInvalidToken)
		}

		s.logger.Error().
			Err(err).
			Str("session_id", claims.ID).
			Msg("failed to delete session")
		return err
	}

	s.logger.Info().
		Str("user_id", requester.UserID).
		Str("session_id", claims.ID).
		Msg("logged out")
	return nil
}

func (s *authServiceImpl) Authorize(ctx context.Context, accessToken string) (*models.Requester, error) {
	claims, err := s.tokens.ParseToken(accessToken, TokenTypeAccess)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Msg("rejected access token")
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Str("user_id", claims.Subject).
				Msg("access token of unknown user")
			return nil, fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}

		s.logger.Error().
			Err(err).
			Str("user_id", claims.Subject).
			Msg("failed to get user by id")
		return nil, err
	}

	return &models.Requester{
		UserID:   user.ID,
		Username: user.Username,
	}, nil
}

func (s *authServiceImpl) liveSession(ctx context.Context, claims *Claims) (*models.Session, error) {
	session, err := s.sessions.GetSessionByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sessions.ErrSessionNotFound) {
			s.logger.Info().
				Str("session_id", claims.ID).
				Msg("session not found")
			return nil, fmt.Errorf("%w: session revoked", ErrInvalidToken)
		}

		s.logger.Error().
			Err(err).
			Str("session_id", claims.ID).
			Msg("failed to get session")
		return nil, err
	}

	if session.UserID != claims.Subject {
		s.logger.Warn().
			Str("session_id", session.ID).
			Msg("session belongs to another user")
		return nil, fmt.Errorf("%w: session subject mismatch", ErrInvalidToken)
	}
	return session, nil
}

func normalizeUsername(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// now returns the current UTC time at the precision PostgreSQL stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
