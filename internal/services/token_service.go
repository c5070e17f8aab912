package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const minSigningKeyLength = 32

var ErrSigningKeyTooShort = fmt.Errorf("jwt signing key must be at least %d bytes", minSigningKeyLength)

// Claims are the JWT claims of both access and refresh tokens.
// Subject holds the user ID and ID (jti) is unique per token.
type Claims struct {
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

type TokenService interface {
	GenerateAccessToken(userID, username string) (*IssuedToken, error)
	GenerateRefreshToken(userID, username string) (*IssuedToken, error)

	// ParseToken verifies the signature, issuer and expiration
	// of the token and that it is of the wanted type. Every
	// failure wraps ErrInvalidToken.
	ParseToken(token, tokenType string) (*Claims, error)

	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

type tokenServiceImpl struct {
	issuer          string
	signingKey      []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewTokenService(
	issuer string,
	signingKey []byte,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) (TokenService, error) {
	if len(signingKey) < minSigningKeyLength {
		return nil, ErrSigningKeyTooShort
	}
	return &tokenServiceImpl{
		issuer:          issuer,
		signingKey:      signingKey,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}, nil
}

func (s *tokenServiceImpl) GenerateAccessToken(userID, username string) (*IssuedToken, error) {
	return s.generateToken(userID, username, TokenTypeAccess, s.accessTokenTTL)
}

func (s *tokenServiceImpl) GenerateRefreshToken(userID, username string) (*IssuedToken, error) {
	return s.generateToken(userID, username, TokenTypeRefresh, s.refreshTokenTTL)
}

func (s *tokenServiceImpl) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

func (s *tokenServiceImpl) RefreshTokenTTL() time.Duration {
	return s.refreshTokenTTL
}

func (s *tokenServiceImpl) ParseToken(token, tokenType string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(
		token,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token is expired", ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, tokenType, claims.TokenType)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or id", ErrInvalidToken)
	}
	return claims, nil
}

func (s *tokenServiceImpl) generateToken(userID, username, tokenType string, ttl time.Duration) (*IssuedToken, error) {
	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenUUID.String(),
			Issuer:    s.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &IssuedToken{
		Token:     signed,
		ID:        tokenUUID.String(),
		ExpiresAt: expiresAt,
	}, nil
}
