package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-api/internal/models"
	"github.com/adanyl0v/go-task-api/internal/sessions"
	"github.com/adanyl0v/go-task-api/internal/storage"
	"github.com/adanyl0v/go-task-api/internal/storage/memory"
)

// =============================================================================
// Mock UserRepository
// =============================================================================

type mockUserRepository struct {
	createUserFunc        func(ctx context.Context, user *models.User) error
	getUserByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	getUserByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if m.createUserFunc != nil {
		return m.createUserFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserByIDFunc != nil {
		return m.getUserByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getUserByUsernameFunc != nil {
		return m.getUserByUsernameFunc(ctx, username)
	}
	return nil, errors.New("not implemented")
}

// =============================================================================
// Test Helpers
// =============================================================================

type authTestEnv struct {
	service AuthService
	users   storage.UserRepository
	tokens  TokenService
	redis   *miniredis.Miniredis
}

func setupTestAuthService(t *testing.T) *authTestEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := memory.NewUserRepository()
	tokens := newTestTokenService(t, testAccessTokenTTL, testRefreshTokenTTL)
	store := sessions.NewRedisStore(zerolog.Nop(), client)

	return &authTestEnv{
		service: NewAuthService(zerolog.Nop(), users, store, tokens),
		users:   users,
		tokens:  tokens,
		redis:   mr,
	}
}

func validSignupParams() SignupParams {
	return SignupParams{
		Email:     "a@x.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "s3cret-pw",
	}
}

func mustSignup(t *testing.T, env *authTestEnv, params SignupParams) *models.User {
	t.Helper()

	user, err := env.service.Signup(context.Background(), params)
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	return user
}

// =============================================================================
// Signup Tests
// =============================================================================

func TestSignup_Success(t *testing.T) {
	env := setupTestAuthService(t)

	params := validSignupParams()
	params.Email = "  Ada@Example.COM "
	user := mustSignup(t, env, params)

	if user.ID == "" {
		t.Error("Signup() should generate a user id")
	}
	if user.Username != "ada@example.com" {
		t.Errorf("Username = %q, want %q", user.Username, "ada@example.com")
	}
	if user.Email != "Ada@Example.COM" {
		t.Errorf("Email = %q, want trimmed original %q", user.Email, "Ada@Example.COM")
	}
	if user.Password == params.Password {
		t.Error("Signup() must not keep the plaintext password")
	}

	stored, err := env.users.GetUserByUsername(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if stored.Password == params.Password || stored.Password == "" {
		t.Errorf("stored password = %q, want an argon2id hash", stored.Password)
	}
}

func TestSignup_Duplicate(t *testing.T) {
	variants := []string{"a@x.com", "A@X.COM", "  a@x.com  ", "\tA@x.Com\n"}

	for _, variant := range variants {
		t.Run(variant, func(t *testing.T) {
			env := setupTestAuthService(t)
			mustSignup(t, env, validSignupParams())

			params := validSignupParams()
			params.Email = variant
			_, err := env.service.Signup(context.Background(), params)
			if !errors.Is(err, ErrUserAlreadyExists) {
				t.Errorf("Signup() error = %v, want %v", err, ErrUserAlreadyExists)
			}
		})
	}
}

func TestSignup_Validation(t *testing.T) {
	env := setupTestAuthService(t)

	tests := []struct {
		name      string
		mutate    func(p *SignupParams)
		wantField string
	}{
		{name: "missing email", mutate: func(p *SignupParams) { p.Email = "" }, wantField: "email"},
		{name: "malformed email", mutate: func(p *SignupParams) { p.Email = "not-an-email" }, wantField: "email"},
		{name: "blank first name", mutate: func(p *SignupParams) { p.FirstName = "   " }, wantField: "first_name"},
		{name: "missing last name", mutate: func(p *SignupParams) { p.LastName = "" }, wantField: "last_name"},
		{name: "missing password", mutate: func(p *SignupParams) { p.Password = "" }, wantField: "password"},
		{name: "short password", mutate: func(p *SignupParams) { p.Password = "12345" }, wantField: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validSignupParams()
			tt.mutate(&params)

			_, err := env.service.Signup(context.Background(), params)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Signup() error = %v, want *ValidationError", err)
			}
			if _, ok := validationErr.Fields[tt.wantField]; !ok {
				t.Errorf("Fields = %v, want an entry for %q", validationErr.Fields, tt.wantField)
			}
		})
	}
}

func TestSignup_RepositoryError(t *testing.T) {
	repoErr := errors.New("connection refused")
	repo := &mockUserRepository{
		createUserFunc: func(ctx context.Context, user *models.User) error {
			return repoErr
		},
	}
	tokens := newTestTokenService(t, testAccessTokenTTL, testRefreshTokenTTL)
	service := NewAuthService(zerolog.Nop(), repo, sessions.NewMemoryStore(), tokens)

	_, err := service.Signup(context.Background(), validSignupParams())
	if !errors.Is(err, repoErr) {
		t.Errorf("Signup() error = %v, want %v", err, repoErr)
	}
}

// =============================================================================
// Authenticate Tests
// =============================================================================

func TestAuthenticate_Success(t *testing.T) {
	env := setupTestAuthService(t)
	user := mustSignup(t, env, validSignupParams())

	pair, err := env.service.Authenticate(context.Background(), LoginParams{
		Username: " A@X.com",
		Password: "s3cret-pw",
	})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	access, err := env.tokens.ParseToken(pair.Access.Token, TokenTypeAccess)
	if err != nil {
		t.Fatalf("ParseToken(access) error = %v", err)
	}
	if access.Subject != user.ID {
		t.Errorf("access Subject = %q, want %q", access.Subject, user.ID)
	}

	refresh, err := env.tokens.ParseToken(pair.Refresh.Token, TokenTypeRefresh)
	if err != nil {
		t.Fatalf("ParseToken(refresh) error = %v", err)
	}

	stored, err := env.redis.Get("refresh_token:" + refresh.ID)
	if err != nil {
		t.Fatalf("refresh session not stored: %v", err)
	}
	if stored != user.ID {
		t.Errorf("stored session user = %q, want %q", stored, user.ID)
	}
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	env := setupTestAuthService(t)
	mustSignup(t, env, validSignupParams())

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "a@x.com", password: "wrong-password"},
		{name: "unknown user", username: "b@x.com", password: "s3cret-pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.Authenticate(context.Background(), LoginParams{
				Username: tt.username,
				Password: tt.password,
			})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Authenticate() error = %v, want %v", err, ErrInvalidCredentials)
			}
		})
	}
}

func TestAuthenticate_UnknownUserStillComparesPassword(t *testing.T) {
	env := setupTestAuthService(t)
	mustSignup(t, env, validSignupParams())

	service := env.service.(*authServiceImpl)
	var hashes []string
	service.comparePassword = func(password, hash string) (bool, error) {
		hashes = append(hashes, hash)
		return argon2id.ComparePasswordAndHash(password, hash)
	}

	tests := []struct {
		name     string
		username string
	}{
		{name: "known user", username: "a@x.com"},
		{name: "unknown user", username: "b@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashes = nil

			_, err := service.Authenticate(context.Background(), LoginParams{
				Username: tt.username,
				Password: "wrong-password",
			})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Authenticate() error = %v, want %v", err, ErrInvalidCredentials)
			}
			if len(hashes) != 1 {
				t.Fatalf("comparePassword called %d times, want 1", len(hashes))
			}
			if _, _, _, err := argon2id.DecodeHash(hashes[0]); err != nil {
				t.Errorf("compared against an invalid hash %q: %v", hashes[0], err)
			}
		})
	}
}

func TestUnknownUserHash_NeverMatchesUserPassword(t *testing.T) {
	match, err := argon2id.ComparePasswordAndHash("s3cret-pw", unknownUserHash())
	if err != nil {
		t.Fatalf("ComparePasswordAndHash() error = %v", err)
	}
	if match {
		t.Error("unknown user hash matched a regular password")
	}
	if unknownUserHash() != unknownUserHash() {
		t.Error("unknown user hash is not stable")
	}
}

func TestAuthenticate_MissingFields(t *testing.T) {
	env := setupTestAuthService(t)

	_, err := env.service.Authenticate(context.Background(), LoginParams{})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Authenticate() error = %v, want *ValidationError", err)
	}
	for _, field := range []string{"username", "password"} {
		if _, ok := validationErr.Fields[field]; !ok {
			t.Errorf("Fields = %v, want an entry for %q", validationErr.Fields, field)
		}
	}
}

// =============================================================================
// Refresh / Logout Tests
// =============================================================================

func login(t *testing.T, env *authTestEnv) *TokenPair {
	t.Helper()

	pair, err := env.service.Authenticate(context.Background(), LoginParams{
		Username: "a@x.com",
		Password: "s3cret-pw",
	})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	return pair
}

func TestRefresh_Success(t *testing.T) {
	env := setupTestAuthService(t)
	user := mustSignup(t, env, validSignupParams())
	pair := login(t, env)

	result, err := env.service.Refresh(context.Background(), pair.Refresh.Token)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	claims, err := env.tokens.ParseToken(result.Access.Token, TokenTypeAccess)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != user.ID {
		t.Errorf("Subject = %q, want %q", claims.Subject, user.ID)
	}
}

func TestRefresh_Rejected(t *testing.T) {
	env := setupTestAuthService(t)
	mustSignup(t, env, validSignupParams())
	pair := login(t, env)

	tests := []struct {
		name  string
		token string
	}{
		{name: "access token", token: pair.Access.Token},
		{name: "malformed", token: "garbage"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.Refresh(context.Background(), tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Refresh() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestRefresh_ExpiredSession(t *testing.T) {
	env := setupTestAuthService(t)
	mustSignup(t, env, validSignupParams())
	pair := login(t, env)

	env.redis.FastForward(testRefreshTokenTTL + time.Minute)

	_, err := env.service.Refresh(context.Background(), pair.Refresh.Token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	env := setupTestAuthService(t)
	user := mustSignup(t, env, validSignupParams())
	pair := login(t, env)
	requester := models.Requester{UserID: user.ID, Username: user.Username}

	err := env.service.Logout(context.Background(), requester, pair.Refresh.Token)
	if err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	_, err = env.service.Refresh(context.Background(), pair.Refresh.Token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh() after logout error = %v, want %v", err, ErrInvalidToken)
	}

	err = env.service.Logout(context.Background(), requester, pair.Refresh.Token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("second Logout() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestLogout_OtherUsersToken(t *testing.T) {
	env := setupTestAuthService(t)
	mustSignup(t, env, validSignupParams())
	pair := login(t, env)

	other := models.Requester{UserID: "someone-else"}
	err := env.service.Logout(context.Background(), other, pair.Refresh.Token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Logout() error = %v, want %v", err, ErrInvalidToken)
	}

	if _, err := env.service.Refresh(context.Background(), pair.Refresh.Token); err != nil {
		t.Errorf("Refresh() error = %v, the session should survive", err)
	}
}

// =============================================================================
// Authorize Tests
// =============================================================================

func TestAuthorize_Success(t *testing.T) {
	env := setupTestAuthService(t)
	user := mustSignup(t, env, validSignupParams())
	pair := login(t, env)

	requester, err := env.service.Authorize(context.Background(), pair.Access.Token)
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	if requester.UserID != user.ID || requester.Username != user.Username {
		t.Errorf("Authorize() = %+v, want user %q/%q", requester, user.ID, user.Username)
	}
}

func TestAuthorize_Rejected(t *testing.T) {
	env := setupTestAuthService(t)
	mustSignup(t, env, validSignupParams())
	pair := login(t, env)

	ghost, err := env.tokens.GenerateAccessToken("00000000-0000-0000-0000-000000000000", "ghost@x.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "refresh token", token: pair.Refresh.Token},
		{name: "unknown user", token: ghost.Token},
		{name: "malformed", token: "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.Authorize(context.Background(), tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Authorize() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}
