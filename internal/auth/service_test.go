package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepository is an in-memory user store for service tests
type stubRepository struct {
	byID    map[string]*User
	byEmail map[string]*User
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

func (r *stubRepository) CreateUser(_ context.Context, user *User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *stubRepository) GetUserByID(_ context.Context, userID string) (*User, error) {
	user, ok := r.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *stubRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *stubRepository) IsEmailTaken(_ context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *stubRepository) IsUsernameTaken(_ context.Context, username string) (bool, error) {
	for _, user := range r.byID {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRepository) UpdateLastActive(_ context.Context, userID string, at time.Time) error {
	if user, ok := r.byID[userID]; ok {
		user.LastActive = &at
	}
	return nil
}

func newTestService(repo Repository) Service {
	// Redis is nil: revocation and throttling degrade to no-ops
	return NewService(repo, nil, &Config{
		JWTSecret:           "test-secret",
		AccessTokenExpiry:   time.Hour,
		RefreshTokenExpiry:  24 * time.Hour,
		BCryptCost:          4, // minimum cost keeps the suite fast
		LoginAttemptsMax:    5,
		LoginAttemptsWindow: time.Minute,
	})
}

func registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Username:        "anna",
		Email:           "anna@example.edu",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		DisplayName:     "Anna",
	}
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc := newTestService(newStubRepository())

	resp, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "anna", resp.User.Username)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	// Stored hash is never the raw password
	assert.NotEqual(t, "correct-horse", resp.User.PasswordHash)
}

func TestRegisterNormalizesIdentity(t *testing.T) {
	svc := newTestService(newStubRepository())

	req := registerRequest()
	req.Username = "  Anna "
	req.Email = " Anna@Example.EDU "

	resp, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "anna", resp.User.Username)
	assert.Equal(t, "anna@example.edu", resp.User.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(newStubRepository())

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	dup := registerRequest()
	dup.Username = "someoneelse"
	_, err = svc.Register(context.Background(), dup)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(newStubRepository())

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	dup := registerRequest()
	dup.Email = "other@example.edu"
	_, err = svc.Register(context.Background(), dup)
	assert.ErrorIs(t, err, ErrUsernameAlreadyExists)
}

func TestLogin(t *testing.T) {
	repo := newStubRepository()
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "anna@example.edu",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User.LastActive)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(newStubRepository())

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email:    "anna@example.edu",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(newStubRepository())

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "ghost@example.edu",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenReturnsClaims(t *testing.T) {
	svc := newTestService(newStubRepository())

	resp, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "access", claims.Type)

	refreshClaims, err := svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.Type)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(newStubRepository())

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRequiresRefreshType(t *testing.T) {
	svc := newTestService(newStubRepository())

	resp, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	// An access token must not mint a new pair
	_, err = svc.RefreshToken(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenIssuesNewPair(t *testing.T) {
	svc := newTestService(newStubRepository())

	resp, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)
}
