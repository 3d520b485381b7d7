// internal/auth/service.go
// Service layer contains all business logic for authentication.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuslink/campuslink-backend/internal/common/utils"
)

// Common errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrTooManyAttempts       = errors.New("too many login attempts")
)

// Service interface
type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)

	// Token management
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)

	// Session management
	Logout(ctx context.Context, token string) error
	LogoutAllDevices(ctx context.Context, userID string) error

	// User queries
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

// Config holds service configuration
type Config struct {
	JWTSecret           string
	AccessTokenExpiry   time.Duration
	RefreshTokenExpiry  time.Duration
	BCryptCost          int
	LoginAttemptsMax    int
	LoginAttemptsWindow time.Duration
}

// service implementation
type service struct {
	repo   Repository
	redis  *redis.Client
	config *Config
}

// NewService creates a new auth service
func NewService(repo Repository, redisClient *redis.Client, config *Config) Service {
	return &service{
		repo:   repo,
		redis:  redisClient,
		config: config,
	}
}

// Register creates a new user account and returns a token pair
func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if taken, err := s.repo.IsEmailTaken(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, ErrEmailAlreadyExists
	}

	if taken, err := s.repo.IsUsernameTaken(ctx, username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, ErrUsernameAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		DisplayName:  strings.TrimSpace(req.DisplayName),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// Login authenticates a user with email and password
func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.checkLoginAttempts(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.recordLoginAttempt(ctx, email)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordLoginAttempt(ctx, email)
		return nil, ErrInvalidCredentials
	}

	s.clearLoginAttempts(ctx, email)

	now := time.Now()
	if err := s.repo.UpdateLastActive(ctx, user.ID, now); err != nil {
		// Not fatal; login proceeds with a stale last_active timestamp
		log.Printf("auth: failed to update last active for %s: %v", user.ID, err)
	}

	return s.issueTokens(user)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.ValidateToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != "refresh" {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	// Old refresh token is single-use
	if err := s.revokeToken(ctx, refreshToken, claims); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// ValidateToken checks signature, expiry and the revocation lists
func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if s.redis != nil {
		revoked, err := s.redis.Exists(ctx, revokedTokenKey(token)).Result()
		if err == nil && revoked > 0 {
			return nil, ErrTokenRevoked
		}

		// A global logout revokes everything issued before its timestamp
		cutoff, err := s.redis.Get(ctx, revokedAllKey(claims.UserID)).Result()
		if err == nil && cutoff != "" {
			if cutoffTime, parseErr := time.Parse(time.RFC3339, cutoff); parseErr == nil {
				if claims.IssuedAt != nil && claims.IssuedAt.Time.Before(cutoffTime) {
					return nil, ErrTokenRevoked
				}
			}
		}
	}

	return claims, nil
}

// Logout revokes a single token
func (s *service) Logout(ctx context.Context, token string) error {
	claims, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return ErrInvalidToken
	}
	return s.revokeToken(ctx, token, claims)
}

// LogoutAllDevices revokes every token issued to the user so far
func (s *service) LogoutAllDevices(ctx context.Context, userID string) error {
	if s.redis == nil {
		return errors.New("session store unavailable")
	}

	err := s.redis.Set(ctx, revokedAllKey(userID),
		time.Now().Format(time.RFC3339), s.config.RefreshTokenExpiry).Err()
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// GetUserByID returns the user for the given id
func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// issueTokens builds an access/refresh pair for the user
func (s *service) issueTokens(user *User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Email, user.Username,
		"access", s.config.AccessTokenExpiry, s.config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateJWT(user.ID, user.Email, user.Username,
		"refresh", s.config.RefreshTokenExpiry, s.config.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.AccessTokenExpiry.Seconds()),
	}, nil
}

// revokeToken denylists a token until its natural expiry
func (s *service) revokeToken(ctx context.Context, token string, claims *utils.JWTClaims) error {
	if s.redis == nil {
		return nil
	}

	ttl := s.config.RefreshTokenExpiry
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, revokedTokenKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Login attempt throttling, keyed per email

func (s *service) checkLoginAttempts(ctx context.Context, email string) error {
	if s.redis == nil {
		return nil
	}

	count, err := s.redis.Get(ctx, loginAttemptsKey(email)).Int()
	if err != nil && err != redis.Nil {
		return nil
	}
	if count >= s.config.LoginAttemptsMax {
		return ErrTooManyAttempts
	}
	return nil
}

func (s *service) recordLoginAttempt(ctx context.Context, email string) {
	if s.redis == nil {
		return
	}

	key := loginAttemptsKey(email)
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	if count == 1 {
		s.redis.Expire(ctx, key, s.config.LoginAttemptsWindow)
	}
}

func (s *service) clearLoginAttempts(ctx context.Context, email string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, loginAttemptsKey(email))
}

func revokedTokenKey(token string) string {
	return "auth:revoked:" + token
}

func revokedAllKey(userID string) string {
	return "auth:revoked_all:" + userID
}

func loginAttemptsKey(email string) string {
	return "auth:login_attempts:" + email
}
