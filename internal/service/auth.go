package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tasktiles/tasktiles-server/internal/auth"
	"github.com/tasktiles/tasktiles-server/internal/domain"
	domainerrors "github.com/tasktiles/tasktiles-server/internal/errors"
	"github.com/tasktiles/tasktiles-server/internal/id"
	"github.com/tasktiles/tasktiles-server/internal/ratelimit"
	"github.com/tasktiles/tasktiles-server/internal/store"
)

// AuthService handles registration, login, and the refresh-token session
// lifecycle.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	loginLimiter *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	st store.Store,
	tokenService *auth.TokenService,
	loginLimiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:        st,
		tokenService: tokenService,
		loginLimiter: loginLimiter,
		logger:       logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	FullName string `json:"full_name" validate:"max=200"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the opaque refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse contains the authenticated user and token pair.
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// Register creates a new user account and logs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	user.ID = id.MustGenerate("usr")
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("username or email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)

	return s.issueTokens(ctx, user)
}

// Login authenticates a user by username and password. Attempts are rate
// limited per username.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if !s.loginLimiter.Allow(req.Username) {
		return nil, domainerrors.RateLimited("too many login attempts, slow down")
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the username exists.
			return nil, domainerrors.InvalidCredentials("invalid username or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	if !user.CanLogIn() {
		return nil, domainerrors.Forbidden("account is disabled")
	}

	now := time.Now()
	if err := s.store.TouchUserLogin(ctx, user.ID, now); err != nil {
		// Log but don't fail login.
		s.logger.Warn("Failed to update last login time", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = now

	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token for a fresh token pair. The spent
// session is deleted so each refresh token works exactly once.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.store.DeleteSession(ctx, session.ID)
		return nil, domainerrors.TokenExpired("refresh token expired")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.CanLogIn() {
		return nil, domainerrors.Forbidden("account is disabled")
	}

	if err := s.store.DeleteSession(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Logout invalidates the session behind a refresh token. Unknown tokens are
// treated as already logged out.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup session: %w", err)
	}
	return s.store.DeleteSession(ctx, session.ID)
}

// VerifyAccessToken resolves a bearer token to its claims.
func (s *AuthService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// CleanupExpiredSessions removes sessions past their expiry.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) {
	n, err := s.store.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		s.logger.Warn("Session cleanup failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("Expired sessions removed", "count", n)
	}
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*AuthResponse, error) {
	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now()
	session := &store.Session{
		ID:        id.MustGenerate("ses"),
		UserID:    user.ID,
		TokenHash: auth.HashRefreshToken(refreshToken),
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenService.RefreshTokenDuration()),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.tokenService.AccessTokenDuration()),
	}, nil
}
