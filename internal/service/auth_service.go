package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/auth"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/config"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/domain"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/repository"
	apperrors "github.com/neurobyte-x/AI-Maintainance-Reporter/pkg/util"
)

// AuthService coordinates signup, login and current-user flows.
type AuthService struct {
	users         repository.UserRepository
	tokenMgr      *auth.TokenManager
	bcryptCost    int
	allowedDomain string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:         users,
		tokenMgr:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:    cfg.Auth.BcryptCost,
		allowedDomain: strings.ToLower(cfg.Policy.AllowedEmailDomain),
	}
}

// Signup registers a new account and issues an access token. The email is
// lowercase-normalized; duplicates conflict; the role defaults to student.
func (s *AuthService) Signup(ctx context.Context, email, password, fullName string, role domain.Role) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || fullName == "" {
		return nil, "", apperrors.NewValidationError("email, password, full_name required", nil)
	}
	if err := s.checkEmailPolicy(email); err != nil {
		return nil, "", err
	}
	if role == "" {
		role = domain.RoleStudent
	}
	if !domain.ValidRole(role) {
		return nil, "", apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, _, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password return the same generic unauthorized error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, "", err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", apperrors.NewUnauthorized("invalid email or password")
	}

	token, _, err := s.tokenMgr.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// CurrentUser fetches the account for a verified token subject.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) checkEmailPolicy(email string) error {
	if s.allowedDomain == "" {
		return nil
	}
	if !strings.HasSuffix(email, "@"+s.allowedDomain) {
		return apperrors.NewValidationError(
			"only @"+s.allowedDomain+" emails are allowed",
			map[string]any{"email": email},
		)
	}
	return nil
}
