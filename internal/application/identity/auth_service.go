package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/identity"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// TokenIssuer signs access tokens
type TokenIssuer interface {
	Issue(sub auth.Subject) (*auth.Token, error)
}

// ErrInvalidCredentials is returned for an unknown user, a wrong password
// or a deactivated account alike
var ErrInvalidCredentials = shared.NewDomainError(shared.ErrUnauthorized.Code, "Invalid username or password")

// AuthService logs users in
type AuthService struct {
	users  identity.UserRepository
	tokens TokenIssuer
	logger *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users identity.UserRepository, tokens TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Login verifies the credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, form validation.LoginForm) (*LoginResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(form.Username)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CanLogin() || !user.VerifyPassword(form.Password) {
		s.logger.Warn("Login rejected", zap.String("username", user.Username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Warn("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	return &LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		User:        ToUserResponse(user),
	}, nil
}
