package identity

import (
	"context"
	"strings"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/identity"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles user account operations
type UserService struct {
	repo   identity.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// List retrieves users with filtering and pagination
func (s *UserService) List(ctx context.Context, filter shared.Filter) ([]UserResponse, int64, error) {
	users, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out, total, nil
}

// GetByID retrieves a user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Create registers a user account
func (s *UserService) Create(ctx context.Context, form validation.UserForm) (*UserResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByUsername(ctx, strings.ToLower(strings.TrimSpace(form.Username)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Username is already taken")
	}

	user, err := identity.NewUser(form.Username, form.Email, form.Password, identity.Role(form.Role))
	if err != nil {
		return nil, err
	}
	user.DisplayName = strings.TrimSpace(form.DisplayName)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile changes a user's email, display name and role
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, form validation.UserProfileForm) (*UserResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(form.DisplayName, form.Email, identity.Role(form.Role)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Deactivate blocks a user from logging in
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Deactivate()
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User deactivated", zap.String("user_id", id.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// EnsureAdmin creates the admin account when no user with that name exists.
// It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	exists, err := s.repo.ExistsByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil || exists {
		return false, err
	}
	user, err := identity.NewUser(username, email, password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("Admin user created", zap.String("username", user.Username))
	return true, nil
}
