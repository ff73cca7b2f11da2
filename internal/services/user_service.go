package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shiftlog/work-hour-api/internal/constants"
	"github.com/shiftlog/work-hour-api/internal/models"
	"github.com/shiftlog/work-hour-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidUserRole      = errors.New("role must be one of admin, manager, user")
	ErrCannotDeactivateSelf = errors.New("cannot deactivate your own account")
	ErrUsernameRequired     = errors.New("username is required")
)

// UserService provides admin-facing user management.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsers lists users. Deactivated accounts are included only on request.
func (s *UserService) ListUsers(includeInactive bool) ([]models.User, error) {
	users, err := s.userRepo.List(includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUserInput represents admin-provisioned account parameters.
type CreateUserInput struct {
	Username    string
	DisplayName string
	Password    string
	Role        models.UserRole
}

// CreateUser provisions an account with an explicit role.
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if !models.HasRole(input.Role, models.RoleUser) {
		return nil, ErrInvalidUserRole
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = username
	}

	user := &models.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdateUserInput represents a partial user update.
type UpdateUserInput struct {
	DisplayName *string
	Role        *models.UserRole
	IsActive    *bool
}

// UpdateUser applies a partial update to a user. Deactivating yourself is
// rejected so an admin can never lock out the last working account.
func (s *UserService) UpdateUser(id, actorID uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name != "" {
			user.DisplayName = name
		}
	}
	if input.Role != nil {
		if !models.HasRole(*input.Role, models.RoleUser) {
			return nil, ErrInvalidUserRole
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		if !*input.IsActive && id == actorID {
			return nil, ErrCannotDeactivateSelf
		}
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeactivateUser soft-excludes an account; idempotent.
func (s *UserService) DeactivateUser(id, actorID uint64) (*models.User, error) {
	if id == actorID {
		return nil, ErrCannotDeactivateSelf
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if !user.IsActive {
		return user, nil
	}

	user.IsActive = false
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to deactivate user: %w", err)
	}

	return user, nil
}
