package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskhub/task-manager-api/internal/auth"
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUserPermissionDenied = errors.New("not enough permissions for this user")
	ErrCannotDeleteSelf     = errors.New("cannot delete yourself")
)

// UserService orchestrates user store operations under the access policy.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// UpdateUserInput represents a partial update; nil fields are untouched
type UpdateUserInput struct {
	Email    *string
	IsActive *bool
	IsAdmin  *bool
}

// ListUsers returns all users. Administrator-only.
func (s *UserService) ListUsers(actor *models.User, page, pageSize int) ([]models.User, int64, error) {
	if !auth.CanAccessUser(actor, auth.ActionList, 0) {
		return nil, 0, ErrUserPermissionDenied
	}

	users, total, err := s.userRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// GetUser returns a user record. Any active user may read their own
// record; reading others is administrator-only.
func (s *UserService) GetUser(actor *models.User, userID uint64) (*models.User, error) {
	if !auth.CanAccessUser(actor, auth.ActionRead, userID) {
		return nil, ErrUserPermissionDenied
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateUser patches a user's email, active flag, or admin flag.
// Administrator-only, including self-demotion, which is not prevented.
func (s *UserService) UpdateUser(actor *models.User, userID uint64, input UpdateUserInput) (*models.User, error) {
	if !auth.CanAccessUser(actor, auth.ActionUpdate, userID) {
		return nil, ErrUserPermissionDenied
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, ErrEmailRequired
		}
		if email != user.Email {
			if _, err := s.userRepo.FindByEmail(email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser permanently removes a user and every task they own.
// Administrator-only; an administrator cannot delete their own account.
func (s *UserService) DeleteUser(actor *models.User, userID uint64) error {
	if !auth.CanAccessUser(actor, auth.ActionDelete, userID) {
		return ErrUserPermissionDenied
	}

	if userID == actor.ID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
