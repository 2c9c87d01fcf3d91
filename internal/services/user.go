package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"navexpo/internal/domain"
)

type userService struct {
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewUserService creates a UserService over the given repository.
func NewUserService(userRepo domain.UserRepository, timeout time.Duration) domain.UserService {
	return &userService{userRepo: userRepo, contextTimeout: timeout}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, params domain.PaginationParams, caller domain.Identity) ([]*domain.User, int, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, 0, domain.ErrForbidden
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Update applies changes to the caller's own profile, or to any profile for admins.
// Only admins may change a role. Passwords are never touched here.
func (s *userService) Update(ctx context.Context, id string, changes domain.UserChanges, caller domain.Identity) (*domain.User, error) {
	isAdmin := caller.Role == domain.RoleAdmin
	if caller.Anonymous() || (caller.UserID != id && !isAdmin) {
		return nil, domain.ErrForbidden
	}
	if changes.Role != nil && !isAdmin {
		return nil, domain.ErrForbidden
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if changes.Name != nil {
		name := strings.TrimSpace(*changes.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
		}
		user.Name = name
	}
	if changes.Email != nil {
		email := domain.NormalizeEmail(*changes.Email)
		if !emailRegexp.MatchString(email) {
			return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
		}
		user.Email = email
	}
	if changes.Age != nil {
		if *changes.Age < 0 {
			return nil, fmt.Errorf("%w: age must not be negative", domain.ErrInvalidInput)
		}
		user.Age = *changes.Age
	}
	if changes.Role != nil {
		user.Role = *changes.Role
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id string, caller domain.Identity) error {
	if caller.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
