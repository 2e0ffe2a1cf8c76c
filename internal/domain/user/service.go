package user

import (
	"context"
	"fmt"
	"strings"

	"dabwish/pkg/errors"
)

const maxNameLength = 100

// Service provides business rules for user records.
type Service struct {
	repo Repository
}

// NewService constructs a user service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new user. Role defaults to USER.
func (s *Service) Create(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("create user: user is nil")
	}
	user.Name = strings.TrimSpace(user.Name)
	if user.Name == "" {
		return errors.NewValidationError("name", "is required", user.Name)
	}
	if len(user.Name) > maxNameLength {
		return errors.NewValidationError("name", fmt.Sprintf("must be at most %d characters", maxNameLength), len(user.Name))
	}
	switch user.Role {
	case "":
		user.Role = RoleUser
	case RoleUser, RoleAdmin:
	default:
		return errors.NewValidationError("role", "must be USER or ADMIN", user.Role)
	}
	user.TelegramUsername = nil

	if err := s.repo.Create(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID fetches a user by id.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Delete removes a user by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
