package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/dto"
	"github.com/inkhaven/blog-backend/internal/models"
	"github.com/inkhaven/blog-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidRole = errors.New("invalid role")

// UserService covers the admin-facing user management endpoints.
type UserService struct {
	users store.UserStore
}

func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, dto.UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
	}
	return out, nil
}

func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleMember:
	default:
		return ErrInvalidRole
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.users.UpdateRole(ctx, id, role)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

// EnsureAdminSeed guarantees a bootstrap admin exists. An existing account
// under the seed email is promoted rather than duplicated.
func (s *UserService) EnsureAdminSeed(ctx context.Context, email, password string, name *string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Role != models.RoleAdmin {
			if err := s.users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
				return err
			}
			slog.Info("existing user promoted to admin", "user_id", existing.ID)
		}
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashStr := string(hash)
	user := &models.User{
		Email:        email,
		Name:         name,
		Role:         models.RoleAdmin,
		PasswordHash: &hashStr,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	slog.Info("admin user seeded", "user_id", user.ID)
	return nil
}
