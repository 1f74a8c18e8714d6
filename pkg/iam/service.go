package iam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ogrenly/platform/pkg/client"
	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/tokenverify"
)

// UserService manages platform users
type UserService struct {
	repository UserRepository
}

// NewUserService creates a new user service with the given repository
func NewUserService(repository UserRepository) *UserService {
	return &UserService{repository: repository}
}

// FindByID returns the user with the given id
func (s *UserService) FindByID(ctx context.Context, id string) (User, error) {
	user, err := s.repository.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, apperrors.Newf(apperrors.ErrCodeUserNotFound, "user %s not found", id)
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// MaterializeFromSubject returns the user for a verified token subject,
// creating the record on first sight.
func (s *UserService) MaterializeFromSubject(ctx context.Context, subject tokenverify.Subject) (User, error) {
	user, err := s.repository.GetUser(ctx, subject.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}

	nickname := subject.Name
	if nickname == "" {
		nickname = "New User"
	}
	user, err = s.repository.CreateUser(ctx, CreateUserParams{
		ID:       subject.ID,
		Nickname: nickname,
		Email:    subject.Email,
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("Materialized user from verified subject", "userID", user.ID)
	return user, nil
}

// Find lists users matching the query
func (s *UserService) Find(ctx context.Context, query UserQuery) (UserPage, error) {
	page, err := s.repository.FindUsers(ctx, query)
	if err != nil {
		return UserPage{}, fmt.Errorf("failed to find users: %w", err)
	}
	return page, nil
}

// UpdateRole changes a user's role. Granting the owner role is forbidden.
func (s *UserService) UpdateRole(ctx context.Context, id, role string) (User, error) {
	if role == client.RoleOwner {
		return User{}, apperrors.New(apperrors.ErrCodeForbidden, "owner role grant is forbidden")
	}
	switch role {
	case client.RoleAdmin, client.RoleStaff, client.RoleStudent:
	default:
		return User{}, apperrors.Newf(apperrors.ErrCodeInvalidInput, "unknown role %q", role)
	}

	user, err := s.repository.UpdateUserRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, apperrors.Newf(apperrors.ErrCodeUserNotFound, "user %s not found", id)
		}
		return User{}, fmt.Errorf("failed to update user role: %w", err)
	}
	return user, nil
}
