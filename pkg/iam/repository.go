package iam

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when no user exists for the given id
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for user storage operations
type UserRepository interface {
	GetUser(ctx context.Context, id string) (User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	FindUsers(ctx context.Context, query UserQuery) (UserPage, error)
	UpdateUserRole(ctx context.Context, id, role string) (User, error)
}
