package iam

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ogrenly/platform/pkg/client"
)

// InMemUserRepository implements UserRepository using an in-memory map
type InMemUserRepository struct {
	users map[string]User
	mu    sync.Mutex
}

// NewInMemUserRepository creates a new in-memory user repository
func NewInMemUserRepository() *InMemUserRepository {
	return &InMemUserRepository{
		users: make(map[string]User),
	}
}

// GetUser retrieves a user by id
func (r *InMemUserRepository) GetUser(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists || user.DeletedAt != nil {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

// CreateUser creates a new user
func (r *InMemUserRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.users[params.ID]; exists && existing.DeletedAt == nil {
		return existing, nil
	}

	now := time.Now().UTC()
	user := User{
		ID:            params.ID,
		Nickname:      params.Nickname,
		Email:         params.Email,
		EmailVerified: params.EmailVerified,
		Image:         params.Image,
		Role:          client.RoleStudent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.users[user.ID] = user
	slog.Debug("User created", "userID", user.ID)
	return user, nil
}

// FindUsers lists users matching the query, ordered by creation time
func (r *InMemUserRepository) FindUsers(ctx context.Context, query UserQuery) (UserPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []User
	search := strings.ToLower(query.Search)
	for _, user := range r.users {
		if user.DeletedAt != nil {
			continue
		}
		if query.Role != "" && user.Role != query.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(user.Nickname), search) &&
			!strings.Contains(strings.ToLower(user.Email), search) {
			continue
		}
		matched = append(matched, user)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	page := UserPage{
		TotalCount: len(matched),
		Offset:     query.Offset,
		Limit:      query.Limit,
	}
	start := query.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}
	page.Users = matched[start:end]
	return page, nil
}

// UpdateUserRole sets a user's role
func (r *InMemUserRepository) UpdateUserRole(ctx context.Context, id, role string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists || user.DeletedAt != nil {
		return User{}, ErrUserNotFound
	}
	user.Role = role
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return user, nil
}
