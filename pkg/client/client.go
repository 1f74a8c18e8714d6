package client

import (
	"context"
	"log/slog"
	"net/http"
)

// AuthUser is the identity the authentication gate resolves for a request.
// It is passed explicitly on the request context rather than through any
// ambient storage; downstream handlers read it with GetAuthUser.
type AuthUser struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	DeviceID string `json:"device_id,omitempty"` // empty for exempt (web) clients
}

func (u AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", u.UserID),
		slog.String("role", u.Role),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "platform context value " + k.name
}

// AuthUserKey is the context key the gate stores the resolved AuthUser under
var AuthUserKey = &contextKey{"AuthUser"}

// WithAuthUser returns a context carrying the resolved identity
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, AuthUserKey, user)
}

// GetAuthUser returns the request's resolved identity, or nil when the
// request did not pass the authentication gate.
func GetAuthUser(r *http.Request) *AuthUser {
	user, ok := r.Context().Value(AuthUserKey).(*AuthUser)
	if !ok {
		return nil
	}
	return user
}

// Roles understood by the role middleware. Owner outranks admin outranks
// staff; students have no elevated access.
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleStudent = "student"
)
