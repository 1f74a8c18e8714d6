package client

import (
	"log/slog"
	"net/http"
)

// RequireAuth is an authorization middleware that requires a resolved
// identity on the request context. Returns 401 Unauthorized otherwise.
// Must be used after the authentication gate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthUser(r) == nil {
			slog.Debug("Unauthenticated request to protected resource", "path", r.URL.Path)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns a middleware that checks if the authenticated user has
// any of the specified roles. Returns 401 if not authenticated, 403 if
// authenticated but lacking the role. Must be used after the gate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetAuthUser(r)
			if user == nil {
				slog.Debug("Unauthenticated request to role-protected resource", "requiredRoles", roles)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			slog.Warn("User lacks required role",
				"userId", user.UserID,
				"userRole", user.Role,
				"requiredRoles", roles)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		})
	}
}

// RequireStaff admits staff, admin and owner users
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(RoleStaff, RoleAdmin, RoleOwner)(next)
}
