package devicebind

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ogrenly/platform/pkg/client"
	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/iam"
	"github.com/ogrenly/platform/pkg/tokenverify"
)

// Request metadata the gate consumes. Web clients authenticate with the
// access token cookie and are exempt from device binding; everything else
// sends a bearer token and a device id header.
const (
	HeaderDeviceID    = "Device-Id"
	HeaderClientType  = "X-Client-Type"
	CookieClientType  = "client_type"
	CookieAccessToken = "access_token"

	// DefaultWebClientType is the client-type value that marks a browser
	// client, overridable through the gate options.
	DefaultWebClientType = "web"
)

// Gate is the per-request authentication middleware: it verifies the access
// token, materializes the user, enforces the device binding policy with
// approved=false, and attaches the resolved identity to the request context.
// Approval of a device change never happens here; only the verify-login
// endpoint carries an approval flag.
type Gate struct {
	verifier      tokenverify.Verifier
	users         *iam.UserService
	bindings      *Service
	webClientType string
}

// GateOption configures a Gate
type GateOption func(*Gate)

// WithWebClientType overrides the client-type value that exempts a request
// from device binding
func WithWebClientType(value string) GateOption {
	return func(g *Gate) {
		g.webClientType = value
	}
}

// NewGate creates the authentication gate
func NewGate(verifier tokenverify.Verifier, users *iam.UserService, bindings *Service, opts ...GateOption) *Gate {
	g := &Gate{
		verifier:      verifier,
		users:         users,
		bindings:      bindings,
		webClientType: DefaultWebClientType,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Middleware enforces authentication and device binding for each request
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isWeb := g.extractClientType(r) == g.webClientType

		var token string
		if isWeb {
			token = extractTokenFromCookie(r)
		} else {
			token = extractTokenFromHeader(r)
		}
		if token == "" {
			http.Error(w, "Access token not found", http.StatusUnauthorized)
			return
		}

		subject, err := g.verifier.Verify(r.Context(), token)
		if err != nil {
			// Invalid or expired tokens are routine, no log
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		user, err := g.users.MaterializeFromSubject(r.Context(), subject)
		if err != nil {
			slog.Error("Failed to materialize user", "subject", subject.ID, "error", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		authUser := &client.AuthUser{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Nickname,
			Role:   user.Role,
		}

		if !isWeb {
			deviceID := r.Header.Get(HeaderDeviceID)
			if deviceID == "" {
				http.Error(w, "Device ID not found", http.StatusUnauthorized)
				return
			}

			decision, err := g.bindings.Decide(r.Context(), user.ID, deviceID, false)
			if err != nil {
				slog.Error("Device binding decision failed", "userID", user.ID, "error", err)
				status := apperrors.MapErrorCodeToHTTPStatus(apperrors.GetCode(err))
				http.Error(w, http.StatusText(status), status)
				return
			}
			if decision != DecisionAllow {
				// Uniform rejection: the gate does not leak whether the
				// device is in conflict or merely unapproved
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			authUser.DeviceID = deviceID
		}

		next.ServeHTTP(w, r.WithContext(client.WithAuthUser(r.Context(), authUser)))
	})
}

func (g *Gate) extractClientType(r *http.Request) string {
	if cookie, err := r.Cookie(CookieClientType); err == nil {
		return cookie.Value
	}
	return r.Header.Get(HeaderClientType)
}

func extractTokenFromHeader(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func extractTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieAccessToken)
	if err != nil {
		return ""
	}
	return cookie.Value
}
