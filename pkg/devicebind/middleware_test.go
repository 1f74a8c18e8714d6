package devicebind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogrenly/platform/pkg/client"
	"github.com/ogrenly/platform/pkg/iam"
	"github.com/ogrenly/platform/pkg/loginhistory"
	"github.com/ogrenly/platform/pkg/tokenverify"
)

const gateTestSecret = "gate-test-secret"

func setupGate(t *testing.T) (*Gate, *Service) {
	t.Helper()
	verifier := tokenverify.NewJwtVerifier(gateTestSecret)
	users := iam.NewUserService(iam.NewInMemUserRepository())
	bindings := NewService(loginhistory.NewInMemRepository())
	return NewGate(verifier, users, bindings), bindings
}

func issueTestToken(t *testing.T, userID string) string {
	t.Helper()
	issuer := tokenverify.Issuer{Secret: gateTestSecret}
	token, err := issuer.IssueToken(tokenverify.Subject{
		ID:    userID,
		Email: userID + "@example.com",
		Name:  "Test User",
	}, time.Hour)
	require.NoError(t, err)
	return token
}

// capturingHandler records the auth user the gate attached, if any
type capturingHandler struct {
	called   bool
	authUser *client.AuthUser
}

func (h *capturingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.authUser = client.GetAuthUser(r)
	w.WriteHeader(http.StatusOK)
}

func TestGateWebClientExemptFromDeviceBinding(t *testing.T) {
	gate, _ := setupGate(t)
	next := &capturingHandler{}

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.AddCookie(&http.Cookie{Name: CookieClientType, Value: DefaultWebClientType})
	req.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: issueTestToken(t, "u1")})
	rec := httptest.NewRecorder()

	gate.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, next.called)
	require.NotNil(t, next.authUser)
	assert.Equal(t, "u1", next.authUser.UserID)
	assert.Empty(t, next.authUser.DeviceID, "web clients carry no device binding")
}

func TestGateWebClientTypeHeader(t *testing.T) {
	gate, _ := setupGate(t)
	next := &capturingHandler{}

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set(HeaderClientType, DefaultWebClientType)
	req.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: issueTestToken(t, "u1")})
	rec := httptest.NewRecorder()

	gate.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, next.called)
}

func TestGateWebClientMissingCookie(t *testing.T) {
	gate, _ := setupGate(t)
	next := &capturingHandler{}

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.AddCookie(&http.Cookie{Name: CookieClientType, Value: DefaultWebClientType})
	rec := httptest.NewRecorder()

	gate.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token not found", strings.TrimSpace(rec.Body.String()))
	assert.False(t, next.called)
}

func TestGateBearerTokenMissing(t *testing.T) {
	gate, _ := setupGate(t)
	next := &capturingHandler{}

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	rec := httptest.NewRecorder()

	gate.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token not found", strings.TrimSpace(rec.Body.String()))
}

func TestGateInvalidToken(t *testing.T) {
	gate, _ := setupGate(t)
	next := &capturingHandler{}

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	req.Header.Set(HeaderDeviceID, "d1")
	rec := httptest.NewRecorder()

	gate.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", strings.TrimSpace(rec.Body.String()))
	assert.False(t, next.called)
}

func TestGateDeviceIDRequired(t *testing.T) {
	gate, _ := setupGate(t)
	next := &capturingHandler{}

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, "u1"))
	rec := httptest.NewRecorder()

	gate.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Device ID not found", strings.TrimSpace(rec.Body.String()))
	assert.False(t, next.called)
}

func TestGateAllowAttachesDeviceID(t *testing.T) {
	gate, bindings := setupGate(t)
	next := &capturingHandler{}

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, "u1"))
	req.Header.Set(HeaderDeviceID, "d1")
	rec := httptest.NewRecorder()

	gate.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, next.called)
	require.NotNil(t, next.authUser)
	assert.Equal(t, "u1", next.authUser.UserID)
	assert.Equal(t, "d1", next.authUser.DeviceID)

	device, ok := bindings.Cache().LookupByUser("u1")
	require.True(t, ok)
	assert.Equal(t, "d1", device)
}

func TestGateUniformRejection(t *testing.T) {
	gate, bindings := setupGate(t)

	// d1 belongs to u1; u2 on d1 is a conflict, u1 on d2 needs approval.
	// Both must look identical from the outside.
	_, err := bindings.Decide(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "u1", "d1", false)
	require.NoError(t, err)

	attempts := []struct {
		name   string
		userID string
		device string
	}{
		{"device conflict", "u2", "d1"},
		{"new device unapproved", "u1", "d2"},
	}
	for _, attempt := range attempts {
		t.Run(attempt.name, func(t *testing.T) {
			next := &capturingHandler{}
			req := httptest.NewRequest(http.MethodGet, "/posts", nil)
			req.Header.Set("Authorization", "Bearer "+issueTestToken(t, attempt.userID))
			req.Header.Set(HeaderDeviceID, attempt.device)
			rec := httptest.NewRecorder()

			gate.Middleware(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Unauthorized", strings.TrimSpace(rec.Body.String()))
			assert.False(t, next.called)
		})
	}
}

func TestGateCustomWebClientType(t *testing.T) {
	verifier := tokenverify.NewJwtVerifier(gateTestSecret)
	users := iam.NewUserService(iam.NewInMemUserRepository())
	bindings := NewService(loginhistory.NewInMemRepository())
	gate := NewGate(verifier, users, bindings, WithWebClientType("browser"))
	next := &capturingHandler{}

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.AddCookie(&http.Cookie{Name: CookieClientType, Value: "browser"})
	req.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: issueTestToken(t, "u1")})
	rec := httptest.NewRecorder()

	gate.Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, next.called)
}
