package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogrenly/platform/pkg/devicebind"
	"github.com/ogrenly/platform/pkg/loginhistory"
	"github.com/ogrenly/platform/pkg/tokenverify"
)

const authTestSecret = "auth-test-secret"

// failingStore makes every read fail, simulating an unreachable database
type failingStore struct {
	*loginhistory.InMemRepository
}

func (s *failingStore) FindAllActive(ctx context.Context) ([]loginhistory.Record, error) {
	return nil, errors.New("store down")
}

func setupAuthHandler(t *testing.T) (*AuthHandler, *devicebind.Service) {
	t.Helper()
	verifier := tokenverify.NewJwtVerifier(authTestSecret)
	bindings := devicebind.NewService(loginhistory.NewInMemRepository())
	return NewAuthHandler(verifier, bindings), bindings
}

func issueAuthToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := tokenverify.Issuer{Secret: authTestSecret}.IssueToken(
		tokenverify.Subject{ID: userID}, time.Hour)
	require.NoError(t, err)
	return token
}

func postVerifyLogin(t *testing.T, handler *AuthHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/auth/verify-login", &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.VerifyLogin(rec, req)
	return rec
}

func decodeVerifyLogin(t *testing.T, rec *httptest.ResponseRecorder) VerifyLoginResponse {
	t.Helper()
	var resp VerifyLoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestVerifyLoginInvalidBody(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	rec := postVerifyLogin(t, handler, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyLoginMissingFields(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	cases := []VerifyLoginRequest{
		{UserID: "u1", DeviceID: "d1"},
		{Token: "tok", DeviceID: "d1"},
		{Token: "tok", UserID: "u1"},
	}
	for _, req := range cases {
		rec := postVerifyLogin(t, handler, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestVerifyLoginBadToken(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	rec := postVerifyLogin(t, handler, VerifyLoginRequest{
		Token:    "not-a-token",
		UserID:   "u1",
		DeviceID: "d1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyLoginSubjectMismatch(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	// a valid token for someone else must not verify this user
	rec := postVerifyLogin(t, handler, VerifyLoginRequest{
		Token:    issueAuthToken(t, "u2"),
		UserID:   "u1",
		DeviceID: "d1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyLoginFirstLogin(t *testing.T) {
	handler, bindings := setupAuthHandler(t)

	rec := postVerifyLogin(t, handler, VerifyLoginRequest{
		Token:    issueAuthToken(t, "u1"),
		UserID:   "u1",
		DeviceID: "d1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeVerifyLogin(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "d1", resp.DeviceID)

	device, ok := bindings.Cache().LookupByUser("u1")
	require.True(t, ok)
	assert.Equal(t, "d1", device)
}

func TestVerifyLoginNewDeviceNeedsApproval(t *testing.T) {
	handler, bindings := setupAuthHandler(t)
	_, err := bindings.Decide(context.Background(), "u1", "d1", false)
	require.NoError(t, err)

	rec := postVerifyLogin(t, handler, VerifyLoginRequest{
		Token:    issueAuthToken(t, "u1"),
		UserID:   "u1",
		DeviceID: "d2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeVerifyLogin(t, rec)
	assert.False(t, resp.Success)
	assert.True(t, resp.RequiresApproval)

	// resubmitting with approval completes the migration
	rec = postVerifyLogin(t, handler, VerifyLoginRequest{
		Token:    issueAuthToken(t, "u1"),
		UserID:   "u1",
		DeviceID: "d2",
		Approved: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeVerifyLogin(t, rec)
	assert.True(t, resp.Success)

	device, _ := bindings.Cache().LookupByUser("u1")
	assert.Equal(t, "d2", device)
}

func TestVerifyLoginDeviceConflict(t *testing.T) {
	handler, bindings := setupAuthHandler(t)
	_, err := bindings.Decide(context.Background(), "u1", "d1", false)
	require.NoError(t, err)

	rec := postVerifyLogin(t, handler, VerifyLoginRequest{
		Token:    issueAuthToken(t, "u2"),
		UserID:   "u2",
		DeviceID: "d1",
		Approved: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeVerifyLogin(t, rec)
	assert.False(t, resp.Success)
	assert.False(t, resp.RequiresApproval, "a conflict is not approvable")
}

func TestVerifyLoginStoreUnavailable(t *testing.T) {
	verifier := tokenverify.NewJwtVerifier(authTestSecret)
	store := &failingStore{InMemRepository: loginhistory.NewInMemRepository()}
	handler := NewAuthHandler(verifier, devicebind.NewService(store))

	rec := postVerifyLogin(t, handler, VerifyLoginRequest{
		Token:    issueAuthToken(t, "u1"),
		UserID:   "u1",
		DeviceID: "d1",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
