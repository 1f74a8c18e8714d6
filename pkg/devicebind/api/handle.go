package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/ogrenly/platform/pkg/devicebind"
	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/tokenverify"
)

// AuthHandler handles the explicit login verification flow. It is the only
// path through which a device migration can be approved; the request gate
// only ever consumes the resulting state.
type AuthHandler struct {
	verifier tokenverify.Verifier
	bindings *devicebind.Service
}

// NewAuthHandler creates a new login verification handler
func NewAuthHandler(verifier tokenverify.Verifier, bindings *devicebind.Service) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		bindings: bindings,
	}
}

// VerifyLoginRequest is the request body for login verification
type VerifyLoginRequest struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	DeviceID string `json:"deviceId"`
	Approved bool   `json:"approved,omitempty"`
}

// VerifyLoginResponse is the structured decision returned to the client.
// RequiresApproval distinguishes a routine new-device prompt from a hard
// device conflict, so clients only prompt for approval when it can help.
type VerifyLoginResponse struct {
	Success          bool   `json:"success"`
	RequiresApproval bool   `json:"requiresApproval,omitempty"`
	Message          string `json:"message"`
	UserID           string `json:"userId,omitempty"`
	DeviceID         string `json:"deviceId,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Routes mounts the auth endpoints
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/verify-login", h.VerifyLogin)
}

// VerifyLogin runs the device binding policy with the caller-supplied
// approval flag and returns the decision instead of failing the request.
func (h *AuthHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req VerifyLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" || req.UserID == "" || req.DeviceID == "" {
		renderStatus(w, r, http.StatusBadRequest, "token, userId and deviceId are required")
		return
	}

	subject, err := h.verifier.Verify(r.Context(), req.Token)
	if err != nil {
		renderStatus(w, r, http.StatusUnauthorized, "Identity verification failed")
		return
	}
	if subject.ID != req.UserID {
		renderStatus(w, r, http.StatusUnauthorized, "Token subject does not match user")
		return
	}

	decision, err := h.bindings.Decide(r.Context(), req.UserID, req.DeviceID, req.Approved)
	if err != nil {
		slog.Error("Login verification failed", "userID", req.UserID, "error", err)
		status := apperrors.MapErrorCodeToHTTPStatus(apperrors.GetCode(err))
		renderStatus(w, r, status, "Login verification failed, try again")
		return
	}

	var response VerifyLoginResponse
	switch decision {
	case devicebind.DecisionAllow:
		response = VerifyLoginResponse{
			Success:  true,
			Message:  "Login successful",
			UserID:   req.UserID,
			DeviceID: req.DeviceID,
		}
	case devicebind.DecisionDeny:
		response = VerifyLoginResponse{
			Success:          false,
			RequiresApproval: false,
			Message:          "device in use by another account",
		}
	case devicebind.DecisionRequireApproval:
		response = VerifyLoginResponse{
			Success:          false,
			RequiresApproval: true,
			Message:          "new device detected; resubmit with approved=true to migrate",
		}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Status: "error", Message: message})
}
