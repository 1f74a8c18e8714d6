package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/ogrenly/platform/pkg/client"
	"github.com/ogrenly/platform/pkg/devicebind"
	apperrors "github.com/ogrenly/platform/pkg/errors"
)

// DeviceHandler exposes a user's own device binding state. All routes
// require an authenticated user.
type DeviceHandler struct {
	bindings *devicebind.Service
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(bindings *devicebind.Service) *DeviceHandler {
	return &DeviceHandler{bindings: bindings}
}

// LoginRecordDto is one login history entry
type LoginRecordDto struct {
	ID        uuid.UUID  `json:"id"`
	DeviceID  string     `json:"device_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Routes mounts the device endpoints
func (h *DeviceHandler) Routes(r chi.Router) {
	r.Get("/history", h.History)
	r.Post("/release", h.Release)
}

// History returns the caller's login history, newest first
func (h *DeviceHandler) History(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	records, err := h.bindings.History(r.Context(), authUser.UserID)
	if err != nil {
		slog.Error("Failed to get login history", "userID", authUser.UserID, "error", err)
		status := apperrors.MapErrorCodeToHTTPStatus(apperrors.GetCode(err))
		renderStatus(w, r, status, "Failed to get login history")
		return
	}

	dtos := make([]LoginRecordDto, 0, len(records))
	if err := copier.Copy(&dtos, &records); err != nil {
		renderStatus(w, r, http.StatusInternalServerError, "Failed to map login history")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, dtos)
}

// Release frees the caller's active device binding, for example on logout
func (h *DeviceHandler) Release(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.bindings.Release(r.Context(), authUser.UserID); err != nil {
		slog.Error("Failed to release device binding", "userID", authUser.UserID, "error", err)
		status := apperrors.MapErrorCodeToHTTPStatus(apperrors.GetCode(err))
		renderStatus(w, r, status, "Failed to release device binding")
		return
	}
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}
