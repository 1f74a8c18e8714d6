package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/ogrenly/platform/pkg/bookmark"
	"github.com/ogrenly/platform/pkg/client"
	apperrors "github.com/ogrenly/platform/pkg/errors"
)

// BookmarkHandler handles HTTP requests for saved posts and courses
type BookmarkHandler struct {
	bookmarkService *bookmark.BookmarkService
}

// NewBookmarkHandler creates a new bookmark handler
func NewBookmarkHandler(bookmarkService *bookmark.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Routes mounts the bookmark endpoints. All routes require an
// authenticated user. Target type is "post" or "course".
func (h *BookmarkHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/{targetType}/{targetId}", h.Add)
	r.Delete("/{targetType}/{targetId}", h.Remove)
}

// List returns the caller's saved posts and courses
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	items, err := h.bookmarkService.List(r.Context(), authUser.UserID)
	if err != nil {
		slog.Error("Failed to list bookmarks", "userID", authUser.UserID, "error", err)
		renderError(w, r, err, "Failed to list bookmarks")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, items)
}

// Add bookmarks a post or course for the caller
func (h *BookmarkHandler) Add(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	targetType, targetID, ok := target(w, r)
	if !ok {
		return
	}

	if err := h.bookmarkService.Add(r.Context(), authUser.UserID, targetType, targetID); err != nil {
		slog.Error("Failed to add bookmark", "userID", authUser.UserID, "targetID", targetID, "error", err)
		renderError(w, r, err, "Failed to add bookmark")
		return
	}
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

// Remove deletes a bookmark for the caller
func (h *BookmarkHandler) Remove(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	targetType, targetID, ok := target(w, r)
	if !ok {
		return
	}

	if err := h.bookmarkService.Remove(r.Context(), authUser.UserID, targetType, targetID); err != nil {
		slog.Error("Failed to remove bookmark", "userID", authUser.UserID, "targetID", targetID, "error", err)
		renderError(w, r, err, "Failed to remove bookmark")
		return
	}
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

func target(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	targetType := chi.URLParam(r, "targetType")
	if targetType != bookmark.TargetPost && targetType != bookmark.TargetCourse {
		renderStatus(w, r, http.StatusBadRequest, "Invalid bookmark target")
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "targetId"))
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid target id")
		return "", uuid.Nil, false
	}
	return targetType, id, true
}

func renderError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := apperrors.MapErrorCodeToHTTPStatus(apperrors.GetCode(err))
	renderStatus(w, r, status, message)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Status: "error", Message: message})
}
