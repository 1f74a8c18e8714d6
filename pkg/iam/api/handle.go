package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/iam"
)

// UserHandler handles HTTP requests for user administration
type UserHandler struct {
	userService *iam.UserService
}

// NewUserHandler creates a new user admin handler
func NewUserHandler(userService *iam.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserDto is the user shape returned to admin clients
type UserDto struct {
	ID            string `json:"id"`
	Nickname      string `json:"nickname"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Image         string `json:"image,omitempty"`
	Role          string `json:"role"`
}

// ListUsersResponse is one page of users
type ListUsersResponse struct {
	Users      []UserDto `json:"users"`
	TotalCount int       `json:"total_count"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

// UpdateRoleRequest is the request body for a role change
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Routes mounts the user admin endpoints
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/", h.ListUsers)
	r.Put("/{id}/role", h.UpdateRole)
}

// ListUsers handles paged user listing
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := iam.UserQuery{
		Search: r.URL.Query().Get("q"),
		Role:   r.URL.Query().Get("role"),
		Limit:  20,
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		query.Offset, _ = strconv.Atoi(offset)
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		query.Limit, _ = strconv.Atoi(limit)
	}

	page, err := h.userService.Find(r.Context(), query)
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		renderError(w, r, err, "Failed to list users")
		return
	}

	response := ListUsersResponse{
		Users:      make([]UserDto, 0, len(page.Users)),
		TotalCount: page.TotalCount,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}
	if err := copier.Copy(&response.Users, &page.Users); err != nil {
		slog.Error("Failed to map users", "error", err)
		renderError(w, r, err, "Failed to list users")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

// UpdateRole handles a role change for a user
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), userID, req.Role)
	if err != nil {
		slog.Error("Failed to update user role", "userID", userID, "error", err)
		renderError(w, r, err, "Failed to update user role")
		return
	}

	var dto UserDto
	if err := copier.Copy(&dto, &user); err != nil {
		renderError(w, r, err, "Failed to update user role")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, dto)
}

func renderError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := apperrors.MapErrorCodeToHTTPStatus(apperrors.GetCode(err))
	renderStatus(w, r, status, message)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Status: "error", Message: message})
}
