package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/ogrenly/platform/pkg/client"
	"github.com/ogrenly/platform/pkg/enrollment"
	apperrors "github.com/ogrenly/platform/pkg/errors"
)

// EnrollmentHandler handles HTTP requests for enrollments and progress
type EnrollmentHandler struct {
	enrollmentService *enrollment.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollmentService *enrollment.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Routes mounts the enrollment endpoints. All routes require an
// authenticated user.
func (h *EnrollmentHandler) Routes(r chi.Router) {
	r.Get("/", h.ListProgress)
	r.Post("/{courseId}", h.Enroll)
	r.Delete("/{courseId}", h.Unenroll)
	r.Post("/lessons/{lessonId}/complete", h.CompleteLesson)
}

// ListProgress returns the caller's enrolled courses with completion counts
func (h *EnrollmentHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	progress, err := h.enrollmentService.ListProgress(r.Context(), authUser.UserID)
	if err != nil {
		slog.Error("Failed to list progress", "userID", authUser.UserID, "error", err)
		renderError(w, r, err, "Failed to list enrollments")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, progress)
}

// Enroll enrolls the caller in a course
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	courseID, ok := pathID(w, r, "courseId")
	if !ok {
		return
	}

	e, err := h.enrollmentService.Enroll(r.Context(), authUser.UserID, courseID)
	if err != nil {
		slog.Error("Failed to enroll", "userID", authUser.UserID, "courseID", courseID, "error", err)
		renderError(w, r, err, "Failed to enroll")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, e)
}

// Unenroll removes the caller's enrollment
func (h *EnrollmentHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	courseID, ok := pathID(w, r, "courseId")
	if !ok {
		return
	}

	if err := h.enrollmentService.Unenroll(r.Context(), authUser.UserID, courseID); err != nil {
		slog.Error("Failed to unenroll", "userID", authUser.UserID, "courseID", courseID, "error", err)
		renderError(w, r, err, "Failed to unenroll")
		return
	}
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

// CompleteLesson marks a lesson as completed for the caller
func (h *EnrollmentHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	lessonID, ok := pathID(w, r, "lessonId")
	if !ok {
		return
	}

	if err := h.enrollmentService.CompleteLesson(r.Context(), authUser.UserID, lessonID); err != nil {
		slog.Error("Failed to complete lesson", "userID", authUser.UserID, "lessonID", lessonID, "error", err)
		renderError(w, r, err, "Failed to complete lesson")
		return
	}
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func renderError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := apperrors.MapErrorCodeToHTTPStatus(apperrors.GetCode(err))
	renderStatus(w, r, status, message)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Status: "error", Message: message})
}
