package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/ogrenly/platform/pkg/client"
	"github.com/ogrenly/platform/pkg/course"
	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/review"
)

// ReviewHandler handles HTTP requests for course reviews
type ReviewHandler struct {
	reviewService *review.ReviewService
	courseService *course.CourseService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *review.ReviewService, courseService *course.CourseService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, courseService: courseService}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteReviewRequest is the request body for writing a review
type WriteReviewRequest struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

// Routes mounts the review endpoints under a course's slug
func (h *ReviewHandler) Routes(r chi.Router) {
	r.Get("/{slug}/reviews", h.List)
	r.Post("/{slug}/reviews", h.Write)
}

// Write saves the caller's review of a course
func (h *ReviewHandler) Write(w http.ResponseWriter, r *http.Request) {
	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req WriteReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, ok := h.publishedCourse(w, r)
	if !ok {
		return
	}

	saved, err := h.reviewService.Write(r.Context(), review.WriteReviewParams{
		UserID:   authUser.UserID,
		CourseID: c.ID,
		Rating:   req.Rating,
		Message:  req.Message,
	})
	if err != nil {
		slog.Error("Failed to write review", "userID", authUser.UserID, "courseID", c.ID, "error", err)
		renderError(w, r, err, "Failed to write review")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, saved)
}

// List returns one page of a course's reviews, newest first
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	c, ok := h.publishedCourse(w, r)
	if !ok {
		return
	}

	query := review.ReviewQuery{
		Offset: queryInt(r, "offset", 0),
		Limit:  queryInt(r, "limit", 0),
	}
	page, err := h.reviewService.ListByCourse(r.Context(), c.ID, query)
	if err != nil {
		slog.Error("Failed to list reviews", "courseID", c.ID, "error", err)
		renderError(w, r, err, "Failed to list reviews")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, page)
}

func (h *ReviewHandler) publishedCourse(w http.ResponseWriter, r *http.Request) (course.Course, bool) {
	slug := chi.URLParam(r, "slug")
	c, err := h.courseService.GetBySlug(r.Context(), slug)
	if err != nil {
		renderError(w, r, err, "Course not found")
		return course.Course{}, false
	}
	if c.Status != course.StatusPublished {
		renderStatus(w, r, http.StatusNotFound, "Course not found")
		return course.Course{}, false
	}
	return c, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func renderError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := apperrors.MapErrorCodeToHTTPStatus(apperrors.GetCode(err))
	renderStatus(w, r, status, message)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Status: "error", Message: message})
}
