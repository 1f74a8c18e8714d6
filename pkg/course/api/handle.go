package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/ogrenly/platform/pkg/course"
	apperrors "github.com/ogrenly/platform/pkg/errors"
)

const maxCoverSize = 10 << 20 // 10 MiB

// CourseHandler handles HTTP requests for courses and lessons
type CourseHandler struct {
	courseService *course.CourseService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService *course.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// CourseDto is the course shape returned to clients
type CourseDto struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Cover       string    `json:"cover,omitempty"`
	Level       string    `json:"level,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// LessonDto is the lesson shape returned to clients
type LessonDto struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Lexical  string    `json:"lexical,omitempty"`
	VideoURL string    `json:"video_url,omitempty"`
	Trial    bool      `json:"trial"`
	Position int       `json:"position"`
}

// CourseRequest is the request body for creating or updating a course
type CourseRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level,omitempty"`
}

// LessonRequest is the request body for creating or updating a lesson
type LessonRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Lexical  string `json:"lexical,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Trial    bool   `json:"trial"`
}

// ReorderLessonsRequest is the request body for reordering a course's lessons
type ReorderLessonsRequest struct {
	LessonIDs []uuid.UUID `json:"lesson_ids"`
}

// ListCoursesResponse is one page of courses
type ListCoursesResponse struct {
	Courses    []CourseDto `json:"courses"`
	TotalCount int         `json:"total_count"`
	Offset     int         `json:"offset"`
	Limit      int         `json:"limit"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PublicRoutes mounts the read-only course endpoints
func (h *CourseHandler) PublicRoutes(r chi.Router) {
	r.Get("/", h.ListPublished)
	r.Get("/{slug}", h.GetBySlug)
}

// StaffRoutes mounts the course management endpoints
func (h *CourseHandler) StaffRoutes(r chi.Router) {
	r.Get("/", h.ListAll)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/publish", h.Publish)
	r.Post("/{id}/cover", h.UploadCover)
	r.Delete("/{id}", h.Delete)

	r.Get("/{id}/lessons", h.ListLessons)
	r.Post("/{id}/lessons", h.AddLesson)
	r.Put("/{id}/lessons/order", h.ReorderLessons)
	r.Put("/lessons/{lessonId}", h.UpdateLesson)
	r.Delete("/lessons/{lessonId}", h.DeleteLesson)
}

// ListPublished lists published courses for students
func (h *CourseHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	query := courseQuery(r)
	query.Status = course.StatusPublished
	h.list(w, r, query)
}

// ListAll lists courses of any status for staff
func (h *CourseHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	query := courseQuery(r)
	query.Status = r.URL.Query().Get("status")
	h.list(w, r, query)
}

func (h *CourseHandler) list(w http.ResponseWriter, r *http.Request, query course.CourseQuery) {
	page, err := h.courseService.Find(r.Context(), query)
	if err != nil {
		slog.Error("Failed to list courses", "error", err)
		renderError(w, r, err, "Failed to list courses")
		return
	}

	response := ListCoursesResponse{
		Courses:    make([]CourseDto, 0, len(page.Courses)),
		TotalCount: page.TotalCount,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}
	if err := copier.Copy(&response.Courses, &page.Courses); err != nil {
		slog.Error("Failed to map courses", "error", err)
		renderError(w, r, err, "Failed to list courses")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

// GetBySlug returns a single published course with its lessons
func (h *CourseHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	c, err := h.courseService.GetBySlug(r.Context(), slug)
	if err != nil {
		renderError(w, r, err, "Course not found")
		return
	}
	if c.Status != course.StatusPublished {
		renderStatus(w, r, http.StatusNotFound, "Course not found")
		return
	}
	h.renderCourseWithLessons(w, r, c)
}

// Get returns a single course with its lessons for staff
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.courseService.Get(r.Context(), id)
	if err != nil {
		renderError(w, r, err, "Course not found")
		return
	}
	h.renderCourseWithLessons(w, r, c)
}

func (h *CourseHandler) renderCourseWithLessons(w http.ResponseWriter, r *http.Request, c course.Course) {
	lessons, err := h.courseService.Lessons(r.Context(), c.ID)
	if err != nil {
		slog.Error("Failed to list lessons", "courseID", c.ID, "error", err)
		renderError(w, r, err, "Failed to load course")
		return
	}

	var dto struct {
		CourseDto
		Lessons []LessonDto `json:"lessons"`
	}
	if err := copier.Copy(&dto.CourseDto, &c); err != nil {
		renderStatus(w, r, http.StatusInternalServerError, "Failed to map course")
		return
	}
	dto.Lessons = make([]LessonDto, 0, len(lessons))
	if err := copier.Copy(&dto.Lessons, &lessons); err != nil {
		renderStatus(w, r, http.StatusInternalServerError, "Failed to map lessons")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, dto)
}

// Create handles course creation
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.courseService.Create(r.Context(), course.CreateCourseParams{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Level:       req.Level,
	})
	if err != nil {
		slog.Error("Failed to create course", "error", err)
		renderError(w, r, err, "Failed to create course")
		return
	}
	render.Status(r, http.StatusCreated)
	renderCourseBody(w, r, c)
}

// Update handles course edits
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.courseService.Update(r.Context(), course.UpdateCourseParams{
		ID:          id,
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Level:       req.Level,
	})
	if err != nil {
		slog.Error("Failed to update course", "courseID", id, "error", err)
		renderError(w, r, err, "Failed to update course")
		return
	}
	renderCourse(w, r, c)
}

// Publish marks a course as published
func (h *CourseHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.courseService.Publish(r.Context(), id)
	if err != nil {
		slog.Error("Failed to publish course", "courseID", id, "error", err)
		renderError(w, r, err, "Failed to publish course")
		return
	}
	renderCourse(w, r, c)
}

// UploadCover attaches a cover image from a multipart form
func (h *CourseHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxCoverSize); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Missing cover file")
		return
	}
	defer file.Close()

	c, err := h.courseService.UploadCover(r.Context(), id, header.Filename,
		header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		slog.Error("Failed to upload cover", "courseID", id, "error", err)
		renderError(w, r, err, "Failed to upload cover")
		return
	}
	renderCourse(w, r, c)
}

// Delete removes a course
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.courseService.Delete(r.Context(), id); err != nil {
		slog.Error("Failed to delete course", "courseID", id, "error", err)
		renderError(w, r, err, "Failed to delete course")
		return
	}
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

// ListLessons lists a course's lessons
func (h *CourseHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	lessons, err := h.courseService.Lessons(r.Context(), id)
	if err != nil {
		slog.Error("Failed to list lessons", "courseID", id, "error", err)
		renderError(w, r, err, "Failed to list lessons")
		return
	}

	dtos := make([]LessonDto, 0, len(lessons))
	if err := copier.Copy(&dtos, &lessons); err != nil {
		renderStatus(w, r, http.StatusInternalServerError, "Failed to map lessons")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, dtos)
}

// AddLesson appends a lesson to a course
func (h *CourseHandler) AddLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req LessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	lesson, err := h.courseService.AddLesson(r.Context(), course.CreateLessonParams{
		CourseID: id,
		Title:    req.Title,
		Slug:     req.Slug,
		Lexical:  req.Lexical,
		VideoURL: req.VideoURL,
		Trial:    req.Trial,
	})
	if err != nil {
		slog.Error("Failed to add lesson", "courseID", id, "error", err)
		renderError(w, r, err, "Failed to add lesson")
		return
	}
	render.Status(r, http.StatusCreated)
	renderLesson(w, r, lesson)
}

// UpdateLesson handles lesson edits
func (h *CourseHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lessonId")
	if !ok {
		return
	}

	var req LessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	lesson, err := h.courseService.UpdateLesson(r.Context(), course.UpdateLessonParams{
		ID:       id,
		Title:    req.Title,
		Slug:     req.Slug,
		Lexical:  req.Lexical,
		VideoURL: req.VideoURL,
		Trial:    req.Trial,
	})
	if err != nil {
		slog.Error("Failed to update lesson", "lessonID", id, "error", err)
		renderError(w, r, err, "Failed to update lesson")
		return
	}
	render.Status(r, http.StatusOK)
	renderLesson(w, r, lesson)
}

// ReorderLessons applies a new lesson order to a course
func (h *CourseHandler) ReorderLessons(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req ReorderLessonsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	lessons, err := h.courseService.ReorderLessons(r.Context(), id, req.LessonIDs)
	if err != nil {
		slog.Error("Failed to reorder lessons", "courseID", id, "error", err)
		renderError(w, r, err, "Failed to reorder lessons")
		return
	}

	dtos := make([]LessonDto, 0, len(lessons))
	if err := copier.Copy(&dtos, &lessons); err != nil {
		renderStatus(w, r, http.StatusInternalServerError, "Failed to map lessons")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, dtos)
}

// DeleteLesson removes a lesson
func (h *CourseHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lessonId")
	if !ok {
		return
	}
	if err := h.courseService.DeleteLesson(r.Context(), id); err != nil {
		slog.Error("Failed to delete lesson", "lessonID", id, "error", err)
		renderError(w, r, err, "Failed to delete lesson")
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

func courseQuery(r *http.Request) course.CourseQuery {
	query := course.CourseQuery{Limit: 20}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		query.Offset, _ = strconv.Atoi(offset)
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		query.Limit, _ = strconv.Atoi(limit)
	}
	return query
}

func renderCourse(w http.ResponseWriter, r *http.Request, c course.Course) {
	render.Status(r, http.StatusOK)
	renderCourseBody(w, r, c)
}

func renderCourseBody(w http.ResponseWriter, r *http.Request, c course.Course) {
	var dto CourseDto
	if err := copier.Copy(&dto, &c); err != nil {
		renderStatus(w, r, http.StatusInternalServerError, "Failed to map course")
		return
	}
	render.JSON(w, r, dto)
}

func renderLesson(w http.ResponseWriter, r *http.Request, lesson course.Lesson) {
	var dto LessonDto
	if err := copier.Copy(&dto, &lesson); err != nil {
		renderStatus(w, r, http.StatusInternalServerError, "Failed to map lesson")
		return
	}
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
