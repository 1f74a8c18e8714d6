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

	"github.com/ogrenly/platform/pkg/blog"
	"github.com/ogrenly/platform/pkg/client"
	apperrors "github.com/ogrenly/platform/pkg/errors"
)

const maxCoverSize = 10 << 20 // 10 MiB

// PostHandler handles HTTP requests for blog posts
type PostHandler struct {
	postService *blog.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *blog.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// PostDto is the post shape returned to clients
type PostDto struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Lexical     string    `json:"lexical,omitempty"`
	Cover       string    `json:"cover,omitempty"`
	Status      string    `json:"status"`
	AuthorID    string     `json:"author_id"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreatePostRequest is the request body for creating a post
type CreatePostRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Lexical string `json:"lexical,omitempty"`
}

// UpdatePostRequest is the request body for updating a post
type UpdatePostRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Lexical string `json:"lexical,omitempty"`
}

// ListPostsResponse is one page of posts
type ListPostsResponse struct {
	Posts      []PostDto `json:"posts"`
	TotalCount int       `json:"total_count"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PublicRoutes mounts the read-only post endpoints
func (h *PostHandler) PublicRoutes(r chi.Router) {
	r.Get("/", h.ListPublished)
	r.Get("/{slug}", h.GetBySlug)
}

// StaffRoutes mounts the post management endpoints
func (h *PostHandler) StaffRoutes(r chi.Router) {
	r.Get("/", h.ListAll)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/publish", h.Publish)
	r.Post("/{id}/cover", h.UploadCover)
	r.Delete("/{id}", h.Delete)
}

// ListPublished lists published posts for readers
func (h *PostHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	query := postQuery(r)
	query.Status = blog.StatusPublished
	h.list(w, r, query)
}

// ListAll lists posts of any status for staff
func (h *PostHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	query := postQuery(r)
	query.Status = r.URL.Query().Get("status")
	query.AuthorID = r.URL.Query().Get("author")
	h.list(w, r, query)
}

func (h *PostHandler) list(w http.ResponseWriter, r *http.Request, query blog.PostQuery) {
	page, err := h.postService.Find(r.Context(), query)
	if err != nil {
		slog.Error("Failed to list posts", "error", err)
		renderError(w, r, err, "Failed to list posts")
		return
	}

	response := ListPostsResponse{
		Posts:      make([]PostDto, 0, len(page.Posts)),
		TotalCount: page.TotalCount,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}
	if err := copier.Copy(&response.Posts, &page.Posts); err != nil {
		slog.Error("Failed to map posts", "error", err)
		renderError(w, r, err, "Failed to list posts")
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

// GetBySlug returns a single published post by slug
func (h *PostHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.postService.GetBySlug(r.Context(), slug)
	if err == nil && post.Status != blog.StatusPublished {
		renderStatus(w, r, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		renderError(w, r, err, "Post not found")
		return
	}
	renderPost(w, r, post)
}

// Get returns a single post by id for staff
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		renderError(w, r, err, "Post not found")
		return
	}
	renderPost(w, r, post)
}

// Create handles post creation
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	authUser := client.GetAuthUser(r)
	if authUser == nil {
		renderStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	post, err := h.postService.Create(r.Context(), blog.CreatePostParams{
		Title:    req.Title,
		Slug:     req.Slug,
		Lexical:  req.Lexical,
		AuthorID: authUser.UserID,
	})
	if err != nil {
		slog.Error("Failed to create post", "error", err)
		renderError(w, r, err, "Failed to create post")
		return
	}
	render.Status(r, http.StatusCreated)
	renderPostBody(w, r, post)
}

// Update handles post edits
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), blog.UpdatePostParams{
		ID:      id,
		Title:   req.Title,
		Slug:    req.Slug,
		Lexical: req.Lexical,
	})
	if err != nil {
		slog.Error("Failed to update post", "postID", id, "error", err)
		renderError(w, r, err, "Failed to update post")
		return
	}
	renderPost(w, r, post)
}

// Publish marks a post as published
func (h *PostHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	post, err := h.postService.Publish(r.Context(), id)
	if err != nil {
		slog.Error("Failed to publish post", "postID", id, "error", err)
		renderError(w, r, err, "Failed to publish post")
		return
	}
	renderPost(w, r, post)
}

// UploadCover attaches a cover image from a multipart form
func (h *PostHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
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

	post, err := h.postService.UploadCover(r.Context(), id, header.Filename,
		header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		slog.Error("Failed to upload cover", "postID", id, "error", err)
		renderError(w, r, err, "Failed to upload cover")
		return
	}
	renderPost(w, r, post)
}

// Delete removes a post
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	if err := h.postService.Delete(r.Context(), id); err != nil {
		slog.Error("Failed to delete post", "postID", id, "error", err)
		renderError(w, r, err, "Failed to delete post")
		return
	}
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

func postID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderStatus(w, r, http.StatusBadRequest, "Invalid post id")
		return uuid.Nil, false
	}
	return id, true
}

func postQuery(r *http.Request) blog.PostQuery {
	query := blog.PostQuery{Limit: 20}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		query.Offset, _ = strconv.Atoi(offset)
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		query.Limit, _ = strconv.Atoi(limit)
	}
	return query
}

func renderPost(w http.ResponseWriter, r *http.Request, post blog.Post) {
	render.Status(r, http.StatusOK)
	renderPostBody(w, r, post)
}

func renderPostBody(w http.ResponseWriter, r *http.Request, post blog.Post) {
	var dto PostDto
	if err := copier.Copy(&dto, &post); err != nil {
		renderStatus(w, r, http.StatusInternalServerError, "Failed to map post")
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
