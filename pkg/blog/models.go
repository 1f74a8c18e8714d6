package blog

import (
	"time"

	"github.com/google/uuid"
)

// Post statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post is a blog post. The body is stored as serialized lexical editor state.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Lexical     string     `json:"lexical,omitempty"`
	Cover       string     `json:"cover,omitempty"` // object storage key
	Status      string     `json:"status"`
	AuthorID    string     `json:"author_id"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreatePostParams contains parameters for creating a post
type CreatePostParams struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Lexical  string `json:"lexical,omitempty"`
	AuthorID string `json:"author_id"`
}

// UpdatePostParams contains parameters for updating a post
type UpdatePostParams struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Slug    string    `json:"slug"`
	Lexical string    `json:"lexical,omitempty"`
}

// PostQuery filters and pages post listings
type PostQuery struct {
	Status   string `json:"status,omitempty"`
	AuthorID string `json:"author_id,omitempty"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
}

// PostPage is one page of a post listing
type PostPage struct {
	Posts      []Post `json:"posts"`
	TotalCount int    `json:"total_count"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}
