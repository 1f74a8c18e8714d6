package blog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrPostNotFound is returned when no post exists for the given id or slug
	ErrPostNotFound = errors.New("post not found")
	// ErrSlugTaken is returned when another post already uses the slug
	ErrSlugTaken = errors.New("slug already in use")
)

// PostRepository defines the interface for post storage operations
type PostRepository interface {
	CreatePost(ctx context.Context, post Post) (Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (Post, error)
	GetPostBySlug(ctx context.Context, slug string) (Post, error)
	FindPosts(ctx context.Context, query PostQuery) (PostPage, error)
	UpdatePost(ctx context.Context, post Post) (Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
}
