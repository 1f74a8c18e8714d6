package blog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/filestorage"
)

const coverFolder = "post-covers"

// PostService manages blog posts
type PostService struct {
	repository PostRepository
	storage    filestorage.Storage
}

// NewPostService creates a new post service
func NewPostService(repository PostRepository, storage filestorage.Storage) *PostService {
	return &PostService{repository: repository, storage: storage}
}

// Create stores a new draft post
func (s *PostService) Create(ctx context.Context, params CreatePostParams) (Post, error) {
	if params.Title == "" || params.Slug == "" {
		return Post{}, apperrors.New(apperrors.ErrCodeMissingRequired, "title and slug are required")
	}

	now := time.Now().UTC()
	post, err := s.repository.CreatePost(ctx, Post{
		ID:        uuid.New(),
		Title:     params.Title,
		Slug:      params.Slug,
		Lexical:   params.Lexical,
		Status:    StatusDraft,
		AuthorID:  params.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return Post{}, apperrors.Newf(apperrors.ErrCodeConflict, "slug %q is already in use", params.Slug)
		}
		return Post{}, fmt.Errorf("failed to create post: %w", err)
	}
	slog.Info("Created post", "postID", post.ID, "slug", post.Slug)
	return post, nil
}

// Get returns the post with the given id
func (s *PostService) Get(ctx context.Context, id uuid.UUID) (Post, error) {
	post, err := s.repository.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return Post{}, apperrors.Newf(apperrors.ErrCodeNotFound, "post %s not found", id)
		}
		return Post{}, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// GetBySlug returns the published post with the given slug
func (s *PostService) GetBySlug(ctx context.Context, slug string) (Post, error) {
	post, err := s.repository.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return Post{}, apperrors.Newf(apperrors.ErrCodeNotFound, "post %q not found", slug)
		}
		return Post{}, fmt.Errorf("failed to get post by slug: %w", err)
	}
	return post, nil
}

// Find lists posts matching the query
func (s *PostService) Find(ctx context.Context, query PostQuery) (PostPage, error) {
	page, err := s.repository.FindPosts(ctx, query)
	if err != nil {
		return PostPage{}, fmt.Errorf("failed to find posts: %w", err)
	}
	return page, nil
}

// Update changes a post's title, slug and body
func (s *PostService) Update(ctx context.Context, params UpdatePostParams) (Post, error) {
	post, err := s.Get(ctx, params.ID)
	if err != nil {
		return Post{}, err
	}

	post.Title = params.Title
	post.Slug = params.Slug
	post.Lexical = params.Lexical
	post.UpdatedAt = time.Now().UTC()

	updated, err := s.repository.UpdatePost(ctx, post)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return Post{}, apperrors.Newf(apperrors.ErrCodeConflict, "slug %q is already in use", params.Slug)
		}
		return Post{}, fmt.Errorf("failed to update post: %w", err)
	}
	return updated, nil
}

// Publish marks a draft post as published. Publishing a published post is a no-op.
func (s *PostService) Publish(ctx context.Context, id uuid.UUID) (Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if post.Status == StatusPublished {
		return post, nil
	}

	now := time.Now().UTC()
	post.Status = StatusPublished
	post.PublishedAt = &now
	post.UpdatedAt = now

	updated, err := s.repository.UpdatePost(ctx, post)
	if err != nil {
		return Post{}, fmt.Errorf("failed to publish post: %w", err)
	}
	slog.Info("Published post", "postID", updated.ID, "slug", updated.Slug)
	return updated, nil
}

// UploadCover stores a cover image and attaches its key to the post,
// removing the previous cover when one exists.
func (s *PostService) UploadCover(ctx context.Context, id uuid.UUID, filename, contentType string, content io.Reader, size int64) (Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return Post{}, err
	}

	key, err := s.storage.Put(ctx, coverFolder, filename, contentType, content, size)
	if err != nil {
		return Post{}, fmt.Errorf("failed to store cover: %w", err)
	}

	if post.Cover != "" {
		if err := s.storage.Remove(ctx, post.Cover); err != nil {
			slog.Warn("Failed to remove previous cover", "postID", post.ID, "key", post.Cover, "error", err)
		}
	}

	post.Cover = key
	post.UpdatedAt = time.Now().UTC()
	updated, err := s.repository.UpdatePost(ctx, post)
	if err != nil {
		return Post{}, fmt.Errorf("failed to attach cover: %w", err)
	}
	return updated, nil
}

// Delete removes a post and its cover image
func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repository.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if post.Cover != "" {
		if err := s.storage.Remove(ctx, post.Cover); err != nil {
			slog.Warn("Failed to remove cover", "postID", post.ID, "key", post.Cover, "error", err)
		}
	}
	return nil
}
