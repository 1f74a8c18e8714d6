package bookmark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ogrenly/platform/pkg/blog"
	"github.com/ogrenly/platform/pkg/course"
	apperrors "github.com/ogrenly/platform/pkg/errors"
)

// BookmarkItem is one saved post or course
type BookmarkItem struct {
	TargetType string         `json:"target_type"`
	CreatedAt  time.Time      `json:"created_at"`
	Post       *blog.Post     `json:"post,omitempty"`
	Course     *course.Course `json:"course,omitempty"`
}

// BookmarkService manages saved posts and courses
type BookmarkService struct {
	repository BookmarkRepository
	posts      *blog.PostService
	courses    *course.CourseService
}

// NewBookmarkService creates a new bookmark service
func NewBookmarkService(repository BookmarkRepository, posts *blog.PostService, courses *course.CourseService) *BookmarkService {
	return &BookmarkService{repository: repository, posts: posts, courses: courses}
}

// Add bookmarks a published post or course. Bookmarking the same target
// twice is a no-op.
func (s *BookmarkService) Add(ctx context.Context, userID, targetType string, targetID uuid.UUID) error {
	switch targetType {
	case TargetPost:
		post, err := s.posts.Get(ctx, targetID)
		if err != nil {
			return err
		}
		if post.Status != blog.StatusPublished {
			return apperrors.Newf(apperrors.ErrCodeNotFound, "post %s not found", targetID)
		}
	case TargetCourse:
		c, err := s.courses.Get(ctx, targetID)
		if err != nil {
			return err
		}
		if c.Status != course.StatusPublished {
			return apperrors.Newf(apperrors.ErrCodeNotFound, "course %s not found", targetID)
		}
	default:
		return apperrors.Newf(apperrors.ErrCodeInvalidInput, "unknown bookmark target %q", targetType)
	}

	if err := s.repository.CreateBookmark(ctx, Bookmark{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to create bookmark: %w", err)
	}
	return nil
}

// Remove deletes a bookmark
func (s *BookmarkService) Remove(ctx context.Context, userID, targetType string, targetID uuid.UUID) error {
	if err := s.repository.DeleteBookmark(ctx, userID, targetType, targetID); err != nil {
		if errors.Is(err, ErrBookmarkNotFound) {
			return apperrors.Newf(apperrors.ErrCodeNotFound, "%s %s is not bookmarked", targetType, targetID)
		}
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}

// List returns the user's saved posts and courses, newest bookmark first.
// Targets deleted since being bookmarked are skipped.
func (s *BookmarkService) List(ctx context.Context, userID string) ([]BookmarkItem, error) {
	bookmarks, err := s.repository.FindBookmarksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookmarks: %w", err)
	}

	items := make([]BookmarkItem, 0, len(bookmarks))
	for _, b := range bookmarks {
		item := BookmarkItem{TargetType: b.TargetType, CreatedAt: b.CreatedAt}
		switch b.TargetType {
		case TargetPost:
			post, err := s.posts.Get(ctx, b.TargetID)
			if err != nil {
				if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
					continue
				}
				return nil, err
			}
			item.Post = &post
		case TargetCourse:
			c, err := s.courses.Get(ctx, b.TargetID)
			if err != nil {
				if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
					continue
				}
				return nil, err
			}
			item.Course = &c
		default:
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
