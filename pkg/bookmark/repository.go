package bookmark

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrBookmarkNotFound is returned when the user has not bookmarked the target
var ErrBookmarkNotFound = errors.New("bookmark not found")

// Bookmark targets
const (
	TargetPost   = "post"
	TargetCourse = "course"
)

// Bookmark marks a post or course as saved by a user
type Bookmark struct {
	UserID     string    `json:"user_id"`
	TargetType string    `json:"target_type"`
	TargetID   uuid.UUID `json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookmarkRepository defines the interface for bookmark storage operations
type BookmarkRepository interface {
	// CreateBookmark stores a bookmark. Bookmarking the same target twice
	// is a no-op.
	CreateBookmark(ctx context.Context, bookmark Bookmark) error
	DeleteBookmark(ctx context.Context, userID, targetType string, targetID uuid.UUID) error
	FindBookmarksByUser(ctx context.Context, userID string) ([]Bookmark, error)
}
