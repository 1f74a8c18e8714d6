package review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrReviewNotFound is returned when the user has not reviewed the course
var ErrReviewNotFound = errors.New("review not found")

// Review is a user's rating of a course. Each user holds at most one review
// per course; writing again replaces it.
type Review struct {
	UserID    string    `json:"user_id"`
	CourseID  uuid.UUID `json:"course_id"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewQuery pages review listings
type ReviewQuery struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ReviewPage is one page of a course's reviews
type ReviewPage struct {
	Reviews    []Review `json:"reviews"`
	TotalCount int      `json:"total_count"`
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
}

// ReviewRepository defines the interface for review storage operations
type ReviewRepository interface {
	// SaveReview upserts the user's review of a course, keeping the
	// original creation time on replace
	SaveReview(ctx context.Context, review Review) (Review, error)
	// GetReview returns the user's review of a course, or ErrReviewNotFound
	GetReview(ctx context.Context, userID string, courseID uuid.UUID) (Review, error)
	// FindReviewsByCourse lists a course's reviews, newest first
	FindReviewsByCourse(ctx context.Context, courseID uuid.UUID, query ReviewQuery) (ReviewPage, error)
	DeleteReview(ctx context.Context, userID string, courseID uuid.UUID) error
}
