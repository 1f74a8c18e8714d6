package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ogrenly/platform/pkg/course"
	apperrors "github.com/ogrenly/platform/pkg/errors"
)

const defaultPageLimit = 20

// WriteReviewParams carries a user's rating of a course
type WriteReviewParams struct {
	UserID   string
	CourseID uuid.UUID
	Rating   int
	Message  string
}

// ReviewService manages per-course user reviews
type ReviewService struct {
	repository ReviewRepository
	courses    *course.CourseService
}

// NewReviewService creates a new review service
func NewReviewService(repository ReviewRepository, courses *course.CourseService) *ReviewService {
	return &ReviewService{repository: repository, courses: courses}
}

// Write saves the user's review of a published course. Writing again
// replaces the earlier review.
func (s *ReviewService) Write(ctx context.Context, params WriteReviewParams) (Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return Review{}, apperrors.Newf(apperrors.ErrCodeInvalidInput, "rating must be between 1 and 5, got %d", params.Rating)
	}

	c, err := s.courses.Get(ctx, params.CourseID)
	if err != nil {
		return Review{}, err
	}
	if c.Status != course.StatusPublished {
		return Review{}, apperrors.Newf(apperrors.ErrCodeNotFound, "course %s not found", params.CourseID)
	}

	now := time.Now().UTC()
	saved, err := s.repository.SaveReview(ctx, Review{
		UserID:    params.UserID,
		CourseID:  params.CourseID,
		Rating:    params.Rating,
		Message:   params.Message,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Review{}, fmt.Errorf("failed to save review: %w", err)
	}
	return saved, nil
}

// ListByCourse returns one page of a published course's reviews, newest first
func (s *ReviewService) ListByCourse(ctx context.Context, courseID uuid.UUID, query ReviewQuery) (ReviewPage, error) {
	c, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return ReviewPage{}, err
	}
	if c.Status != course.StatusPublished {
		return ReviewPage{}, apperrors.Newf(apperrors.ErrCodeNotFound, "course %s not found", courseID)
	}

	if query.Limit <= 0 {
		query.Limit = defaultPageLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	page, err := s.repository.FindReviewsByCourse(ctx, courseID, query)
	if err != nil {
		return ReviewPage{}, fmt.Errorf("failed to list reviews: %w", err)
	}
	return page, nil
}
