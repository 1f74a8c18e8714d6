package review

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type reviewKey struct {
	userID   string
	courseID uuid.UUID
}

// InMemReviewRepository is an in-memory implementation of ReviewRepository
type InMemReviewRepository struct {
	mu      sync.Mutex
	reviews map[reviewKey]Review
}

// NewInMemReviewRepository creates a new in-memory review repository
func NewInMemReviewRepository() *InMemReviewRepository {
	return &InMemReviewRepository{
		reviews: make(map[reviewKey]Review),
	}
}

// SaveReview upserts the user's review, keeping the original creation time
func (r *InMemReviewRepository) SaveReview(ctx context.Context, review Review) (Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reviewKey{userID: review.UserID, courseID: review.CourseID}
	if existing, ok := r.reviews[key]; ok {
		review.CreatedAt = existing.CreatedAt
	}
	r.reviews[key] = review
	return review, nil
}

// GetReview returns the user's review of a course
func (r *InMemReviewRepository) GetReview(ctx context.Context, userID string, courseID uuid.UUID) (Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[reviewKey{userID: userID, courseID: courseID}]
	if !ok {
		return Review{}, ErrReviewNotFound
	}
	return review, nil
}

// FindReviewsByCourse lists a course's reviews, newest first
func (r *InMemReviewRepository) FindReviewsByCourse(ctx context.Context, courseID uuid.UUID, query ReviewQuery) (ReviewPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []Review
	for key, review := range r.reviews {
		if key.courseID == courseID {
			found = append(found, review)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})

	page := ReviewPage{TotalCount: len(found), Offset: query.Offset, Limit: query.Limit}
	if query.Offset < len(found) {
		end := query.Offset + query.Limit
		if end > len(found) {
			end = len(found)
		}
		page.Reviews = found[query.Offset:end]
	}
	return page, nil
}

// DeleteReview removes the user's review of a course
func (r *InMemReviewRepository) DeleteReview(ctx context.Context, userID string, courseID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reviewKey{userID: userID, courseID: courseID}
	if _, ok := r.reviews[key]; !ok {
		return ErrReviewNotFound
	}
	delete(r.reviews, key)
	return nil
}
