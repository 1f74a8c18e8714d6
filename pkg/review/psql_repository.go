package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresReviewRepository implements ReviewRepository using PostgreSQL
type PostgresReviewRepository struct {
	db DBTX
}

// NewPostgresReviewRepository creates a new PostgreSQL review repository
func NewPostgresReviewRepository(db DBTX) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

// SaveReview upserts the user's review, keeping the original creation time
func (r *PostgresReviewRepository) SaveReview(ctx context.Context, review Review) (Review, error) {
	query := `
		INSERT INTO course_reviews (user_id, course_id, rating, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, course_id)
		DO UPDATE SET rating = EXCLUDED.rating, message = EXCLUDED.message, updated_at = EXCLUDED.updated_at
		RETURNING user_id, course_id, rating, message, created_at, updated_at`
	var saved Review
	err := r.db.QueryRow(ctx, query,
		review.UserID, review.CourseID, review.Rating, review.Message,
		review.CreatedAt, review.UpdatedAt,
	).Scan(&saved.UserID, &saved.CourseID, &saved.Rating, &saved.Message, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return Review{}, fmt.Errorf("failed to save review: %w", err)
	}
	return saved, nil
}

// GetReview returns the user's review of a course
func (r *PostgresReviewRepository) GetReview(ctx context.Context, userID string, courseID uuid.UUID) (Review, error) {
	query := `
		SELECT user_id, course_id, rating, message, created_at, updated_at
		FROM course_reviews WHERE user_id = $1 AND course_id = $2`
	var review Review
	err := r.db.QueryRow(ctx, query, userID, courseID).Scan(
		&review.UserID, &review.CourseID, &review.Rating, &review.Message,
		&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, ErrReviewNotFound
		}
		return Review{}, fmt.Errorf("failed to get review: %w", err)
	}
	return review, nil
}

// FindReviewsByCourse lists a course's reviews, newest first
func (r *PostgresReviewRepository) FindReviewsByCourse(ctx context.Context, courseID uuid.UUID, query ReviewQuery) (ReviewPage, error) {
	page := ReviewPage{Offset: query.Offset, Limit: query.Limit}

	countQuery := `SELECT COUNT(*) FROM course_reviews WHERE course_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, courseID).Scan(&page.TotalCount); err != nil {
		return ReviewPage{}, fmt.Errorf("failed to count reviews: %w", err)
	}

	listQuery := `
		SELECT user_id, course_id, rating, message, created_at, updated_at
		FROM course_reviews WHERE course_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`
	rows, err := r.db.Query(ctx, listQuery, courseID, query.Offset, query.Limit)
	if err != nil {
		return ReviewPage{}, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var review Review
		if err := rows.Scan(&review.UserID, &review.CourseID, &review.Rating, &review.Message,
			&review.CreatedAt, &review.UpdatedAt); err != nil {
			return ReviewPage{}, fmt.Errorf("failed to scan review: %w", err)
		}
		page.Reviews = append(page.Reviews, review)
	}
	if err := rows.Err(); err != nil {
		return ReviewPage{}, fmt.Errorf("failed to read reviews: %w", err)
	}
	return page, nil
}

// DeleteReview removes the user's review of a course
func (r *PostgresReviewRepository) DeleteReview(ctx context.Context, userID string, courseID uuid.UUID) error {
	query := `DELETE FROM course_reviews WHERE user_id = $1 AND course_id = $2`
	tag, err := r.db.Exec(ctx, query, userID, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}
