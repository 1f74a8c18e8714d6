package enrollment

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

// PostgresEnrollmentRepository implements EnrollmentRepository using PostgreSQL
type PostgresEnrollmentRepository struct {
	db DBTX
}

// NewPostgresEnrollmentRepository creates a new PostgreSQL enrollment repository
func NewPostgresEnrollmentRepository(db DBTX) *PostgresEnrollmentRepository {
	return &PostgresEnrollmentRepository{db: db}
}

const enrollmentColumns = "id, user_id, course_id, enrolled_at"

func scanEnrollment(row pgx.Row) (Enrollment, error) {
	var e Enrollment
	err := row.Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Enrollment{}, ErrEnrollmentNotFound
		}
		return Enrollment{}, fmt.Errorf("failed to scan enrollment: %w", err)
	}
	return e, nil
}

// CreateEnrollment stores an enrollment, returning the existing one on repeat
func (r *PostgresEnrollmentRepository) CreateEnrollment(ctx context.Context, enrollment Enrollment) (Enrollment, error) {
	query := `
		INSERT INTO enrollments (id, user_id, course_id, enrolled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course_id) DO UPDATE SET enrolled_at = enrollments.enrolled_at
		RETURNING ` + enrollmentColumns
	return scanEnrollment(r.db.QueryRow(ctx, query,
		enrollment.ID, enrollment.UserID, enrollment.CourseID, enrollment.EnrolledAt))
}

// GetEnrollment retrieves an enrollment by user and course
func (r *PostgresEnrollmentRepository) GetEnrollment(ctx context.Context, userID string, courseID uuid.UUID) (Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id = $1 AND course_id = $2`
	return scanEnrollment(r.db.QueryRow(ctx, query, userID, courseID))
}

// FindEnrollmentsByUser lists a user's enrollments, newest first
func (r *PostgresEnrollmentRepository) FindEnrollmentsByUser(ctx context.Context, userID string) ([]Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE user_id = $1 ORDER BY enrolled_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read enrollments: %w", err)
	}
	return enrollments, nil
}

// DeleteEnrollment removes an enrollment
func (r *PostgresEnrollmentRepository) DeleteEnrollment(ctx context.Context, userID string, courseID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM enrollments WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

// MarkLessonCompleted records completion, keeping the first completion time
func (r *PostgresEnrollmentRepository) MarkLessonCompleted(ctx context.Context, progress LessonProgress) error {
	query := `
		INSERT INTO lesson_progress (user_id, lesson_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, lesson_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, query, progress.UserID, progress.LessonID, progress.CompletedAt); err != nil {
		return fmt.Errorf("failed to mark lesson completed: %w", err)
	}
	return nil
}

// FindCompletedLessons returns which of the given lessons the user completed
func (r *PostgresEnrollmentRepository) FindCompletedLessons(ctx context.Context, userID string, lessonIDs []uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT lesson_id FROM lesson_progress WHERE user_id = $1 AND lesson_id = ANY($2)`
	rows, err := r.db.Query(ctx, query, userID, lessonIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	defer rows.Close()

	var completed []uuid.UUID
	for rows.Next() {
		var lessonID uuid.UUID
		if err := rows.Scan(&lessonID); err != nil {
			return nil, fmt.Errorf("failed to scan lesson progress: %w", err)
		}
		completed = append(completed, lessonID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lesson progress: %w", err)
	}
	return completed, nil
}
