package enrollment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEnrollmentNotFound is returned when the user is not enrolled in the course
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// EnrollmentRepository defines the interface for enrollment storage operations
type EnrollmentRepository interface {
	// CreateEnrollment stores an enrollment. Enrolling twice in the same
	// course returns the existing record.
	CreateEnrollment(ctx context.Context, enrollment Enrollment) (Enrollment, error)
	GetEnrollment(ctx context.Context, userID string, courseID uuid.UUID) (Enrollment, error)
	FindEnrollmentsByUser(ctx context.Context, userID string) ([]Enrollment, error)
	DeleteEnrollment(ctx context.Context, userID string, courseID uuid.UUID) error

	// MarkLessonCompleted records completion. Completing twice is a no-op.
	MarkLessonCompleted(ctx context.Context, progress LessonProgress) error
	FindCompletedLessons(ctx context.Context, userID string, lessonIDs []uuid.UUID) ([]uuid.UUID, error)
}
