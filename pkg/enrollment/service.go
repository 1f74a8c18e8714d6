package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ogrenly/platform/pkg/course"
	apperrors "github.com/ogrenly/platform/pkg/errors"
)

// CourseProgress is a user's standing in one enrolled course
type CourseProgress struct {
	Course           course.Course `json:"course"`
	EnrolledAt       time.Time     `json:"enrolled_at"`
	TotalLessons     int           `json:"total_lessons"`
	CompletedLessons int           `json:"completed_lessons"`
}

// EnrollmentService manages course enrollments and lesson progress
type EnrollmentService struct {
	repository EnrollmentRepository
	courses    *course.CourseService
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(repository EnrollmentRepository, courses *course.CourseService) *EnrollmentService {
	return &EnrollmentService{repository: repository, courses: courses}
}

// Enroll enrolls a user in a published course. Enrolling twice returns the
// existing enrollment.
func (s *EnrollmentService) Enroll(ctx context.Context, userID string, courseID uuid.UUID) (Enrollment, error) {
	c, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if c.Status != course.StatusPublished {
		return Enrollment{}, apperrors.Newf(apperrors.ErrCodeNotFound, "course %s not found", courseID)
	}

	enrollment, err := s.repository.CreateEnrollment(ctx, Enrollment{
		ID:         uuid.New(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("failed to create enrollment: %w", err)
	}
	slog.Info("Enrolled user in course", "userID", userID, "courseID", courseID)
	return enrollment, nil
}

// Unenroll removes a user's enrollment
func (s *EnrollmentService) Unenroll(ctx context.Context, userID string, courseID uuid.UUID) error {
	if err := s.repository.DeleteEnrollment(ctx, userID, courseID); err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			return apperrors.Newf(apperrors.ErrCodeNotFound, "not enrolled in course %s", courseID)
		}
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return nil
}

// ListProgress returns the user's enrolled courses with lesson completion counts
func (s *EnrollmentService) ListProgress(ctx context.Context, userID string) ([]CourseProgress, error) {
	enrollments, err := s.repository.FindEnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find enrollments: %w", err)
	}

	progress := make([]CourseProgress, 0, len(enrollments))
	for _, e := range enrollments {
		c, err := s.courses.Get(ctx, e.CourseID)
		if err != nil {
			if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
				continue // course deleted after enrollment
			}
			return nil, err
		}

		lessons, err := s.courses.Lessons(ctx, e.CourseID)
		if err != nil {
			return nil, err
		}
		lessonIDs := make([]uuid.UUID, len(lessons))
		for i, lesson := range lessons {
			lessonIDs[i] = lesson.ID
		}

		completed, err := s.repository.FindCompletedLessons(ctx, userID, lessonIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to find completed lessons: %w", err)
		}

		progress = append(progress, CourseProgress{
			Course:           c,
			EnrolledAt:       e.EnrolledAt,
			TotalLessons:     len(lessons),
			CompletedLessons: len(completed),
		})
	}
	return progress, nil
}

// CompleteLesson marks a lesson as completed for an enrolled user.
// Completing the same lesson twice is a no-op.
func (s *EnrollmentService) CompleteLesson(ctx context.Context, userID string, lessonID uuid.UUID) error {
	lesson, err := s.courses.GetLesson(ctx, lessonID)
	if err != nil {
		return err
	}

	if _, err := s.repository.GetEnrollment(ctx, userID, lesson.CourseID); err != nil {
		if errors.Is(err, ErrEnrollmentNotFound) {
			return apperrors.Newf(apperrors.ErrCodeForbidden, "not enrolled in course %s", lesson.CourseID)
		}
		return fmt.Errorf("failed to get enrollment: %w", err)
	}

	if err := s.repository.MarkLessonCompleted(ctx, LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		CompletedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to mark lesson completed: %w", err)
	}
	return nil
}
