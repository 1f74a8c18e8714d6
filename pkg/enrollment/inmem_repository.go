package enrollment

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type progressKey struct {
	userID   string
	lessonID uuid.UUID
}

// InMemEnrollmentRepository is an in-memory implementation of EnrollmentRepository
type InMemEnrollmentRepository struct {
	mu          sync.Mutex
	enrollments []Enrollment
	progress    map[progressKey]LessonProgress
}

// NewInMemEnrollmentRepository creates a new in-memory enrollment repository
func NewInMemEnrollmentRepository() *InMemEnrollmentRepository {
	return &InMemEnrollmentRepository{
		progress: make(map[progressKey]LessonProgress),
	}
}

// CreateEnrollment stores an enrollment, returning the existing one on repeat
func (r *InMemEnrollmentRepository) CreateEnrollment(ctx context.Context, enrollment Enrollment) (Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.enrollments {
		if e.UserID == enrollment.UserID && e.CourseID == enrollment.CourseID {
			return e, nil
		}
	}
	r.enrollments = append(r.enrollments, enrollment)
	return enrollment, nil
}

// GetEnrollment retrieves an enrollment by user and course
func (r *InMemEnrollmentRepository) GetEnrollment(ctx context.Context, userID string, courseID uuid.UUID) (Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e, nil
		}
	}
	return Enrollment{}, ErrEnrollmentNotFound
}

// FindEnrollmentsByUser lists a user's enrollments, newest first
func (r *InMemEnrollmentRepository) FindEnrollmentsByUser(ctx context.Context, userID string) ([]Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []Enrollment
	for _, e := range r.enrollments {
		if e.UserID == userID {
			found = append(found, e)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].EnrolledAt.After(found[j].EnrolledAt)
	})
	return found, nil
}

// DeleteEnrollment removes an enrollment
func (r *InMemEnrollmentRepository) DeleteEnrollment(ctx context.Context, userID string, courseID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			r.enrollments = append(r.enrollments[:i], r.enrollments[i+1:]...)
			return nil
		}
	}
	return ErrEnrollmentNotFound
}

// MarkLessonCompleted records completion, keeping the first completion time
func (r *InMemEnrollmentRepository) MarkLessonCompleted(ctx context.Context, progress LessonProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := progressKey{userID: progress.UserID, lessonID: progress.LessonID}
	if _, ok := r.progress[key]; ok {
		return nil
	}
	r.progress[key] = progress
	return nil
}

// FindCompletedLessons returns which of the given lessons the user completed
func (r *InMemEnrollmentRepository) FindCompletedLessons(ctx context.Context, userID string, lessonIDs []uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var completed []uuid.UUID
	for _, lessonID := range lessonIDs {
		if _, ok := r.progress[progressKey{userID: userID, lessonID: lessonID}]; ok {
			completed = append(completed, lessonID)
		}
	}
	return completed, nil
}
