package course

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrCourseNotFound is returned when no course exists for the given id or slug
	ErrCourseNotFound = errors.New("course not found")
	// ErrLessonNotFound is returned when no lesson exists for the given id
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrSlugTaken is returned when another course already uses the slug
	ErrSlugTaken = errors.New("slug already in use")
)

// CourseRepository defines the interface for course and lesson storage operations
type CourseRepository interface {
	CreateCourse(ctx context.Context, course Course) (Course, error)
	GetCourse(ctx context.Context, id uuid.UUID) (Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (Course, error)
	FindCourses(ctx context.Context, query CourseQuery) (CoursePage, error)
	UpdateCourse(ctx context.Context, course Course) (Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error

	CreateLesson(ctx context.Context, lesson Lesson) (Lesson, error)
	GetLesson(ctx context.Context, id uuid.UUID) (Lesson, error)
	FindLessons(ctx context.Context, courseID uuid.UUID) ([]Lesson, error)
	UpdateLesson(ctx context.Context, lesson Lesson) (Lesson, error)
	DeleteLesson(ctx context.Context, id uuid.UUID) error
	// ReorderLessons assigns positions 1..n following the given id order.
	// Lessons of the course missing from the list keep their relative order
	// after the listed ones.
	ReorderLessons(ctx context.Context, courseID uuid.UUID, orderedIDs []uuid.UUID) error
	// MaxLessonPosition returns the highest position among a course's lessons,
	// or 0 when the course has none.
	MaxLessonPosition(ctx context.Context, courseID uuid.UUID) (int, error)
}
