package course

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/filestorage"
)

const coverFolder = "course-covers"

// CourseService manages courses and their lessons
type CourseService struct {
	repository CourseRepository
	storage    filestorage.Storage
}

// NewCourseService creates a new course service
func NewCourseService(repository CourseRepository, storage filestorage.Storage) *CourseService {
	return &CourseService{repository: repository, storage: storage}
}

// Create stores a new draft course
func (s *CourseService) Create(ctx context.Context, params CreateCourseParams) (Course, error) {
	if params.Title == "" || params.Slug == "" {
		return Course{}, apperrors.New(apperrors.ErrCodeMissingRequired, "title and slug are required")
	}

	now := time.Now().UTC()
	course, err := s.repository.CreateCourse(ctx, Course{
		ID:          uuid.New(),
		Title:       params.Title,
		Slug:        params.Slug,
		Description: params.Description,
		Level:       params.Level,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return Course{}, apperrors.Newf(apperrors.ErrCodeConflict, "slug %q is already in use", params.Slug)
		}
		return Course{}, fmt.Errorf("failed to create course: %w", err)
	}
	slog.Info("Created course", "courseID", course.ID, "slug", course.Slug)
	return course, nil
}

// Get returns the course with the given id
func (s *CourseService) Get(ctx context.Context, id uuid.UUID) (Course, error) {
	course, err := s.repository.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return Course{}, apperrors.Newf(apperrors.ErrCodeNotFound, "course %s not found", id)
		}
		return Course{}, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

// GetBySlug returns the course with the given slug
func (s *CourseService) GetBySlug(ctx context.Context, slug string) (Course, error) {
	course, err := s.repository.GetCourseBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return Course{}, apperrors.Newf(apperrors.ErrCodeNotFound, "course %q not found", slug)
		}
		return Course{}, fmt.Errorf("failed to get course by slug: %w", err)
	}
	return course, nil
}

// Find lists courses matching the query
func (s *CourseService) Find(ctx context.Context, query CourseQuery) (CoursePage, error) {
	page, err := s.repository.FindCourses(ctx, query)
	if err != nil {
		return CoursePage{}, fmt.Errorf("failed to find courses: %w", err)
	}
	return page, nil
}

// Update changes a course's title, slug and description
func (s *CourseService) Update(ctx context.Context, params UpdateCourseParams) (Course, error) {
	course, err := s.Get(ctx, params.ID)
	if err != nil {
		return Course{}, err
	}

	course.Title = params.Title
	course.Slug = params.Slug
	course.Description = params.Description
	course.Level = params.Level
	course.UpdatedAt = time.Now().UTC()

	updated, err := s.repository.UpdateCourse(ctx, course)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return Course{}, apperrors.Newf(apperrors.ErrCodeConflict, "slug %q is already in use", params.Slug)
		}
		return Course{}, fmt.Errorf("failed to update course: %w", err)
	}
	return updated, nil
}

// Publish marks a draft course as published. Publishing a published course is a no-op.
func (s *CourseService) Publish(ctx context.Context, id uuid.UUID) (Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if course.Status == StatusPublished {
		return course, nil
	}

	course.Status = StatusPublished
	course.UpdatedAt = time.Now().UTC()

	updated, err := s.repository.UpdateCourse(ctx, course)
	if err != nil {
		return Course{}, fmt.Errorf("failed to publish course: %w", err)
	}
	slog.Info("Published course", "courseID", updated.ID, "slug", updated.Slug)
	return updated, nil
}

// UploadCover stores a cover image and attaches its key to the course,
// removing the previous cover when one exists.
func (s *CourseService) UploadCover(ctx context.Context, id uuid.UUID, filename, contentType string, content io.Reader, size int64) (Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}

	key, err := s.storage.Put(ctx, coverFolder, filename, contentType, content, size)
	if err != nil {
		return Course{}, fmt.Errorf("failed to store cover: %w", err)
	}

	if course.Cover != "" {
		if err := s.storage.Remove(ctx, course.Cover); err != nil {
			slog.Warn("Failed to remove previous cover", "courseID", course.ID, "key", course.Cover, "error", err)
		}
	}

	course.Cover = key
	course.UpdatedAt = time.Now().UTC()
	updated, err := s.repository.UpdateCourse(ctx, course)
	if err != nil {
		return Course{}, fmt.Errorf("failed to attach cover: %w", err)
	}
	return updated, nil
}

// Delete removes a course, its lessons and its cover image
func (s *CourseService) Delete(ctx context.Context, id uuid.UUID) error {
	course, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repository.DeleteCourse(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if course.Cover != "" {
		if err := s.storage.Remove(ctx, course.Cover); err != nil {
			slog.Warn("Failed to remove cover", "courseID", course.ID, "key", course.Cover, "error", err)
		}
	}
	return nil
}

// AddLesson appends a lesson at the end of a course
func (s *CourseService) AddLesson(ctx context.Context, params CreateLessonParams) (Lesson, error) {
	if params.Title == "" {
		return Lesson{}, apperrors.New(apperrors.ErrCodeMissingRequired, "title is required")
	}
	if _, err := s.Get(ctx, params.CourseID); err != nil {
		return Lesson{}, err
	}

	maxPos, err := s.repository.MaxLessonPosition(ctx, params.CourseID)
	if err != nil {
		return Lesson{}, fmt.Errorf("failed to get lesson position: %w", err)
	}

	now := time.Now().UTC()
	lesson, err := s.repository.CreateLesson(ctx, Lesson{
		ID:        uuid.New(),
		CourseID:  params.CourseID,
		Title:     params.Title,
		Slug:      params.Slug,
		Lexical:   params.Lexical,
		VideoURL:  params.VideoURL,
		Trial:     params.Trial,
		Position:  maxPos + 1,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Lesson{}, fmt.Errorf("failed to create lesson: %w", err)
	}
	return lesson, nil
}

// GetLesson returns the lesson with the given id
func (s *CourseService) GetLesson(ctx context.Context, id uuid.UUID) (Lesson, error) {
	lesson, err := s.repository.GetLesson(ctx, id)
	if err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			return Lesson{}, apperrors.Newf(apperrors.ErrCodeNotFound, "lesson %s not found", id)
		}
		return Lesson{}, fmt.Errorf("failed to get lesson: %w", err)
	}
	return lesson, nil
}

// Lessons lists a course's lessons ordered by position
func (s *CourseService) Lessons(ctx context.Context, courseID uuid.UUID) ([]Lesson, error) {
	lessons, err := s.repository.FindLessons(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find lessons: %w", err)
	}
	return lessons, nil
}

// UpdateLesson changes a lesson's title, body and video
func (s *CourseService) UpdateLesson(ctx context.Context, params UpdateLessonParams) (Lesson, error) {
	lesson, err := s.GetLesson(ctx, params.ID)
	if err != nil {
		return Lesson{}, err
	}

	lesson.Title = params.Title
	lesson.Slug = params.Slug
	lesson.Lexical = params.Lexical
	lesson.VideoURL = params.VideoURL
	lesson.Trial = params.Trial
	lesson.UpdatedAt = time.Now().UTC()

	updated, err := s.repository.UpdateLesson(ctx, lesson)
	if err != nil {
		return Lesson{}, fmt.Errorf("failed to update lesson: %w", err)
	}
	return updated, nil
}

// ReorderLessons applies a new lesson order to a course. Every id must
// belong to the course; lessons left out keep their relative order after
// the listed ones.
func (s *CourseService) ReorderLessons(ctx context.Context, courseID uuid.UUID, orderedIDs []uuid.UUID) ([]Lesson, error) {
	lessons, err := s.Lessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(lessons))
	for _, lesson := range lessons {
		known[lesson.ID] = true
	}
	for _, id := range orderedIDs {
		if !known[id] {
			return nil, apperrors.Newf(apperrors.ErrCodeInvalidInput, "lesson %s does not belong to course %s", id, courseID)
		}
	}

	if err := s.repository.ReorderLessons(ctx, courseID, orderedIDs); err != nil {
		return nil, fmt.Errorf("failed to reorder lessons: %w", err)
	}
	return s.Lessons(ctx, courseID)
}

// DeleteLesson removes a lesson
func (s *CourseService) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.DeleteLesson(ctx, id); err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			return apperrors.Newf(apperrors.ErrCodeNotFound, "lesson %s not found", id)
		}
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}
