package course

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemCourseRepository is an in-memory implementation of CourseRepository
type InMemCourseRepository struct {
	mu      sync.Mutex
	courses map[uuid.UUID]Course
	lessons map[uuid.UUID]Lesson
}

// NewInMemCourseRepository creates a new in-memory course repository
func NewInMemCourseRepository() *InMemCourseRepository {
	return &InMemCourseRepository{
		courses: make(map[uuid.UUID]Course),
		lessons: make(map[uuid.UUID]Lesson),
	}
}

func (r *InMemCourseRepository) slugTakenLocked(slug string, exclude uuid.UUID) bool {
	for _, c := range r.courses {
		if c.Slug == slug && c.ID != exclude {
			return true
		}
	}
	return false
}

// CreateCourse stores a new course
func (r *InMemCourseRepository) CreateCourse(ctx context.Context, course Course) (Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTakenLocked(course.Slug, course.ID) {
		return Course{}, ErrSlugTaken
	}
	r.courses[course.ID] = course
	return course, nil
}

// GetCourse retrieves a course by id
func (r *InMemCourseRepository) GetCourse(ctx context.Context, id uuid.UUID) (Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	course, ok := r.courses[id]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return course, nil
}

// GetCourseBySlug retrieves a course by slug
func (r *InMemCourseRepository) GetCourseBySlug(ctx context.Context, slug string) (Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, course := range r.courses {
		if course.Slug == slug {
			return course, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

// FindCourses lists courses matching the query, newest first
func (r *InMemCourseRepository) FindCourses(ctx context.Context, query CourseQuery) (CoursePage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []Course
	for _, course := range r.courses {
		if query.Status != "" && course.Status != query.Status {
			continue
		}
		matched = append(matched, course)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := CoursePage{
		TotalCount: len(matched),
		Offset:     query.Offset,
		Limit:      query.Limit,
	}
	if query.Offset < len(matched) {
		matched = matched[query.Offset:]
	} else {
		matched = nil
	}
	if query.Limit > 0 && query.Limit < len(matched) {
		matched = matched[:query.Limit]
	}
	page.Courses = matched
	return page, nil
}

// UpdateCourse replaces a stored course
func (r *InMemCourseRepository) UpdateCourse(ctx context.Context, course Course) (Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[course.ID]; !ok {
		return Course{}, ErrCourseNotFound
	}
	if r.slugTakenLocked(course.Slug, course.ID) {
		return Course{}, ErrSlugTaken
	}
	r.courses[course.ID] = course
	return course, nil
}

// DeleteCourse removes a course and its lessons
func (r *InMemCourseRepository) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[id]; !ok {
		return ErrCourseNotFound
	}
	delete(r.courses, id)
	for lessonID, lesson := range r.lessons {
		if lesson.CourseID == id {
			delete(r.lessons, lessonID)
		}
	}
	return nil
}

// CreateLesson stores a new lesson
func (r *InMemCourseRepository) CreateLesson(ctx context.Context, lesson Lesson) (Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[lesson.CourseID]; !ok {
		return Lesson{}, ErrCourseNotFound
	}
	r.lessons[lesson.ID] = lesson
	return lesson, nil
}

// GetLesson retrieves a lesson by id
func (r *InMemCourseRepository) GetLesson(ctx context.Context, id uuid.UUID) (Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lesson, ok := r.lessons[id]
	if !ok {
		return Lesson{}, ErrLessonNotFound
	}
	return lesson, nil
}

// FindLessons lists a course's lessons ordered by position
func (r *InMemCourseRepository) FindLessons(ctx context.Context, courseID uuid.UUID) ([]Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var lessons []Lesson
	for _, lesson := range r.lessons {
		if lesson.CourseID == courseID {
			lessons = append(lessons, lesson)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].Position < lessons[j].Position
	})
	return lessons, nil
}

// UpdateLesson replaces a stored lesson
func (r *InMemCourseRepository) UpdateLesson(ctx context.Context, lesson Lesson) (Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lessons[lesson.ID]; !ok {
		return Lesson{}, ErrLessonNotFound
	}
	r.lessons[lesson.ID] = lesson
	return lesson, nil
}

// DeleteLesson removes a lesson
func (r *InMemCourseRepository) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lessons[id]; !ok {
		return ErrLessonNotFound
	}
	delete(r.lessons, id)
	return nil
}

// ReorderLessons assigns positions following the given id order
func (r *InMemCourseRepository) ReorderLessons(ctx context.Context, courseID uuid.UUID, orderedIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[courseID]; !ok {
		return ErrCourseNotFound
	}

	position := 0
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		lesson, ok := r.lessons[id]
		if !ok || lesson.CourseID != courseID {
			return ErrLessonNotFound
		}
		position++
		lesson.Position = position
		r.lessons[id] = lesson
		seen[id] = true
	}

	var rest []Lesson
	for _, lesson := range r.lessons {
		if lesson.CourseID == courseID && !seen[lesson.ID] {
			rest = append(rest, lesson)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Position < rest[j].Position })
	for _, lesson := range rest {
		position++
		lesson.Position = position
		r.lessons[lesson.ID] = lesson
	}
	return nil
}

// MaxLessonPosition returns the highest lesson position in a course
func (r *InMemCourseRepository) MaxLessonPosition(ctx context.Context, courseID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	max := 0
	for _, lesson := range r.lessons {
		if lesson.CourseID == courseID && lesson.Position > max {
			max = lesson.Position
		}
	}
	return max, nil
}
