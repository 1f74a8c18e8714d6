package course

import (
	"time"

	"github.com/google/uuid"
)

// Course statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Course levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Course is a structured unit of learning content made of ordered lessons.
type Course struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Cover       string    `json:"cover,omitempty"` // object storage key
	Level       string    `json:"level,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Lesson is one unit of a course. Position orders lessons within a course.
// Trial lessons are viewable without enrollment.
type Lesson struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Lexical   string    `json:"lexical,omitempty"`
	VideoURL  string    `json:"video_url,omitempty"`
	Trial     bool      `json:"trial"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCourseParams contains parameters for creating a course
type CreateCourseParams struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level,omitempty"`
}

// UpdateCourseParams contains parameters for updating a course
type UpdateCourseParams struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Level       string    `json:"level,omitempty"`
}

// CreateLessonParams contains parameters for adding a lesson to a course
type CreateLessonParams struct {
	CourseID uuid.UUID `json:"course_id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Lexical  string    `json:"lexical,omitempty"`
	VideoURL string    `json:"video_url,omitempty"`
	Trial    bool      `json:"trial"`
}

// UpdateLessonParams contains parameters for updating a lesson
type UpdateLessonParams struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Lexical  string    `json:"lexical,omitempty"`
	VideoURL string    `json:"video_url,omitempty"`
	Trial    bool      `json:"trial"`
}

// CourseQuery filters and pages course listings
type CourseQuery struct {
	Status string `json:"status,omitempty"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// CoursePage is one page of a course listing
type CoursePage struct {
	Courses    []Course `json:"courses"`
	TotalCount int      `json:"total_count"`
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
}
