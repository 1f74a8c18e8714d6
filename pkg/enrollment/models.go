package enrollment

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment ties a student to a course
type Enrollment struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"user_id"`
	CourseID   uuid.UUID `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// LessonProgress marks a lesson as completed by a student
type LessonProgress struct {
	UserID      string    `json:"user_id"`
	LessonID    uuid.UUID `json:"lesson_id"`
	CompletedAt time.Time `json:"completed_at"`
}
