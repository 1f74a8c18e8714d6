package enrollment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogrenly/platform/pkg/course"
	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/filestorage"
)

func setupEnrollmentService(t *testing.T) (*EnrollmentService, *course.CourseService) {
	t.Helper()
	courses := course.NewCourseService(course.NewInMemCourseRepository(), filestorage.NewInMemStorage())
	return NewEnrollmentService(NewInMemEnrollmentRepository(), courses), courses
}

func createPublishedCourse(t *testing.T, courses *course.CourseService, slug string, lessonCount int) (course.Course, []course.Lesson) {
	t.Helper()
	ctx := context.Background()

	c, err := courses.Create(ctx, course.CreateCourseParams{
		Title: "Course " + slug,
		Slug:  slug,
		Level: course.LevelBeginner,
	})
	require.NoError(t, err)

	lessons := make([]course.Lesson, 0, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lesson, err := courses.AddLesson(ctx, course.CreateLessonParams{
			CourseID: c.ID,
			Title:    "Lesson",
			Slug:     slug + "-lesson-" + uuid.New().String(),
		})
		require.NoError(t, err)
		lessons = append(lessons, lesson)
	}

	c, err = courses.Publish(ctx, c.ID)
	require.NoError(t, err)
	return c, lessons
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()
	service, courses := setupEnrollmentService(t)
	c, _ := createPublishedCourse(t, courses, "go-basics", 0)

	enrollment, err := service.Enroll(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", enrollment.UserID)
	assert.Equal(t, c.ID, enrollment.CourseID)

	// enrolling twice returns the existing enrollment
	again, err := service.Enroll(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.ID, again.ID)
}

func TestEnrollUnpublishedCourse(t *testing.T) {
	ctx := context.Background()
	service, courses := setupEnrollmentService(t)

	c, err := courses.Create(ctx, course.CreateCourseParams{Title: "Draft", Slug: "draft"})
	require.NoError(t, err)

	_, err = service.Enroll(ctx, "u1", c.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound),
		"drafts must be indistinguishable from missing courses")

	_, err = service.Enroll(ctx, "u1", uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestUnenroll(t *testing.T) {
	ctx := context.Background()
	service, courses := setupEnrollmentService(t)
	c, _ := createPublishedCourse(t, courses, "go-basics", 0)

	_, err := service.Enroll(ctx, "u1", c.ID)
	require.NoError(t, err)

	require.NoError(t, service.Unenroll(ctx, "u1", c.ID))

	err = service.Unenroll(ctx, "u1", c.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestCompleteLesson(t *testing.T) {
	ctx := context.Background()
	service, courses := setupEnrollmentService(t)
	c, lessons := createPublishedCourse(t, courses, "go-basics", 3)

	_, err := service.Enroll(ctx, "u1", c.ID)
	require.NoError(t, err)

	require.NoError(t, service.CompleteLesson(ctx, "u1", lessons[0].ID))
	// completing twice is a no-op
	require.NoError(t, service.CompleteLesson(ctx, "u1", lessons[0].ID))
	require.NoError(t, service.CompleteLesson(ctx, "u1", lessons[1].ID))

	progress, err := service.ListProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 3, progress[0].TotalLessons)
	assert.Equal(t, 2, progress[0].CompletedLessons)
}

func TestCompleteLessonRequiresEnrollment(t *testing.T) {
	ctx := context.Background()
	service, courses := setupEnrollmentService(t)
	_, lessons := createPublishedCourse(t, courses, "go-basics", 1)

	err := service.CompleteLesson(ctx, "u1", lessons[0].ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeForbidden))

	err = service.CompleteLesson(ctx, "u1", uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestListProgressSkipsDeletedCourses(t *testing.T) {
	ctx := context.Background()
	service, courses := setupEnrollmentService(t)
	kept, _ := createPublishedCourse(t, courses, "kept", 1)
	removed, _ := createPublishedCourse(t, courses, "removed", 1)

	_, err := service.Enroll(ctx, "u1", kept.ID)
	require.NoError(t, err)
	_, err = service.Enroll(ctx, "u1", removed.ID)
	require.NoError(t, err)

	require.NoError(t, courses.Delete(ctx, removed.ID))

	progress, err := service.ListProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, kept.ID, progress[0].Course.ID)
}

func TestListProgressEmpty(t *testing.T) {
	ctx := context.Background()
	service, _ := setupEnrollmentService(t)

	progress, err := service.ListProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, progress)
}
