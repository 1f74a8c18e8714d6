package course

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/filestorage"
)

func setupCourseService(t *testing.T) *CourseService {
	t.Helper()
	return NewCourseService(NewInMemCourseRepository(), filestorage.NewInMemStorage())
}

func addLessons(t *testing.T, service *CourseService, courseID uuid.UUID, titles ...string) []Lesson {
	t.Helper()
	lessons := make([]Lesson, 0, len(titles))
	for _, title := range titles {
		lesson, err := service.AddLesson(context.Background(), CreateLessonParams{
			CourseID: courseID,
			Title:    title,
		})
		require.NoError(t, err)
		lessons = append(lessons, lesson)
	}
	return lessons
}

func TestCreateCourse(t *testing.T) {
	ctx := context.Background()
	service := setupCourseService(t)

	c, err := service.Create(ctx, CreateCourseParams{
		Title:       "Go from Scratch",
		Slug:        "go-from-scratch",
		Description: "An introduction",
		Level:       LevelBeginner,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, c.Status)
	assert.Equal(t, LevelBeginner, c.Level)

	_, err = service.Create(ctx, CreateCourseParams{Title: "Dup", Slug: "go-from-scratch"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConflict))
}

func TestAddLessonAssignsPositions(t *testing.T) {
	ctx := context.Background()
	service := setupCourseService(t)
	c, err := service.Create(ctx, CreateCourseParams{Title: "Go", Slug: "go"})
	require.NoError(t, err)

	added := addLessons(t, service, c.ID, "Intro", "Types", "Slices")
	assert.Equal(t, 1, added[0].Position)
	assert.Equal(t, 3, added[2].Position)

	lessons, err := service.Lessons(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, "Intro", lessons[0].Title)
	assert.Equal(t, "Slices", lessons[2].Title)
}

func TestAddLessonUnknownCourse(t *testing.T) {
	ctx := context.Background()
	service := setupCourseService(t)

	_, err := service.AddLesson(ctx, CreateLessonParams{CourseID: uuid.New(), Title: "Orphan"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestReorderLessons(t *testing.T) {
	ctx := context.Background()
	service := setupCourseService(t)
	c, err := service.Create(ctx, CreateCourseParams{Title: "Go", Slug: "go"})
	require.NoError(t, err)
	added := addLessons(t, service, c.ID, "A", "B", "C", "D")

	// move D to the front, keep B ahead of A; C is unlisted and trails
	reordered, err := service.ReorderLessons(ctx, c.ID, []uuid.UUID{
		added[3].ID, added[1].ID, added[0].ID,
	})
	require.NoError(t, err)
	require.Len(t, reordered, 4)
	assert.Equal(t, "D", reordered[0].Title)
	assert.Equal(t, "B", reordered[1].Title)
	assert.Equal(t, "A", reordered[2].Title)
	assert.Equal(t, "C", reordered[3].Title, "unlisted lessons keep their place at the end")
	for i, lesson := range reordered {
		assert.Equal(t, i+1, lesson.Position)
	}
}

func TestReorderLessonsRejectsForeignLesson(t *testing.T) {
	ctx := context.Background()
	service := setupCourseService(t)
	c, err := service.Create(ctx, CreateCourseParams{Title: "Go", Slug: "go"})
	require.NoError(t, err)
	other, err := service.Create(ctx, CreateCourseParams{Title: "Rustlings", Slug: "rust"})
	require.NoError(t, err)
	addLessons(t, service, c.ID, "A")
	foreign := addLessons(t, service, other.ID, "X")

	_, err = service.ReorderLessons(ctx, c.ID, []uuid.UUID{foreign[0].ID})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestDeleteCourseRemovesLessons(t *testing.T) {
	ctx := context.Background()
	service := setupCourseService(t)
	c, err := service.Create(ctx, CreateCourseParams{Title: "Go", Slug: "go"})
	require.NoError(t, err)
	added := addLessons(t, service, c.ID, "A", "B")

	require.NoError(t, service.Delete(ctx, c.ID))
	_, err = service.Get(ctx, c.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	_, err = service.GetLesson(ctx, added[0].ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestPublishCourse(t *testing.T) {
	ctx := context.Background()
	service := setupCourseService(t)
	c, err := service.Create(ctx, CreateCourseParams{Title: "Go", Slug: "go"})
	require.NoError(t, err)

	published, err := service.Publish(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, published.Status)

	again, err := service.Publish(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, published.UpdatedAt, again.UpdatedAt, "publishing twice is a no-op")
}
