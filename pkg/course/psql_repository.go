package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresCourseRepository implements CourseRepository using PostgreSQL
type PostgresCourseRepository struct {
	db DBTX
}

// NewPostgresCourseRepository creates a new PostgreSQL course repository
func NewPostgresCourseRepository(db DBTX) *PostgresCourseRepository {
	return &PostgresCourseRepository{db: db}
}

const courseColumns = "id, title, slug, description, cover, level, status, created_at, updated_at"
const lessonColumns = "id, course_id, title, slug, lexical, video_url, trial, position, created_at, updated_at"

func scanCourse(row pgx.Row) (Course, error) {
	var course Course
	err := row.Scan(&course.ID, &course.Title, &course.Slug, &course.Description,
		&course.Cover, &course.Level, &course.Status, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, fmt.Errorf("failed to scan course: %w", err)
	}
	return course, nil
}

func scanLesson(row pgx.Row) (Lesson, error) {
	var lesson Lesson
	err := row.Scan(&lesson.ID, &lesson.CourseID, &lesson.Title, &lesson.Slug,
		&lesson.Lexical, &lesson.VideoURL, &lesson.Trial, &lesson.Position,
		&lesson.CreatedAt, &lesson.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lesson{}, ErrLessonNotFound
		}
		return Lesson{}, fmt.Errorf("failed to scan lesson: %w", err)
	}
	return lesson, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateCourse stores a new course
func (r *PostgresCourseRepository) CreateCourse(ctx context.Context, course Course) (Course, error) {
	query := `
		INSERT INTO courses (id, title, slug, description, cover, level, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + courseColumns
	created, err := scanCourse(r.db.QueryRow(ctx, query,
		course.ID, course.Title, course.Slug, course.Description, course.Cover,
		course.Level, course.Status, course.CreatedAt, course.UpdatedAt))
	if err != nil && isUniqueViolation(err) {
		return Course{}, ErrSlugTaken
	}
	return created, err
}

// GetCourse retrieves a course by id
func (r *PostgresCourseRepository) GetCourse(ctx context.Context, id uuid.UUID) (Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.db.QueryRow(ctx, query, id))
}

// GetCourseBySlug retrieves a course by slug
func (r *PostgresCourseRepository) GetCourseBySlug(ctx context.Context, slug string) (Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = $1`
	return scanCourse(r.db.QueryRow(ctx, query, slug))
}

// FindCourses lists courses matching the query, newest first
func (r *PostgresCourseRepository) FindCourses(ctx context.Context, query CourseQuery) (CoursePage, error) {
	page := CoursePage{Offset: query.Offset, Limit: query.Limit}

	where := "TRUE"
	args := []interface{}{}
	if query.Status != "" {
		args = append(args, query.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM courses WHERE "+where, args...).Scan(&page.TotalCount); err != nil {
		return page, fmt.Errorf("failed to count courses: %w", err)
	}

	listQuery := "SELECT " + courseColumns + " FROM courses WHERE " + where + " ORDER BY created_at DESC"
	args = append(args, query.Offset)
	listQuery += fmt.Sprintf(" OFFSET $%d", len(args))
	if query.Limit > 0 {
		args = append(args, query.Limit)
		listQuery += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return page, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return page, err
		}
		page.Courses = append(page.Courses, course)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("failed to read courses: %w", err)
	}
	return page, nil
}

// UpdateCourse replaces a stored course
func (r *PostgresCourseRepository) UpdateCourse(ctx context.Context, course Course) (Course, error) {
	query := `
		UPDATE courses
		SET title = $2, slug = $3, description = $4, cover = $5, level = $6, status = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + courseColumns
	updated, err := scanCourse(r.db.QueryRow(ctx, query,
		course.ID, course.Title, course.Slug, course.Description, course.Cover,
		course.Level, course.Status, course.UpdatedAt))
	if err != nil && isUniqueViolation(err) {
		return Course{}, ErrSlugTaken
	}
	return updated, err
}

// DeleteCourse removes a course. Lessons are removed by the schema's cascade.
func (r *PostgresCourseRepository) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// CreateLesson stores a new lesson
func (r *PostgresCourseRepository) CreateLesson(ctx context.Context, lesson Lesson) (Lesson, error) {
	query := `
		INSERT INTO lessons (id, course_id, title, slug, lexical, video_url, trial, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + lessonColumns
	created, err := scanLesson(r.db.QueryRow(ctx, query,
		lesson.ID, lesson.CourseID, lesson.Title, lesson.Slug, lesson.Lexical,
		lesson.VideoURL, lesson.Trial, lesson.Position, lesson.CreatedAt, lesson.UpdatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Lesson{}, ErrCourseNotFound
		}
	}
	return created, err
}

// GetLesson retrieves a lesson by id
func (r *PostgresCourseRepository) GetLesson(ctx context.Context, id uuid.UUID) (Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	return scanLesson(r.db.QueryRow(ctx, query, id))
}

// FindLessons lists a course's lessons ordered by position
func (r *PostgresCourseRepository) FindLessons(ctx context.Context, courseID uuid.UUID) ([]Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE course_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lessons: %w", err)
	}
	return lessons, nil
}

// UpdateLesson replaces a stored lesson
func (r *PostgresCourseRepository) UpdateLesson(ctx context.Context, lesson Lesson) (Lesson, error) {
	query := `
		UPDATE lessons
		SET title = $2, slug = $3, lexical = $4, video_url = $5, trial = $6, position = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + lessonColumns
	return scanLesson(r.db.QueryRow(ctx, query,
		lesson.ID, lesson.Title, lesson.Slug, lesson.Lexical, lesson.VideoURL,
		lesson.Trial, lesson.Position, lesson.UpdatedAt))
}

// DeleteLesson removes a lesson
func (r *PostgresCourseRepository) DeleteLesson(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// ReorderLessons assigns positions following the given id order. Lessons
// missing from the list are pushed after the listed ones keeping their
// relative order.
func (r *PostgresCourseRepository) ReorderLessons(ctx context.Context, courseID uuid.UUID, orderedIDs []uuid.UUID) error {
	query := `
		WITH ordered AS (
			SELECT id, ordinality FROM unnest($2::uuid[]) WITH ORDINALITY AS o(id, ordinality)
		), ranked AS (
			SELECT l.id,
				ROW_NUMBER() OVER (ORDER BY o.ordinality NULLS LAST, l.position) AS new_position
			FROM lessons l
			LEFT JOIN ordered o ON o.id = l.id
			WHERE l.course_id = $1
		)
		UPDATE lessons SET position = ranked.new_position
		FROM ranked WHERE lessons.id = ranked.id`
	tag, err := r.db.Exec(ctx, query, courseID, orderedIDs)
	if err != nil {
		return fmt.Errorf("failed to reorder lessons: %w", err)
	}
	if tag.RowsAffected() == 0 && len(orderedIDs) > 0 {
		return ErrLessonNotFound
	}
	return nil
}

// MaxLessonPosition returns the highest lesson position in a course
func (r *PostgresCourseRepository) MaxLessonPosition(ctx context.Context, courseID uuid.UUID) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(position), 0) FROM lessons WHERE course_id = $1`
	if err := r.db.QueryRow(ctx, query, courseID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max lesson position: %w", err)
	}
	return max, nil
}
