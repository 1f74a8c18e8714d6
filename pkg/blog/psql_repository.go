package blog

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

// PostgresPostRepository implements PostRepository using PostgreSQL
type PostgresPostRepository struct {
	db DBTX
}

// NewPostgresPostRepository creates a new PostgreSQL post repository
func NewPostgresPostRepository(db DBTX) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

const postColumns = "id, title, slug, lexical, cover, status, author_id, published_at, created_at, updated_at"

func scanPost(row pgx.Row) (Post, error) {
	var post Post
	err := row.Scan(&post.ID, &post.Title, &post.Slug, &post.Lexical, &post.Cover,
		&post.Status, &post.AuthorID, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, fmt.Errorf("failed to scan post: %w", err)
	}
	return post, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreatePost stores a new post
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post Post) (Post, error) {
	query := `
		INSERT INTO posts (id, title, slug, lexical, cover, status, author_id, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + postColumns
	created, err := scanPost(r.db.QueryRow(ctx, query,
		post.ID, post.Title, post.Slug, post.Lexical, post.Cover, post.Status,
		post.AuthorID, post.PublishedAt, post.CreatedAt, post.UpdatedAt))
	if err != nil && isUniqueViolation(err) {
		return Post{}, ErrSlugTaken
	}
	return created, err
}

// GetPost retrieves a post by id
func (r *PostgresPostRepository) GetPost(ctx context.Context, id uuid.UUID) (Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.db.QueryRow(ctx, query, id))
}

// GetPostBySlug retrieves a post by slug
func (r *PostgresPostRepository) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE slug = $1`
	return scanPost(r.db.QueryRow(ctx, query, slug))
}

// FindPosts lists posts matching the query, newest first
func (r *PostgresPostRepository) FindPosts(ctx context.Context, query PostQuery) (PostPage, error) {
	page := PostPage{Offset: query.Offset, Limit: query.Limit}

	where := "TRUE"
	args := []interface{}{}
	if query.Status != "" {
		args = append(args, query.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if query.AuthorID != "" {
		args = append(args, query.AuthorID)
		where += fmt.Sprintf(" AND author_id = $%d", len(args))
	}

	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM posts WHERE "+where, args...).Scan(&page.TotalCount); err != nil {
		return page, fmt.Errorf("failed to count posts: %w", err)
	}

	listQuery := "SELECT " + postColumns + " FROM posts WHERE " + where + " ORDER BY created_at DESC"
	args = append(args, query.Offset)
	listQuery += fmt.Sprintf(" OFFSET $%d", len(args))
	if query.Limit > 0 {
		args = append(args, query.Limit)
		listQuery += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return page, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return page, err
		}
		page.Posts = append(page.Posts, post)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("failed to read posts: %w", err)
	}
	return page, nil
}

// UpdatePost replaces a stored post
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post Post) (Post, error) {
	query := `
		UPDATE posts
		SET title = $2, slug = $3, lexical = $4, cover = $5, status = $6,
			published_at = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + postColumns
	updated, err := scanPost(r.db.QueryRow(ctx, query,
		post.ID, post.Title, post.Slug, post.Lexical, post.Cover, post.Status,
		post.PublishedAt, post.UpdatedAt))
	if err != nil && isUniqueViolation(err) {
		return Post{}, ErrSlugTaken
	}
	return updated, err
}

// DeletePost removes a post
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}
