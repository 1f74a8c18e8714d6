package bookmark

import (
	"context"
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

// PostgresBookmarkRepository implements BookmarkRepository using PostgreSQL
type PostgresBookmarkRepository struct {
	db DBTX
}

// NewPostgresBookmarkRepository creates a new PostgreSQL bookmark repository
func NewPostgresBookmarkRepository(db DBTX) *PostgresBookmarkRepository {
	return &PostgresBookmarkRepository{db: db}
}

// CreateBookmark stores a bookmark, keeping the first creation time on repeat
func (r *PostgresBookmarkRepository) CreateBookmark(ctx context.Context, bookmark Bookmark) error {
	query := `
		INSERT INTO bookmarks (user_id, target_type, target_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, target_type, target_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, query,
		bookmark.UserID, bookmark.TargetType, bookmark.TargetID, bookmark.CreatedAt); err != nil {
		return fmt.Errorf("failed to create bookmark: %w", err)
	}
	return nil
}

// DeleteBookmark removes a bookmark
func (r *PostgresBookmarkRepository) DeleteBookmark(ctx context.Context, userID, targetType string, targetID uuid.UUID) error {
	query := `DELETE FROM bookmarks WHERE user_id = $1 AND target_type = $2 AND target_id = $3`
	tag, err := r.db.Exec(ctx, query, userID, targetType, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}

// FindBookmarksByUser lists a user's bookmarks, newest first
func (r *PostgresBookmarkRepository) FindBookmarksByUser(ctx context.Context, userID string) ([]Bookmark, error) {
	query := `
		SELECT user_id, target_type, target_id, created_at
		FROM bookmarks WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.UserID, &b.TargetType, &b.TargetID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookmarks: %w", err)
	}
	return bookmarks, nil
}
