package iam

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogrenly/platform/pkg/client"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db DBTX
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = "id, nickname, email, email_verified, image, role, created_at, updated_at, deleted_at"

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Nickname, &user.Email, &user.EmailVerified,
		&user.Image, &user.Role, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by id
func (r *PostgresUserRepository) GetUser(ctx context.Context, id string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// CreateUser creates a new user; re-creating an existing id returns the
// existing row unchanged.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	query := `
		INSERT INTO users (id, nickname, email, email_verified, image, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (id) DO UPDATE SET updated_at = users.updated_at
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query,
		params.ID, params.Nickname, params.Email, params.EmailVerified, params.Image, client.RoleStudent))
}

// FindUsers lists users matching the query, ordered by creation time
func (r *PostgresUserRepository) FindUsers(ctx context.Context, query UserQuery) (UserPage, error) {
	page := UserPage{Offset: query.Offset, Limit: query.Limit}

	where := "deleted_at IS NULL"
	args := []interface{}{}
	if query.Role != "" {
		args = append(args, query.Role)
		where += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if query.Search != "" {
		args = append(args, "%"+query.Search+"%")
		where += fmt.Sprintf(" AND (nickname ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	countQuery := "SELECT count(*) FROM users WHERE " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&page.TotalCount); err != nil {
		return page, fmt.Errorf("failed to count users: %w", err)
	}

	listQuery := "SELECT " + userColumns + " FROM users WHERE " + where + " ORDER BY created_at"
	args = append(args, query.Offset)
	listQuery += fmt.Sprintf(" OFFSET $%d", len(args))
	if query.Limit > 0 {
		args = append(args, query.Limit)
		listQuery += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return page, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return page, err
		}
		page.Users = append(page.Users, user)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("failed to read users: %w", err)
	}
	return page, nil
}

// UpdateUserRole sets a user's role
func (r *PostgresUserRepository) UpdateUserRole(ctx context.Context, id, role string) (User, error) {
	query := `
		UPDATE users SET role = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, role))
}
