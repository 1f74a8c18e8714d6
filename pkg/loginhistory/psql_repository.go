package loginhistory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
// It needs a pool (not just a connection) because Migrate runs a transaction.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL login history repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const recordColumns = "id, user_id, device_id, started_at, ended_at"

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.DeviceID, &rec.StartedAt, &rec.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("failed to scan login history record: %w", err)
	}
	return rec, nil
}

// FindActiveByUser returns the user's active record
func (r *PostgresRepository) FindActiveByUser(ctx context.Context, userID string) (Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM user_login_history
		WHERE user_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`
	return scanRecord(r.pool.QueryRow(ctx, query, userID))
}

// FindActiveByDevice returns the device's active record
func (r *PostgresRepository) FindActiveByDevice(ctx context.Context, deviceID string) (Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM user_login_history
		WHERE device_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`
	return scanRecord(r.pool.QueryRow(ctx, query, deviceID))
}

// FindAllActive returns every active record, used for cache warm-up
func (r *PostgresRepository) FindAllActive(ctx context.Context) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM user_login_history
		WHERE ended_at IS NULL
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active login history records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active login history records: %w", err)
	}
	return records, nil
}

// FindByUser returns the user's full history, newest first
func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM user_login_history
		WHERE user_id = $1
		ORDER BY started_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query login history for user: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read login history for user: %w", err)
	}
	return records, nil
}

// Migrate closes the user's active record and opens a new one for deviceID
// inside a single transaction. The device's active record is locked with
// FOR UPDATE first, so two concurrent claims on the same device serialize
// here and the loser observes the winner's committed record. When no active
// record exists yet there is no row to lock, and racing first claims are
// arbitrated by the active-device unique index instead: the loser's insert
// fails once the winner commits.
func (r *PostgresRepository) Migrate(ctx context.Context, userID, deviceID string) (Record, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("failed to begin migrate transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID string
	err = tx.QueryRow(ctx, `
		SELECT user_id
		FROM user_login_history
		WHERE device_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
		FOR UPDATE
	`, deviceID).Scan(&ownerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("failed to check device owner: %w", err)
	}
	if err == nil && ownerID != userID {
		slog.Debug("Migrate rejected, device owned by another user", "deviceID", deviceID)
		return Record{}, ErrDeviceBound
	}

	now := time.Now().UTC()
	_, err = tx.Exec(ctx, `
		UPDATE user_login_history
		SET ended_at = $2
		WHERE user_id = $1 AND ended_at IS NULL
	`, userID, now)
	if err != nil {
		return Record{}, fmt.Errorf("failed to close active record: %w", err)
	}

	rec := Record{
		ID:        uuid.New(),
		UserID:    userID,
		DeviceID:  deviceID,
		StartedAt: now,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO user_login_history (id, user_id, device_id, started_at, ended_at)
		VALUES ($1, $2, $3, $4, NULL)
	`, rec.ID, rec.UserID, rec.DeviceID, rec.StartedAt)
	if err != nil {
		if isActiveDeviceViolation(err) {
			slog.Debug("Migrate lost first-claim race for device", "deviceID", deviceID)
			return Record{}, ErrDeviceBound
		}
		return Record{}, fmt.Errorf("failed to open login history record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Record{}, fmt.Errorf("failed to commit migrate transaction: %w", err)
	}
	return rec, nil
}

func isActiveDeviceViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" &&
		pgErr.ConstraintName == "user_login_history_active_device"
}

// Release closes the user's active record without opening a new one
func (r *PostgresRepository) Release(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE user_login_history
		SET ended_at = $2
		WHERE user_id = $1 AND ended_at IS NULL
	`, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to release active record: %w", err)
	}
	return nil
}
