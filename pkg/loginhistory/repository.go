package loginhistory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Record is one durable device-session entry for a user. A nil EndedAt is
// the only marker of "currently active"; there is no separate status flag.
type Record struct {
	ID        uuid.UUID  `json:"id"`
	UserID    string     `json:"user_id"`
	DeviceID  string     `json:"device_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// IsActive reports whether the record is the active session for its user
func (r Record) IsActive() bool {
	return r.EndedAt == nil
}

var (
	// ErrRecordNotFound is returned when no matching record exists
	ErrRecordNotFound = errors.New("login history record not found")
	// ErrDeviceBound is returned by Migrate when the device's active record
	// belongs to a different user. The store arbitrates device ownership, so
	// concurrent claims on the same device resolve to exactly one winner.
	ErrDeviceBound = errors.New("device is bound to another user")
)

// Repository defines the interface for login history storage operations
type Repository interface {
	// FindActiveByUser returns the user's active record, or ErrRecordNotFound
	FindActiveByUser(ctx context.Context, userID string) (Record, error)
	// FindActiveByDevice returns the device's active record, or ErrRecordNotFound
	FindActiveByDevice(ctx context.Context, deviceID string) (Record, error)
	// FindAllActive returns every active record, used for cache warm-up
	FindAllActive(ctx context.Context) ([]Record, error)
	// FindByUser returns the user's full history, newest first
	FindByUser(ctx context.Context, userID string) ([]Record, error)

	// Migrate atomically moves the user's active session to deviceID:
	// it fails with ErrDeviceBound if the device is actively bound to a
	// different user, otherwise closes the user's current active record
	// (if any) and opens a new one. The whole operation is a single
	// transactional unit.
	Migrate(ctx context.Context, userID, deviceID string) (Record, error)

	// Release closes the user's active record without opening a new one
	Release(ctx context.Context, userID string) error
}
