package loginhistory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemRepository implements Repository using an in-memory slice of records.
// It enforces the same Migrate arbitration as the PostgreSQL implementation,
// which makes it suitable for tests and single-process deployments.
type InMemRepository struct {
	records []Record
	mu      sync.Mutex
}

// NewInMemRepository creates a new in-memory login history repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{}
}

// FindActiveByUser returns the user's active record
func (r *InMemRepository) FindActiveByUser(ctx context.Context, userID string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeByUserLocked(userID)
}

// FindActiveByDevice returns the device's active record
func (r *InMemRepository) FindActiveByDevice(ctx context.Context, deviceID string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeByDeviceLocked(deviceID)
}

// FindAllActive returns every record with no end time
func (r *InMemRepository) FindAllActive(ctx context.Context) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []Record
	for _, rec := range r.records {
		if rec.IsActive() {
			active = append(active, rec)
		}
	}
	slog.Debug("Found active login history records", "count", len(active))
	return active, nil
}

// FindByUser returns the user's full history, newest first
func (r *InMemRepository) FindByUser(ctx context.Context, userID string) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var history []Record
	for _, rec := range r.records {
		if rec.UserID == userID {
			history = append(history, rec)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].StartedAt.After(history[j].StartedAt)
	})
	return history, nil
}

// Migrate closes the user's active record and opens a new one for deviceID.
// The mutex makes the check-close-open sequence atomic, so of two concurrent
// claims on the same device exactly one wins and the other observes
// ErrDeviceBound.
func (r *InMemRepository) Migrate(ctx context.Context, userID, deviceID string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, err := r.activeByDeviceLocked(deviceID); err == nil && owner.UserID != userID {
		slog.Debug("Migrate rejected, device owned by another user", "deviceID", deviceID)
		return Record{}, ErrDeviceBound
	}

	now := time.Now().UTC()
	for i := range r.records {
		if r.records[i].UserID == userID && r.records[i].IsActive() {
			ended := now
			r.records[i].EndedAt = &ended
		}
	}

	rec := Record{
		ID:        uuid.New(),
		UserID:    userID,
		DeviceID:  deviceID,
		StartedAt: now,
	}
	r.records = append(r.records, rec)
	slog.Debug("Opened login history record", "userID", userID, "deviceID", deviceID)
	return rec, nil
}

// Release closes the user's active record without opening a new one
func (r *InMemRepository) Release(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for i := range r.records {
		if r.records[i].UserID == userID && r.records[i].IsActive() {
			ended := now
			r.records[i].EndedAt = &ended
		}
	}
	return nil
}

func (r *InMemRepository) activeByUserLocked(userID string) (Record, error) {
	for _, rec := range r.records {
		if rec.UserID == userID && rec.IsActive() {
			return rec, nil
		}
	}
	return Record{}, ErrRecordNotFound
}

func (r *InMemRepository) activeByDeviceLocked(deviceID string) (Record, error) {
	for _, rec := range r.records {
		if rec.DeviceID == deviceID && rec.IsActive() {
			return rec, nil
		}
	}
	return Record{}, ErrRecordNotFound
}
