package devicebind

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ogrenly/platform/pkg/loginhistory"
)

// SessionCache is the process-local projection of active device bindings.
// It is advisory only: on any disagreement the login history store wins and
// the cache is corrected. Entries are rebuilt wholesale by EnsureWarm and
// kept current by Bind/Unbind on every store write.
type SessionCache struct {
	store loginhistory.Repository

	mu       sync.RWMutex
	byUser   map[string]string // userID -> deviceID
	byDevice map[string]string // deviceID -> userID
	warmed   bool
}

// NewSessionCache creates a cold session cache backed by the given store
func NewSessionCache(store loginhistory.Repository) *SessionCache {
	return &SessionCache{
		store:    store,
		byUser:   make(map[string]string),
		byDevice: make(map[string]string),
	}
}

// LookupByUser returns the active device for a user. A miss is not proof of
// absence; callers must fall back to the store.
func (c *SessionCache) LookupByUser(userID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	deviceID, ok := c.byUser[userID]
	return deviceID, ok
}

// LookupByDevice returns the user a device is actively bound to
func (c *SessionCache) LookupByDevice(deviceID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	userID, ok := c.byDevice[deviceID]
	return userID, ok
}

// Bind inserts the (userID, deviceID) pair, overwriting any prior entry for
// that user and any prior claim on that device.
func (c *SessionCache) Bind(userID, deviceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindLocked(userID, deviceID)
}

// Unbind removes the user's entry, if any
func (c *SessionCache) Unbind(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if deviceID, ok := c.byUser[userID]; ok {
		delete(c.byDevice, deviceID)
		delete(c.byUser, userID)
	}
}

// EnsureWarm populates the cache from the store's active records if it has
// never been populated. Safe to call repeatedly and concurrently: the write
// lock is held across the load, so a cold cache triggers exactly one store
// scan and late callers wait for it. A store failure leaves the cache cold
// so a later call can retry.
func (c *SessionCache) EnsureWarm(ctx context.Context) error {
	c.mu.RLock()
	warmed := c.warmed
	c.mu.RUnlock()
	if warmed {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warmed {
		return nil
	}

	records, err := c.store.FindAllActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to warm session cache: %w", err)
	}
	for _, rec := range records {
		c.bindLocked(rec.UserID, rec.DeviceID)
	}
	c.warmed = true
	slog.Info("Session cache warmed", "bindings", len(records))
	return nil
}

// Reset clears all entries and marks the cache cold again
func (c *SessionCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byUser = make(map[string]string)
	c.byDevice = make(map[string]string)
	c.warmed = false
}

func (c *SessionCache) bindLocked(userID, deviceID string) {
	if old, ok := c.byUser[userID]; ok {
		delete(c.byDevice, old)
	}
	if old, ok := c.byDevice[deviceID]; ok {
		delete(c.byUser, old)
	}
	c.byUser[userID] = deviceID
	c.byDevice[deviceID] = userID
}
