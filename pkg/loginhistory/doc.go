// Package loginhistory is the durable record of device sessions per user.
//
// Each user accumulates append-mostly Records; the record with a nil EndedAt
// is the user's active session. At most one record per user is active at a
// time. Migrate preserves that invariant by closing the old record and
// opening the new one in a single transactional unit.
//
// # Basic Usage
//
//	repo := loginhistory.NewPostgresRepository(pool)
//
//	// Move a user's active session to a new device
//	rec, err := repo.Migrate(ctx, userID, deviceID)
//	if errors.Is(err, loginhistory.ErrDeviceBound) {
//		// device is actively bound to a different user; nothing changed
//	}
//
//	// Warm a session cache
//	active, err := repo.FindAllActive(ctx)
//
// The store is the single source of truth for device ownership: Migrate
// checks the device's active record inside the same transaction that writes,
// so two users racing to claim one device resolve to exactly one winner.
//
// # Related Packages
//
//   - pkg/devicebind - session cache and binding policy built on this store
package loginhistory
