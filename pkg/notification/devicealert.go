package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ogrenly/platform/pkg/iam"
)

// DeviceAlert sends a "new device added to your account" notice after an
// approved device migration. It satisfies the device binding service's
// notifier hook.
type DeviceAlert struct {
	notifier Notifier
	users    *iam.UserService
}

// NewDeviceAlert creates a device migration alerter
func NewDeviceAlert(notifier Notifier, users *iam.UserService) *DeviceAlert {
	return &DeviceAlert{notifier: notifier, users: users}
}

// DeviceMigrated notifies the user that a new device now holds their
// session. Delivery is best-effort: failures are logged, never propagated.
func (a *DeviceAlert) DeviceMigrated(ctx context.Context, userID, deviceID string) {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		slog.Warn("Skipping device alert, user lookup failed", "userID", userID, "err", err)
		return
	}
	if user.Email == "" {
		slog.Debug("Skipping device alert, user has no email", "userID", userID)
		return
	}

	notification := NotificationData{
		To:      user.Email,
		Subject: "New device added to your account",
		Body: fmt.Sprintf("Hi %s,\n\nYour account was just moved to a new device. "+
			"If this was not you, contact support immediately.", user.Nickname),
		Data: map[string]string{"device_id": deviceID},
	}
	if err := a.notifier.Send(NoticeDeviceMigrated, notification); err != nil {
		slog.Warn("Failed to send device alert", "userID", userID, "err", err)
	}
}
