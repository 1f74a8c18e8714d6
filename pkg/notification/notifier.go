package notification

// NoticeType identifies the kind of notice being sent
type NoticeType string

const (
	// NoticeDeviceMigrated is sent after an approved device change
	NoticeDeviceMigrated NoticeType = "device_migrated"
)

// NotificationData carries the recipient and content of a notice
type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address)
	Subject string            // Optional: subject for notices like email
	Body    string            // The content or message to send
	Data    map[string]string // Additional metadata
}

// Notifier delivers notices to users
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData) error
}
