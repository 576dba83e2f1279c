package ports

import (
	"context"
	"time"
)

// NotificationTrigger describes when a local notification fires. Exactly one
// representation is populated: At for absolute-date platforms, Seconds plus
// ChannelID for platforms requiring channel-based relative triggers. Both
// must resolve to the same wall-clock instant.
type NotificationTrigger struct {
	At        time.Time
	Seconds   int
	ChannelID string
}

// NotificationRequest is one local notification to schedule.
type NotificationRequest struct {
	Title   string
	Body    string
	Sound   string
	Data    map[string]string
	Trigger NotificationTrigger
}

// NotificationGateway abstracts the device's OS notification subsystem, the
// only side-effectful dependency of the scheduling engine.
type NotificationGateway interface {
	// PermissionGranted reports whether the user allows local notifications,
	// prompting when the OS supports it.
	PermissionGranted(ctx context.Context) (bool, error)
	// CancelAll removes every notification previously scheduled by the app.
	CancelAll(ctx context.Context) error
	// Schedule queues one notification and returns its OS identifier.
	Schedule(ctx context.Context, req NotificationRequest) (string, error)
}
