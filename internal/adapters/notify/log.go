package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/hogarhub/core/internal/infrastructure/logger"
	"github.com/hogarhub/core/internal/ports"
)

// LogGateway records schedule calls to the application log instead of an OS
// queue. Used by the CLI, where there is no notification subsystem to drive.
type LogGateway struct {
	logger *logger.Logger
}

// NewLogGateway creates a gateway writing to the given logger
func NewLogGateway(appLogger *logger.Logger) *LogGateway {
	return &LogGateway{logger: appLogger.WithComponent("notify")}
}

// PermissionGranted implements ports.NotificationGateway
func (g *LogGateway) PermissionGranted(ctx context.Context) (bool, error) {
	return true, nil
}

// CancelAll implements ports.NotificationGateway
func (g *LogGateway) CancelAll(ctx context.Context) error {
	g.logger.Debugw("cancelled all scheduled notifications")
	return nil
}

// Schedule implements ports.NotificationGateway
func (g *LogGateway) Schedule(ctx context.Context, req ports.NotificationRequest) (string, error) {
	id := uuid.NewString()
	g.logger.Infow("notification scheduled",
		"identifier", id,
		"title", req.Title,
		"trigger_at", req.Trigger.At,
		"trigger_seconds", req.Trigger.Seconds,
		"channel_id", req.Trigger.ChannelID,
	)
	return id, nil
}
