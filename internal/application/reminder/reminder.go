// Package reminder derives local notification times from calendar events and
// keeps the device's notification queue consistent with the current event
// set.
package reminder

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/hogarhub/core/internal/domain/entities"
	"github.com/hogarhub/core/internal/infrastructure/logger"
	"github.com/hogarhub/core/internal/ports"
)

const (
	// NotificationSource tags scheduled notifications as calendar-born.
	NotificationSource = "calendar-event"
	// MinTriggerWindow discards triggers the OS would fire immediately or
	// reject outright.
	MinTriggerWindow = 5 * time.Second

	// PlatformAndroid schedules through relative-seconds channel triggers.
	PlatformAndroid = "android"
)

var startTimePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseStartTime validates an HH:mm value. ok is false for anything outside
// a 24-hour clock.
func ParseStartTime(value string) (hours, minutes int, ok bool) {
	match := startTimePattern.FindStringSubmatch(value)
	if match == nil {
		return 0, 0, false
	}
	hours, _ = strconv.Atoi(match[1])
	minutes, _ = strconv.Atoi(match[2])
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, 0, false
	}
	return hours, minutes, true
}

// EventStart combines the event date and start time in the given location.
// ok is false when either part is missing or invalid: without a valid start
// time there is no trigger instant to compute.
func EventStart(date, startTime string, loc *time.Location) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	hours, minutes, ok := ParseStartTime(startTime)
	if !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute), true
}

// Details is a computed reminder: when to fire and what to say.
type Details struct {
	TriggerAt time.Time
	Body      string
}

// BuildDetails computes the reminder for one event, evaluated at now (whose
// location is taken as the device's local zone). Returns nil when the event
// carries no reminder: lead minutes unset (zero is a valid "at start" value,
// nil is not), start time absent or malformed, or the event already started.
// A trigger that slipped into the past while the event is still ahead falls
// back to the event start, notifying on time rather than silently dropping.
func BuildDetails(event entities.CalendarEvent, now time.Time) *Details {
	if event.NotifyBeforeMinutes == nil {
		return nil
	}
	lead := *event.NotifyBeforeMinutes
	if lead < 0 {
		lead = 0
	}

	start, ok := EventStart(event.Date, event.StartTime, now.Location())
	if !ok {
		return nil
	}

	triggerAt := start.Add(-time.Duration(lead) * time.Minute)
	if !triggerAt.After(now) {
		if !start.After(now) {
			return nil
		}
		triggerAt = start
	}

	body := event.Description
	if body == "" {
		if lead > 0 && event.StartTime != "" {
			body = fmt.Sprintf("Tu evento comienza a las %s hrs.", event.StartTime)
		} else {
			body = "Es hora de tu evento programado."
		}
	}

	return &Details{TriggerAt: triggerAt, Body: body}
}

// Engine mirrors the event set into the OS notification queue.
type Engine struct {
	gateway   ports.NotificationGateway
	logger    *logger.Logger
	platform  string
	channelID string
	sound     string
	now       func() time.Time
}

// NewEngine creates an engine for the given platform and channel.
func NewEngine(gateway ports.NotificationGateway, platform, channelID, sound string, appLogger *logger.Logger) *Engine {
	return &Engine{
		gateway:   gateway,
		logger:    appLogger.WithComponent("reminder"),
		platform:  platform,
		channelID: channelID,
		sound:     sound,
		now:       time.Now,
	}
}

// WithClock replaces the engine clock, for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Sync replaces the entire scheduled set: cancel everything, then recompute
// and schedule a reminder for every event that still warrants one. A full
// replace instead of a diff trades redundant OS calls for correctness
// simplicity; event lists are tens of entries, not thousands. Permission
// denial aborts the whole set silently; individual schedule failures are
// logged and skipped.
func (e *Engine) Sync(ctx context.Context, events []entities.CalendarEvent) error {
	if err := e.gateway.CancelAll(ctx); err != nil {
		e.logger.Warnw("cancel scheduled notifications failed", "error", err.Error())
		return err
	}
	if len(events) == 0 {
		return nil
	}

	granted, err := e.gateway.PermissionGranted(ctx)
	if err != nil {
		e.logger.Warnw("notification permission check failed", "error", err.Error())
		return nil
	}
	if !granted {
		e.logger.Infow("notification permission not granted, skipping reminders")
		return nil
	}

	now := e.now()
	type pending struct {
		event   entities.CalendarEvent
		details *Details
	}
	var upcoming []pending
	for _, event := range events {
		details := BuildDetails(event, now)
		if details == nil {
			continue
		}
		if details.TriggerAt.Sub(now) <= MinTriggerWindow {
			continue
		}
		upcoming = append(upcoming, pending{event: event, details: details})
	}
	if len(upcoming) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	for _, item := range upcoming {
		wg.Add(1)
		go func(item pending) {
			defer wg.Done()
			e.schedule(ctx, item.event, item.details)
		}(item)
	}
	wg.Wait()
	return nil
}

// ScheduleEvent schedules the reminder for one event at creation time.
// Unlike Sync it reports permission denial, so the caller can show its
// one-time alert.
func (e *Engine) ScheduleEvent(ctx context.Context, event entities.CalendarEvent) (string, error) {
	details := BuildDetails(event, e.now())
	if details == nil {
		return "", nil
	}

	granted, err := e.gateway.PermissionGranted(ctx)
	if err != nil {
		return "", fmt.Errorf("notification permission check: %w", err)
	}
	if !granted {
		return "", entities.ErrNoPermission
	}

	if details.TriggerAt.Sub(e.now()) <= MinTriggerWindow {
		return "", nil
	}
	return e.schedule(ctx, event, details), nil
}

func (e *Engine) schedule(ctx context.Context, event entities.CalendarEvent, details *Details) string {
	req := ports.NotificationRequest{
		Title: event.Title,
		Body:  details.Body,
		Sound: e.sound,
		Data: map[string]string{
			"source":    NotificationSource,
			"eventId":   event.ID,
			"triggerAt": details.TriggerAt.Format(time.RFC3339),
		},
		Trigger: e.triggerFor(details.TriggerAt),
	}

	identifier, err := e.gateway.Schedule(ctx, req)
	if err != nil {
		e.logger.Warnw("schedule notification failed", "event_id", event.ID, "error", err.Error())
		return ""
	}
	e.logger.Debugw("notification scheduled",
		"event_id", event.ID,
		"identifier", identifier,
		"trigger_at", details.TriggerAt.Format(time.RFC3339),
	)
	return identifier
}

// triggerFor resolves the platform-specific trigger shape. Both shapes point
// at the same wall-clock instant.
func (e *Engine) triggerFor(at time.Time) ports.NotificationTrigger {
	if e.platform == PlatformAndroid {
		seconds := int((at.Sub(e.now()) + time.Second - 1) / time.Second)
		return ports.NotificationTrigger{Seconds: seconds, ChannelID: e.channelID}
	}
	return ports.NotificationTrigger{At: at}
}
