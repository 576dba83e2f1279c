package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hogarhub/core/internal/application/reminder"
	"github.com/hogarhub/core/internal/domain/entities"
	"github.com/hogarhub/core/internal/infrastructure/api"
	"github.com/hogarhub/core/internal/infrastructure/logger"
	"github.com/hogarhub/core/internal/ports"
)

// CalendarService keeps the event list and drives the reminder engine:
// every successful mutation or fetch resynchronizes the scheduled local
// notifications against the full event set.
type CalendarService struct {
	client   *api.Client
	engine   *reminder.Engine
	validate *validator.Validate
	logger   *logger.Logger

	mu     sync.Mutex
	events []entities.CalendarEvent
}

// NewCalendarService creates a new calendar service
func NewCalendarService(client *api.Client, engine *reminder.Engine, appLogger *logger.Logger) *CalendarService {
	return &CalendarService{
		client:   client,
		engine:   engine,
		validate: validator.New(),
		logger:   appLogger.WithComponent("calendar"),
	}
}

// Events returns a copy of the current event list
func (s *CalendarService) Events() []entities.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.CalendarEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Fetch loads all events and resynchronizes reminders
func (s *CalendarService) Fetch(ctx context.Context) ([]entities.CalendarEvent, error) {
	data, err := s.client.Get(ctx, s.client.Routes().Calendar(""))
	if err != nil {
		return nil, err
	}

	var decoded []entities.CalendarEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode calendar events: %w", err)
	}

	events := decoded[:0:0]
	for _, event := range decoded {
		if event.ID != "" {
			events = append(events, event)
		}
	}

	s.mu.Lock()
	s.events = events
	s.mu.Unlock()

	s.resync(ctx)
	return s.Events(), nil
}

// Create stores a new event. When the event carries a reminder it is also
// scheduled immediately so the alert fires even before the next full sync;
// a denied notification permission is reported but does not fail the create.
func (s *CalendarService) Create(ctx context.Context, req ports.CreateEventRequest) (entities.CalendarEvent, error) {
	if err := s.validate.Struct(req); err != nil {
		return entities.CalendarEvent{}, fmt.Errorf("invalid event: %w", err)
	}
	if req.StartTime != "" {
		if _, _, ok := reminder.ParseStartTime(req.StartTime); !ok {
			return entities.CalendarEvent{}, fmt.Errorf("invalid event: startTime %q is not HH:mm", req.StartTime)
		}
	}

	data, err := s.client.Post(ctx, s.client.Routes().Calendar(""), map[string]any{"data": req})
	if err != nil {
		return entities.CalendarEvent{}, err
	}

	var event entities.CalendarEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return entities.CalendarEvent{}, fmt.Errorf("decode created event: %w", err)
	}
	if event.ID == "" {
		return entities.CalendarEvent{}, fmt.Errorf("create event: %w", entities.ErrMissingID)
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()

	if event.NotifyBeforeMinutes != nil {
		if _, err := s.engine.ScheduleEvent(ctx, event); err != nil {
			if errors.Is(err, entities.ErrNoPermission) {
				s.logger.Warnw("reminder not scheduled, notification permission denied", "event_id", event.ID)
			} else {
				s.logger.Warnw("schedule reminder failed", "event_id", event.ID, "error", err.Error())
			}
		}
	}
	s.resync(ctx)

	return event, nil
}

// Update replaces an event's fields and resynchronizes reminders
func (s *CalendarService) Update(ctx context.Context, eventID string, req ports.CreateEventRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	data, err := s.client.Put(ctx, s.client.Routes().CalendarEvent(eventID), map[string]any{"data": req})
	if err != nil {
		return err
	}

	var updated entities.CalendarEvent
	if err := json.Unmarshal(data, &updated); err != nil || updated.ID == "" {
		// Server did not echo the event back; rebuild it from the request.
		updated = entities.CalendarEvent{
			ID:                  eventID,
			Title:               req.Title,
			Description:         req.Description,
			Date:                req.Date,
			StartTime:           req.StartTime,
			NotifyBeforeMinutes: req.NotifyBeforeMinutes,
		}
	}

	s.mu.Lock()
	for i := range s.events {
		if s.events[i].ID == eventID {
			s.events[i] = updated
			break
		}
	}
	s.mu.Unlock()

	s.resync(ctx)
	return nil
}

// Delete removes an event and resynchronizes reminders so its pending
// notification is dropped with it
func (s *CalendarService) Delete(ctx context.Context, eventID string) error {
	if _, err := s.client.Delete(ctx, s.client.Routes().CalendarEvent(eventID)); err != nil {
		return err
	}

	s.mu.Lock()
	remaining := s.events[:0:0]
	for _, event := range s.events {
		if event.ID != eventID {
			remaining = append(remaining, event)
		}
	}
	s.events = remaining
	s.mu.Unlock()

	s.resync(ctx)
	return nil
}

func (s *CalendarService) resync(ctx context.Context) {
	if err := s.engine.Sync(ctx, s.Events()); err != nil {
		s.logger.Warnw("reminder sync failed", "error", err.Error())
	}
}
