package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogarhub/core/internal/adapters/notify"
	"github.com/hogarhub/core/internal/application/reminder"
	"github.com/hogarhub/core/internal/infrastructure/api"
	"github.com/hogarhub/core/internal/infrastructure/logger"
	"github.com/hogarhub/core/internal/ports"
)

func intPtr(v int) *int { return &v }

func newCalendarService(t *testing.T, handler http.Handler, gateway *notify.Memory, now time.Time) *CalendarService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.NewClientWithRoutes(api.NewRoutes(server.URL, "/AppP"), logger.NewNop())
	engine := reminder.NewEngine(gateway, reminder.PlatformAndroid, "reminders", "notifications.wav", logger.NewNop()).
		WithClock(func() time.Time { return now })
	return NewCalendarService(client, engine, logger.NewNop())
}

func TestCalendarFetchSyncsReminders(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /AppP/calendar", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, []map[string]any{
			{"id": "e1", "title": "Dentista", "date": "2025-01-10", "startTime": "09:00", "notifyBeforeMinutes": 15},
			{"id": "e2", "title": "Sin recordatorio", "date": "2025-01-10", "startTime": "10:00"},
			{"title": "fantasma sin id", "date": "2025-01-10"},
		})
	})

	gateway := notify.NewMemory(true)
	svc := newCalendarService(t, mux, gateway, now)

	assert.Empty(t, svc.Events())

	events, err := svc.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	queue := gateway.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, "Dentista", queue[0].Request.Title)
	assert.Equal(t, 45*60, queue[0].Request.Trigger.Seconds)
	assert.Equal(t, "reminders", queue[0].Request.Trigger.ChannelID)
}

func TestCalendarDeleteDropsPendingReminder(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local)
	deleted := false

	mux := http.NewServeMux()
	mux.HandleFunc("GET /AppP/calendar", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, []map[string]any{
			{"id": "e1", "title": "Dentista", "date": "2025-01-10", "startTime": "09:00", "notifyBeforeMinutes": 15},
		})
	})
	mux.HandleFunc("DELETE /AppP/calendar/e1", func(w http.ResponseWriter, r *http.Request) {
		deleted = true
		envelope(t, w, map[string]any{})
	})

	gateway := notify.NewMemory(true)
	svc := newCalendarService(t, mux, gateway, now)

	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, gateway.Queue(), 1)

	require.NoError(t, svc.Delete(context.Background(), "e1"))
	assert.True(t, deleted)
	assert.Empty(t, svc.Events())
	assert.Empty(t, gateway.Queue(), "the cancel-all pass must drop the deleted event's reminder")
}

func TestCalendarCreateSchedulesImmediately(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /AppP/calendar", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, map[string]any{
			"id": "e9", "title": "Cita", "date": "2025-01-10", "startTime": "12:00", "notifyBeforeMinutes": 30,
		})
	})

	gateway := notify.NewMemory(true)
	svc := newCalendarService(t, mux, gateway, now)

	event, err := svc.Create(context.Background(), ports.CreateEventRequest{
		Title:               "Cita",
		Date:                "2025-01-10",
		StartTime:           "12:00",
		NotifyBeforeMinutes: intPtr(30),
	})
	require.NoError(t, err)
	assert.Equal(t, "e9", event.ID)

	// Immediate schedule plus the full resync leave exactly one pending
	// notification for the event.
	queue := gateway.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, "Cita", queue[0].Request.Title)
}

func TestCalendarCreateRejectsBadStartTime(t *testing.T) {
	gateway := notify.NewMemory(true)
	svc := newCalendarService(t, http.NotFoundHandler(), gateway, time.Now())

	_, err := svc.Create(context.Background(), ports.CreateEventRequest{
		Title:     "Cita",
		Date:      "2025-01-10",
		StartTime: "25:99",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "startTime")
}

func TestCalendarCreateSurvivesDeniedPermission(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /AppP/calendar", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, map[string]any{
			"id": "e1", "title": "Cita", "date": "2025-01-10", "startTime": "12:00", "notifyBeforeMinutes": 30,
		})
	})

	gateway := notify.NewMemory(false)
	svc := newCalendarService(t, mux, gateway, now)

	event, err := svc.Create(context.Background(), ports.CreateEventRequest{
		Title:               "Cita",
		Date:                "2025-01-10",
		StartTime:           "12:00",
		NotifyBeforeMinutes: intPtr(30),
	})
	require.NoError(t, err, "a denied permission must not fail the create itself")
	assert.Equal(t, "e1", event.ID)
	assert.Empty(t, gateway.Queue())
}
