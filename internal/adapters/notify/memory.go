// Package notify provides NotificationGateway implementations. The real OS
// notification subsystem lives on the device; these adapters stand in for it
// in tests, dry runs and the CLI.
package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hogarhub/core/internal/ports"
)

// Scheduled is one queued notification together with its identifier.
type Scheduled struct {
	ID      string
	Request ports.NotificationRequest
}

// Memory is an in-memory gateway with an inspectable queue.
type Memory struct {
	mu      sync.Mutex
	granted bool
	queue   []Scheduled
}

// NewMemory creates a gateway that reports the given permission state.
func NewMemory(granted bool) *Memory {
	return &Memory{granted: granted}
}

// PermissionGranted implements ports.NotificationGateway
func (m *Memory) PermissionGranted(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.granted, nil
}

// SetPermission flips the permission state
func (m *Memory) SetPermission(granted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.granted = granted
}

// CancelAll implements ports.NotificationGateway
func (m *Memory) CancelAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
	return nil
}

// Schedule implements ports.NotificationGateway
func (m *Memory) Schedule(ctx context.Context, req ports.NotificationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.queue = append(m.queue, Scheduled{ID: id, Request: req})
	return id, nil
}

// Queue returns a copy of the currently scheduled notifications
func (m *Memory) Queue() []Scheduled {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Scheduled(nil), m.queue...)
}
