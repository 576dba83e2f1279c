// Package optimistic implements the snapshot/apply/request/rollback contract
// shared by every mutating screen: local state changes immediately, the
// network call follows, and a failure restores the pre-mutation snapshot
// exactly.
package optimistic

import "context"

// Mutation describes one optimistic state change over a state of type S.
type Mutation[S any] struct {
	// Snapshot deep-copies the current state before anything is applied.
	Snapshot func() S
	// Apply commits the local change so the caller's view updates immediately.
	Apply func()
	// Request issues the network call and returns the server's canonical
	// record when it supplies one.
	Request func(ctx context.Context) (S, error)
	// Merge reconciles the server response into local state, server winning
	// on conflicting fields. Optional: when nil the optimistic state stands.
	Merge func(server S)
	// Rollback restores the snapshot taken before Apply.
	Rollback func(snapshot S)
}

// Run executes the mutation. On failure the snapshot is restored and the
// error returned; on success the server record is merged when a Merge hook
// is present.
func Run[S any](ctx context.Context, m Mutation[S]) error {
	snapshot := m.Snapshot()
	m.Apply()

	server, err := m.Request(ctx)
	if err != nil {
		m.Rollback(snapshot)
		return err
	}
	if m.Merge != nil {
		m.Merge(server)
	}
	return nil
}
