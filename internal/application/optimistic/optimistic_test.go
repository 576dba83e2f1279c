package optimistic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogarhub/core/internal/application/optimistic"
	"github.com/hogarhub/core/internal/domain/entities"
)

func TestRunRollsBackOnFailure(t *testing.T) {
	state := []entities.Task{{ID: "t1", Status: entities.TaskStatusPendiente}}

	err := optimistic.Run(context.Background(), optimistic.Mutation[[]entities.Task]{
		Snapshot: func() []entities.Task { return entities.CloneTasks(state) },
		Apply: func() {
			state[0].Status = entities.TaskStatusCompletada
		},
		Request: func(ctx context.Context) ([]entities.Task, error) {
			// The UI already shows the optimistic state at this point.
			assert.Equal(t, entities.TaskStatusCompletada, state[0].Status)
			return nil, errors.New("HTTP 500")
		},
		Rollback: func(snapshot []entities.Task) { state = snapshot },
	})

	require.Error(t, err)
	assert.Equal(t, entities.TaskStatusPendiente, state[0].Status)
}

func TestRunKeepsOptimisticStateWithoutMerge(t *testing.T) {
	state := []entities.Task{{ID: "t1", Title: "antes"}}

	err := optimistic.Run(context.Background(), optimistic.Mutation[[]entities.Task]{
		Snapshot: func() []entities.Task { return entities.CloneTasks(state) },
		Apply:    func() { state[0].Title = "después" },
		Request: func(ctx context.Context) ([]entities.Task, error) {
			return nil, nil
		},
		Rollback: func(snapshot []entities.Task) { state = snapshot },
	})

	require.NoError(t, err)
	assert.Equal(t, "después", state[0].Title)
}

func TestRunMergesServerRecord(t *testing.T) {
	state := []entities.Task{{ID: "t1", Title: "local"}}

	err := optimistic.Run(context.Background(), optimistic.Mutation[[]entities.Task]{
		Snapshot: func() []entities.Task { return entities.CloneTasks(state) },
		Apply:    func() { state[0].Title = "optimista" },
		Request: func(ctx context.Context) ([]entities.Task, error) {
			return []entities.Task{{ID: "t1", Title: "canónico", UpdatedAt: "2024-06-01T00:00:00Z"}}, nil
		},
		Merge:    func(server []entities.Task) { state = server },
		Rollback: func(snapshot []entities.Task) { state = snapshot },
	})

	require.NoError(t, err)
	assert.Equal(t, "canónico", state[0].Title)
	assert.Equal(t, "2024-06-01T00:00:00Z", state[0].UpdatedAt)
}
