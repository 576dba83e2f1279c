package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogarhub/core/internal/application/cache"
	"github.com/hogarhub/core/internal/domain/entities"
	"github.com/hogarhub/core/internal/infrastructure/api"
	"github.com/hogarhub/core/internal/infrastructure/logger"
	"github.com/hogarhub/core/internal/ports"
)

func newTestService(t *testing.T, handler http.Handler) (*CategoriesService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.NewClientWithRoutes(api.NewRoutes(server.URL, "/AppP"), logger.NewNop())
	return NewCategoriesService(client, cache.NewCategoriesStore(), time.Minute, logger.NewNop()), server
}

func envelope(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": data})
	require.NoError(t, err)
}

func TestFetchNormalizesAndCaches(t *testing.T) {
	payload := []map[string]any{
		{
			"id":    "c1",
			"nombre": "Casa",
			"tasks": []map[string]any{
				{"taskId": "t1", "name": "Rotoplas", "posicion": 2, "estatus": "PENDIENTE"},
				{"id": "t2", "title": "Lavavajillas"},
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /AppP/categories", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("includeTasks"))
		envelope(t, w, payload)
	})
	mux.HandleFunc("POST /AppP/categories/c1/tasks/reorder", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, map[string]any{})
	})

	svc, _ := newTestService(t, mux)

	categories, err := svc.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)

	category := categories[0]
	assert.Equal(t, "Casa", category.Title)
	require.Len(t, category.Tasks, 2)
	assert.Equal(t, "t1", category.Tasks[0].ID)
	assert.Equal(t, entities.TaskStatusPendiente, category.Tasks[0].Status)
	require.NotNil(t, category.Tasks[1].Order)
	assert.Equal(t, 3, *category.Tasks[1].Order)

	cached, ok := svc.CachedSnapshot()
	require.True(t, ok)
	assert.Equal(t, categories, cached)
	assert.False(t, svc.UsingFallback())
}

func TestFetchRepairsMissingOrdersOncePerSession(t *testing.T) {
	var repairs atomic.Int32
	repaired := make(chan []entities.TaskOrderRef, 4)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /AppP/categories", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, []map[string]any{{
			"id":    "c1",
			"title": "Casa",
			"tasks": []map[string]any{
				{"id": "t1", "title": "a", "order": 0},
				{"id": "t2", "title": "b"},
			},
		}})
	})
	mux.HandleFunc("POST /AppP/categories/c1/tasks/reorder", func(w http.ResponseWriter, r *http.Request) {
		repairs.Add(1)
		var body struct {
			Data []entities.TaskOrderRef `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		repaired <- body.Data
		envelope(t, w, map[string]any{})
	})

	svc, _ := newTestService(t, mux)

	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	select {
	case refs := <-repaired:
		require.Len(t, refs, 1)
		assert.Equal(t, entities.TaskOrderRef{ID: "t2", Order: 1}, refs[0])
	case <-time.After(2 * time.Second):
		t.Fatal("order repair was never issued")
	}

	// Same broken payload again: the category is already repaired this
	// session, so no second call may be issued.
	_, err = svc.Fetch(context.Background())
	require.NoError(t, err)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), repairs.Load())
}

func TestFetchFallsBackToSamples(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // unreachable on purpose
	client := api.NewClientWithRoutes(api.NewRoutes(server.URL, "/AppP"), logger.NewNop())
	svc := NewCategoriesService(client, cache.NewCategoriesStore(), time.Minute, logger.NewNop())

	categories, err := svc.Fetch(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	for _, category := range categories {
		assert.True(t, category.IsSample(), "fallback category %q must carry the sample prefix", category.ID)
	}
	assert.True(t, svc.UsingFallback())

	// Fallback data is read-only.
	err = svc.DeleteCategory(context.Background(), categories[0].ID)
	assert.ErrorIs(t, err, entities.ErrOffline)

	// The stale cache must not be poisoned by sample data.
	_, ok := svc.CachedSnapshot()
	assert.False(t, ok)
}

func TestToggleTaskStatusRollsBackOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /AppP/categories", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, []map[string]any{{
			"id":    "c1",
			"title": "Casa",
			"tasks": []map[string]any{{"id": "t1", "title": "Rotoplas", "status": "pendiente", "order": 0}},
		}})
	})
	mux.HandleFunc("PATCH /AppP/categories/c1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	svc, _ := newTestService(t, mux)
	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	err = svc.ToggleTaskStatus(context.Background(), "c1", "t1")
	require.Error(t, err)

	snapshot := svc.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, entities.TaskStatusPendiente, snapshot[0].Tasks[0].Status)
}

func TestToggleTaskStatusKeepsOptimisticStateOnSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /AppP/categories", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, []map[string]any{{
			"id":    "c1",
			"title": "Casa",
			"tasks": []map[string]any{{"id": "t1", "title": "Rotoplas", "status": "completada", "order": 0}},
		}})
	})
	mux.HandleFunc("PATCH /AppP/categories/c1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pendiente", body.Data["status"])
		envelope(t, w, map[string]any{})
	})

	svc, _ := newTestService(t, mux)
	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.ToggleTaskStatus(context.Background(), "c1", "t1"))
	assert.Equal(t, entities.TaskStatusPendiente, svc.Snapshot()[0].Tasks[0].Status)
}

func TestToggleTaskStatusUnknownTaskIssuesNoRequest(t *testing.T) {
	var patches atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /AppP/categories", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, []map[string]any{{
			"id":    "c1",
			"title": "Casa",
			"tasks": []map[string]any{{"id": "t1", "title": "Rotoplas", "status": "pendiente", "order": 0}},
		}})
	})
	mux.HandleFunc("PATCH /AppP/categories/c1/tasks/", func(w http.ResponseWriter, r *http.Request) {
		patches.Add(1)
		envelope(t, w, map[string]any{})
	})

	svc, _ := newTestService(t, mux)
	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	err = svc.ToggleTaskStatus(context.Background(), "c1", "no-such-task")
	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.Equal(t, int32(0), patches.Load(), "no PATCH may be issued for an unknown task")
}

func TestReorderTasksKeepsVisualOrderWhenPersistFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /AppP/categories", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, []map[string]any{{
			"id":    "c1",
			"title": "Casa",
			"tasks": []map[string]any{
				{"id": "t1", "title": "a", "order": 0},
				{"id": "t2", "title": "b", "order": 1},
			},
		}})
	})
	mux.HandleFunc("POST /AppP/categories/c1/tasks/reorder", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	svc, _ := newTestService(t, mux)
	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	err = svc.ReorderTasks(context.Background(), "c1", []string{"t2", "t1"})
	require.Error(t, err)

	// The drag result stays on screen even though the persist failed.
	tasks := svc.Snapshot()[0].Tasks
	require.Len(t, tasks, 2)
	assert.Equal(t, "t2", tasks[0].ID)
	assert.Equal(t, "t1", tasks[1].ID)
}

func TestAddAndDeleteTask(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /AppP/categories", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, []map[string]any{{
			"id":    "c1",
			"title": "Casa",
			"tasks": []map[string]any{{"id": "t1", "title": "a", "order": 4}},
		}})
	})
	mux.HandleFunc("POST /AppP/categories/c1/tasks", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, map[string]any{"id": "t9", "title": "nuevo", "status": "pendiente"})
	})
	mux.HandleFunc("DELETE /AppP/categories/c1/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, map[string]any{})
	})

	svc, _ := newTestService(t, mux)
	_, err := svc.Fetch(context.Background())
	require.NoError(t, err)

	task, err := svc.AddTask(context.Background(), "c1", ports.CreateTaskRequest{Title: "nuevo"})
	require.NoError(t, err)
	assert.Equal(t, "t9", task.ID)

	tasks := svc.Snapshot()[0].Tasks
	require.Len(t, tasks, 2)
	// The new task slots after the existing max order.
	require.NotNil(t, tasks[1].Order)
	assert.Equal(t, "t9", tasks[1].ID)
	assert.Equal(t, 5, *tasks[1].Order)

	require.NoError(t, svc.DeleteTask(context.Background(), "c1", "t1"))
	snapshot := svc.Snapshot()
	require.Len(t, snapshot[0].Tasks, 1)
	assert.Equal(t, "t9", snapshot[0].Tasks[0].ID)
	assert.Equal(t, 1, snapshot[0].TasksCount)
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, _ := newTestService(t, http.NotFoundHandler())

	_, err := svc.CreateCategory(context.Background(), ports.CreateCategoryRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid category")
}

func TestSampleCategoryMutationsRejected(t *testing.T) {
	svc, _ := newTestService(t, http.NotFoundHandler())

	err := svc.DeleteCategory(context.Background(), "sample-boda")
	assert.ErrorIs(t, err, entities.ErrReadOnlySample)

	_, err = svc.AddTask(context.Background(), "sample-boda", ports.CreateTaskRequest{Title: "x"})
	assert.ErrorIs(t, err, entities.ErrReadOnlySample)
}
