package devserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogarhub/core/internal/application/cache"
	"github.com/hogarhub/core/internal/application/services"
	"github.com/hogarhub/core/internal/domain/entities"
	"github.com/hogarhub/core/internal/infrastructure/api"
	"github.com/hogarhub/core/internal/infrastructure/logger"
	"github.com/hogarhub/core/internal/ports"
)

func newClient(t *testing.T) *api.Client {
	t.Helper()
	server := httptest.NewServer(New("/AppP", logger.NewNop()).Handler())
	t.Cleanup(server.Close)
	return api.NewClientWithRoutes(api.NewRoutes(server.URL, "/AppP"), logger.NewNop())
}

func TestCategoriesRoundTrip(t *testing.T) {
	client := newClient(t)
	svc := services.NewCategoriesService(client, cache.NewCategoriesStore(), time.Minute, logger.NewNop())
	ctx := context.Background()

	// Empty to start; fetch marks the service online so mutations pass.
	categories, err := svc.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)

	category, err := svc.CreateCategory(ctx, ports.CreateCategoryRequest{Title: "Casa"})
	require.NoError(t, err)
	require.NotEmpty(t, category.ID)

	first, err := svc.AddTask(ctx, category.ID, ports.CreateTaskRequest{Title: "Rotoplas"})
	require.NoError(t, err)
	second, err := svc.AddTask(ctx, category.ID, ports.CreateTaskRequest{Title: "Lavavajillas"})
	require.NoError(t, err)

	require.NoError(t, svc.ReorderTasks(ctx, category.ID, []string{second.ID, first.ID}))

	categories, err = svc.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	tasks := categories[0].Tasks
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID, "persisted order must survive a full refetch")
	assert.Equal(t, first.ID, tasks[1].ID)

	require.NoError(t, svc.ToggleTaskStatus(ctx, category.ID, first.ID))
	categories, err = svc.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusCompletada, categories[0].Tasks[1].Status)

	require.NoError(t, svc.DeleteCategory(ctx, category.ID))
	categories, err = svc.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestCalendarAndDebtsRoundTrip(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	debts := services.NewDebtsService(client, logger.NewNop())
	_, err := debts.Create(ctx, ports.CreateDebtEntryRequest{Title: "Super", Amount: 100, Type: "deuda"})
	require.NoError(t, err)
	_, err = debts.Create(ctx, ports.CreateDebtEntryRequest{Title: "Abono", Amount: 40, Type: "abono"})
	require.NoError(t, err)

	entries, err := debts.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 60.0, debts.Balance().Balance)
}

func TestDeviceRegistrationEchoesDisplayName(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	data, err := client.Post(ctx, client.Routes().NotificationsRegister(), ports.RegisterDeviceRequest{
		Token:    "tok-1",
		Platform: "android",
		DeviceID: "dev-1",
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "Dispositivo")

	devices, err := client.Get(ctx, client.Routes().NotificationsDevices())
	require.NoError(t, err)
	assert.Contains(t, string(devices), "tok-1")
}
