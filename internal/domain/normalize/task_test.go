package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogarhub/core/internal/domain/entities"
	"github.com/hogarhub/core/internal/domain/normalize"
)

func rawJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestParseOrderValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *int
	}{
		{name: "finite float truncates", input: float64(3.9), want: intPtr(3)},
		{name: "negative float truncates toward zero", input: float64(-2.7), want: intPtr(-2)},
		{name: "numeric string", input: "7", want: intPtr(7)},
		{name: "numeric string with spaces", input: "  12 ", want: intPtr(12)},
		{name: "decimal string truncates", input: "4.8", want: intPtr(4)},
		{name: "empty string", input: "", want: nil},
		{name: "non numeric string", input: "abc", want: nil},
		{name: "nil", input: nil, want: nil},
		{name: "bool", input: true, want: nil},
		{name: "object", input: map[string]any{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.ParseOrderValue(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func intPtr(v int) *int { return &v }

func TestNormalizeTimestamp(t *testing.T) {
	assert.Equal(t, "", normalize.NormalizeTimestamp(nil))
	assert.Equal(t, "2024-03-01T10:00:00Z", normalize.NormalizeTimestamp("2024-03-01T10:00:00Z"))
	assert.Equal(t, "1970-01-01T00:00:01Z", normalize.NormalizeTimestamp(float64(1000)))
	assert.Equal(t, "", normalize.NormalizeTimestamp([]any{"not", "a", "time"}))

	// Firestore-like {seconds} object
	got := normalize.NormalizeTimestamp(map[string]any{"seconds": float64(1700000000)})
	assert.Equal(t, "2023-11-14T22:13:20Z", got)
}

func TestEnsureTaskOrderTotality(t *testing.T) {
	tasks := []entities.Task{
		{ID: "c", Order: nil, CreatedAt: "2024-01-03T00:00:00Z"},
		{ID: "a", Order: intPtr(5)},
		{ID: "b", Order: nil, CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: "d", Order: intPtr(1)},
	}

	got := normalize.EnsureTaskOrder(tasks)
	require.Len(t, got, 4)

	// Ordered tasks first by order, unordered ones after by createdAt.
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(got))

	// Every output order is a unique integer, strictly increasing with position.
	prev := -1 << 31
	for _, task := range got {
		require.NotNil(t, task.Order)
		assert.Greater(t, *task.Order, prev)
		prev = *task.Order
	}

	// Fresh orders continue from max(existing)+1.
	assert.Equal(t, 6, *got[2].Order)
	assert.Equal(t, 7, *got[3].Order)

	// Input is untouched.
	assert.Nil(t, tasks[0].Order)
}

func TestEnsureTaskOrderIdempotent(t *testing.T) {
	tasks := []entities.Task{
		{ID: "x"},
		{ID: "y", Order: intPtr(2)},
		{ID: "z", Order: intPtr(2)},
	}
	once := normalize.EnsureTaskOrder(tasks)
	twice := normalize.EnsureTaskOrder(once)
	assert.Equal(t, once, twice)
}

func TestEnsureTaskOrderEmpty(t *testing.T) {
	assert.Empty(t, normalize.EnsureTaskOrder(nil))
}

func TestNormalizeTaskAliases(t *testing.T) {
	raw := rawJSON(t, `{
		"taskId": "t1",
		"nombre": "Comprar pan",
		"descripcion": "  integral  ",
		"estatus": "COMPLETADA",
		"fecha": "2024-05-01",
		"posicion": "3"
	}`)

	task := normalize.NormalizeTask(raw)
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, "Comprar pan", task.Title)
	assert.Equal(t, "integral", task.Description)
	assert.Equal(t, entities.TaskStatusCompletada, task.Status)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-05-01", *task.DueDate)
	require.NotNil(t, task.Order)
	assert.Equal(t, 3, *task.Order)
}

func TestNormalizeTaskDefaults(t *testing.T) {
	task := normalize.NormalizeTask(rawJSON(t, `{"id": "t2"}`))
	assert.Equal(t, entities.TaskStatusPendiente, task.Status)
	assert.Nil(t, task.Order)
	assert.Nil(t, task.DueDate)
}

func TestNormalizersNeverPanic(t *testing.T) {
	inputs := []string{`null`, `[]`, `42`, `"texto"`, `true`, `{"tasks": "nope"}`, `{"tasks": [null, 1, "x"]}`}
	for _, input := range inputs {
		raw := rawJSON(t, input)
		assert.NotPanics(t, func() {
			normalize.NormalizeTask(raw)
			normalize.NormalizeCategory(raw)
			normalize.NormalizeDebtEntry(raw)
			normalize.NormalizeNote(raw)
			normalize.NormalizeSupermarketItem(raw)
		}, "input %s", input)
	}
}

func TestNormalizeCategory(t *testing.T) {
	raw := rawJSON(t, `{
		"id": "c1",
		"name": "Casa",
		"color": "#FF8800",
		"tasks": [
			{"id": "t2", "title": "Lavavajillas", "order": 1},
			{"id": "t1", "title": "Rotoplas", "order": 0},
			{"title": "sin id"},
			{"id": "t3", "title": "Persianas"}
		]
	}`)

	category := normalize.NormalizeCategory(raw)
	assert.Equal(t, "c1", category.ID)
	assert.Equal(t, "Casa", category.Title)
	require.NotNil(t, category.Color)
	assert.Equal(t, "#FF8800", *category.Color)

	// The id-less task is dropped, the rest come back in canonical order.
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(category.Tasks))
	assert.Equal(t, 3, category.TasksCount)
	require.NotNil(t, category.Tasks[2].Order)
	assert.Equal(t, 2, *category.Tasks[2].Order)
}

func TestNormalizeCategoryServerCountWins(t *testing.T) {
	raw := rawJSON(t, `{"id": "c1", "title": "Casa", "tasksCount": 9, "tasks": []}`)
	assert.Equal(t, 9, normalize.NormalizeCategory(raw).TasksCount)
}

func TestOrderRepairPayload(t *testing.T) {
	raw := rawJSON(t, `{
		"id": "c1",
		"title": "Casa",
		"tasks": [
			{"id": "t1", "order": 0},
			{"id": "t2"},
			{"id": "t3", "position": "1"},
			{"id": "t4"}
		]
	}`)

	category := normalize.NormalizeCategory(raw)
	payload := normalize.OrderRepairPayload(raw, category)

	require.Len(t, payload, 2)
	assert.Equal(t, entities.TaskOrderRef{ID: "t2", Order: 2}, payload[0])
	assert.Equal(t, entities.TaskOrderRef{ID: "t4", Order: 3}, payload[1])
}

func TestOrderRepairPayloadNoneMissing(t *testing.T) {
	raw := rawJSON(t, `{"id": "c1", "tasks": [{"id": "t1", "order": 0}]}`)
	assert.Nil(t, normalize.OrderRepairPayload(raw, normalize.NormalizeCategory(raw)))
}

func TestReorderRoundTrip(t *testing.T) {
	raw := rawJSON(t, `{
		"id": "c1",
		"tasks": [
			{"id": "b", "order": 10},
			{"id": "a", "order": 2},
			{"id": "c", "order": 7}
		]
	}`)

	category := normalize.NormalizeCategory(raw)
	refs := make([]entities.TaskOrderRef, len(category.Tasks))
	for i, task := range category.Tasks {
		refs[i] = entities.TaskOrderRef{ID: task.ID, Order: i}
	}

	// Serializing positions and re-normalizing reproduces the same order.
	assert.Equal(t, []entities.TaskOrderRef{{ID: "a", Order: 0}, {ID: "c", Order: 1}, {ID: "b", Order: 2}}, refs)
}

func ids(tasks []entities.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
