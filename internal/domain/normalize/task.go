// Package normalize converts raw, possibly inconsistent server payloads into
// the canonical entity model. Every function is total: malformed input yields
// a zero value or nil, never a panic.
package normalize

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hogarhub/core/internal/domain/entities"
)

// Accepted source keys per canonical field, first present alias wins.
var (
	taskIDAliases          = []string{"id", "taskId"}
	taskTitleAliases       = []string{"title", "name", "nombre"}
	taskDescriptionAliases = []string{"description", "descripcion"}
	taskStatusAliases      = []string{"status", "estatus", "state"}
	taskDueDateAliases     = []string{"dueDate", "fecha"}
	taskOrderAliases       = []string{"order", "position", "posicion"}

	categoryTitleAliases       = []string{"title", "name", "nombre"}
	categoryDescriptionAliases = []string{"description", "descripcion"}
)

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func firstAlias(m map[string]any, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstStringAlias(m map[string]any, aliases []string) string {
	for _, key := range aliases {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ParseOrderValue accepts a finite number or a numeric string and truncates it
// to an integer. Anything else means "unordered" and returns nil.
func ParseOrderValue(value any) *int {
	switch v := value.(type) {
	case int:
		return intPtr(v)
	case int64:
		return intPtr(int(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return intPtr(int(math.Trunc(v)))
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil
		}
		return intPtr(int(math.Trunc(parsed)))
	}
	return nil
}

func intPtr(v int) *int { return &v }

// NormalizeTimestamp coerces a timestamp of any historical wire shape (ISO
// string, time.Time, epoch milliseconds, Firestore-like {seconds} map) into an
// ISO string. Returns "" when the value is unusable.
func NormalizeTimestamp(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
			return ""
		}
		return time.UnixMilli(int64(v)).UTC().Format(time.RFC3339)
	case int64:
		if v == 0 {
			return ""
		}
		return time.UnixMilli(v).UTC().Format(time.RFC3339)
	case map[string]any:
		if secs, ok := v["seconds"].(float64); ok {
			return time.Unix(int64(secs), 0).UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// EnsureTaskOrder stable-sorts tasks into the canonical order (order ascending
// with nils last, then createdAt, then id) and assigns fresh sequential
// integers, continuing from max(existing)+1, to every task that arrived
// without one. The input slice is never mutated.
func EnsureTaskOrder(tasks []entities.Task) []entities.Task {
	if len(tasks) == 0 {
		return []entities.Task{}
	}

	type meta struct {
		task      entities.Task
		order     *int
		createdAt string
	}

	items := make([]meta, len(tasks))
	maxOrder := -1
	for i, task := range tasks {
		var order *int
		if task.Order != nil {
			v := *task.Order
			order = &v
			if v > maxOrder {
				maxOrder = v
			}
		}
		items[i] = meta{
			task:      task.Clone(),
			order:     order,
			createdAt: NormalizeTimestamp(task.CreatedAt),
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.order != nil && b.order != nil && *a.order != *b.order {
			return *a.order < *b.order
		}
		if a.order != nil && b.order == nil {
			return true
		}
		if a.order == nil && b.order != nil {
			return false
		}
		if a.createdAt != "" && b.createdAt != "" && a.createdAt != b.createdAt {
			return a.createdAt < b.createdAt
		}
		return a.task.ID < b.task.ID
	})

	nextOrder := maxOrder + 1
	out := make([]entities.Task, len(items))
	for i, item := range items {
		task := item.task
		if item.order != nil {
			task.Order = item.order
		} else {
			assigned := nextOrder
			nextOrder++
			task.Order = &assigned
		}
		out[i] = task
	}
	return out
}

// NormalizeTask converts one raw task record into its canonical shape.
// Records without an id come back with an empty ID and are expected to be
// filtered by the caller.
func NormalizeTask(raw any) entities.Task {
	m, ok := asMap(raw)
	if !ok {
		return entities.Task{Status: entities.TaskStatusPendiente}
	}

	status := strings.ToLower(firstStringAlias(m, taskStatusAliases))
	if status == "" {
		status = string(entities.TaskStatusPendiente)
	}

	var dueDate *string
	if s := firstStringAlias(m, taskDueDateAliases); s != "" {
		dueDate = &s
	}

	var orderValue any
	if v, ok := firstAlias(m, taskOrderAliases); ok {
		orderValue = v
	}

	return entities.Task{
		ID:          firstStringAlias(m, taskIDAliases),
		Title:       firstStringAlias(m, taskTitleAliases),
		Description: strings.TrimSpace(firstStringAlias(m, taskDescriptionAliases)),
		Status:      entities.TaskStatus(status),
		DueDate:     dueDate,
		CreatedAt:   NormalizeTimestamp(m["createdAt"]),
		UpdatedAt:   NormalizeTimestamp(m["updatedAt"]),
		Order:       ParseOrderValue(orderValue),
	}
}

// NormalizeCategory converts one raw category record, normalizing and
// ordering its tasks. Tasks without an id are dropped. TasksCount keeps the
// server's count when it supplies one.
func NormalizeCategory(raw any) entities.Category {
	m, ok := asMap(raw)
	if !ok {
		return entities.Category{Tasks: []entities.Task{}}
	}

	var tasks []entities.Task
	if rawTasks, ok := m["tasks"].([]any); ok {
		for _, rawTask := range rawTasks {
			task := NormalizeTask(rawTask)
			if task.ID != "" {
				tasks = append(tasks, task)
			}
		}
	}
	ordered := EnsureTaskOrder(tasks)

	tasksCount := len(ordered)
	if v, ok := m["tasksCount"].(float64); ok {
		tasksCount = int(v)
	}

	var color *string
	if s, ok := m["color"].(string); ok && s != "" {
		color = &s
	}

	id, _ := m["id"].(string)

	return entities.Category{
		ID:          id,
		Title:       firstStringAlias(m, categoryTitleAliases),
		Description: firstStringAlias(m, categoryDescriptionAliases),
		Color:       color,
		CreatedAt:   NormalizeTimestamp(m["createdAt"]),
		UpdatedAt:   NormalizeTimestamp(m["updatedAt"]),
		Tasks:       ordered,
		TasksCount:  tasksCount,
	}
}

// OrderRepairPayload returns the {id, order} pairs the caller should write
// back for tasks that arrived without a usable order, using the order
// assigned during normalization.
func OrderRepairPayload(raw any, normalized entities.Category) []entities.TaskOrderRef {
	m, ok := asMap(raw)
	if !ok {
		return nil
	}
	rawTasks, ok := m["tasks"].([]any)
	if !ok {
		return nil
	}

	missing := make(map[string]bool)
	for _, rawTask := range rawTasks {
		tm, ok := asMap(rawTask)
		if !ok {
			continue
		}
		id := firstStringAlias(tm, taskIDAliases)
		if id == "" {
			continue
		}
		orderValue, _ := firstAlias(tm, taskOrderAliases)
		if ParseOrderValue(orderValue) == nil {
			missing[id] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var payload []entities.TaskOrderRef
	for _, task := range normalized.Tasks {
		if !missing[task.ID] {
			continue
		}
		order := 0
		if task.Order != nil {
			order = *task.Order
		}
		payload = append(payload, entities.TaskOrderRef{ID: task.ID, Order: order})
	}
	return payload
}
