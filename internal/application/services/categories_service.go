package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hogarhub/core/internal/application/cache"
	"github.com/hogarhub/core/internal/application/optimistic"
	"github.com/hogarhub/core/internal/domain/entities"
	"github.com/hogarhub/core/internal/domain/normalize"
	"github.com/hogarhub/core/internal/infrastructure/api"
	"github.com/hogarhub/core/internal/infrastructure/logger"
	"github.com/hogarhub/core/internal/ports"
)

// CategoriesService owns the canonical category/task view: it fetches and
// normalizes the tree, shields the dashboard with the read-through cache,
// applies mutations optimistically and self-heals missing task orders.
type CategoriesService struct {
	client   *api.Client
	store    *cache.CategoriesStore
	ttl      time.Duration
	validate *validator.Validate
	logger   *logger.Logger

	mu             sync.Mutex
	categories     []entities.Category
	usingFallback  bool
	fallbackNotice bool

	repairMu sync.Mutex
	repaired map[string]bool
}

// NewCategoriesService creates a new categories service
func NewCategoriesService(client *api.Client, store *cache.CategoriesStore, ttl time.Duration, appLogger *logger.Logger) *CategoriesService {
	return &CategoriesService{
		client:   client,
		store:    store,
		ttl:      ttl,
		validate: validator.New(),
		logger:   appLogger.WithComponent("categories"),
		repaired: make(map[string]bool),
	}
}

// CachedSnapshot returns the cached tree when it is still fresh. It paints
// the screen instantly; callers still issue Fetch afterwards to reconcile.
func (s *CategoriesService) CachedSnapshot() ([]entities.Category, bool) {
	if !s.store.Fresh(s.ttl) {
		return nil, false
	}
	snapshot, ok := s.store.Get()
	if !ok {
		return nil, false
	}
	return snapshot.Data, true
}

// Snapshot returns a deep copy of the current local view
func (s *CategoriesService) Snapshot() []entities.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entities.CloneCategories(s.categories)
}

// UsingFallback reports whether the view currently shows sample data
func (s *CategoriesService) UsingFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usingFallback
}

// Fetch loads the full category tree from the server, normalizes it, updates
// the cache and kicks off order repair for categories whose tasks arrived
// unordered. When the server is unreachable the read-only sample set is
// shown instead, with a logged diagnostic.
func (s *CategoriesService) Fetch(ctx context.Context) ([]entities.Category, error) {
	if !s.client.Configured() {
		return s.enterFallback("api base url not configured"), nil
	}

	data, err := s.client.Get(ctx, s.client.Routes().Categories("?includeTasks=true"))
	if err != nil {
		return s.enterFallback(err.Error()), nil
	}
	if ctx.Err() != nil {
		// The screen moved on; discard the late result.
		return nil, ctx.Err()
	}

	var rawList []any
	if err := json.Unmarshal(data, &rawList); err != nil {
		return s.enterFallback("unexpected categories payload: " + err.Error()), nil
	}

	repairPayloads := make(map[string][]entities.TaskOrderRef)
	var normalized []entities.Category
	for _, raw := range rawList {
		category := normalize.NormalizeCategory(raw)
		if category.ID == "" {
			continue
		}
		if payload := normalize.OrderRepairPayload(raw, category); len(payload) > 0 {
			repairPayloads[category.ID] = payload
		}
		normalized = append(normalized, category)
	}

	s.mu.Lock()
	s.categories = normalized
	s.usingFallback = false
	s.mu.Unlock()

	s.store.Set(normalized)

	if len(repairPayloads) > 0 {
		go s.repairMissingOrders(context.WithoutCancel(ctx), repairPayloads)
	}

	return entities.CloneCategories(normalized), nil
}

func (s *CategoriesService) enterFallback(reason string) []entities.Category {
	samples := sampleCategories()
	s.mu.Lock()
	s.categories = samples
	s.usingFallback = true
	notice := !s.fallbackNotice
	s.fallbackNotice = true
	s.mu.Unlock()
	if notice {
		// Noisy on every focus otherwise; one diagnostic per session.
		s.logger.Warnw("showing sample data", "reason", reason)
	}
	return entities.CloneCategories(samples)
}

// repairMissingOrders writes invented orders back to the server so later
// fetches carry real ones. Best effort, at most once per category per
// session; failures are logged, never surfaced.
func (s *CategoriesService) repairMissingOrders(ctx context.Context, payloads map[string][]entities.TaskOrderRef) {
	for categoryID, items := range payloads {
		s.repairMu.Lock()
		seen := s.repaired[categoryID]
		s.repairMu.Unlock()
		if seen || len(items) == 0 {
			continue
		}

		url := s.client.Routes().CategoryTasksReorder(categoryID)
		if _, err := s.client.Post(ctx, url, map[string]any{"data": items}); err != nil {
			s.logger.Warnw("auto order repair failed", "category_id", categoryID, "error", err.Error())
			continue
		}

		s.repairMu.Lock()
		s.repaired[categoryID] = true
		s.repairMu.Unlock()
		s.logger.Debugw("auto order repair applied", "category_id", categoryID, "tasks", len(items))
	}
}

// CreateCategory creates a category and appends it to the local view
func (s *CategoriesService) CreateCategory(ctx context.Context, req ports.CreateCategoryRequest) (entities.Category, error) {
	if err := s.guardWritable(""); err != nil {
		return entities.Category{}, err
	}
	if err := s.validate.Struct(req); err != nil {
		return entities.Category{}, fmt.Errorf("invalid category: %w", err)
	}

	data, err := s.client.Post(ctx, s.client.Routes().Categories(""), map[string]any{"data": req})
	if err != nil {
		return entities.Category{}, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return entities.Category{}, fmt.Errorf("decode created category: %w", err)
	}
	category := normalize.NormalizeCategory(raw)
	if category.ID == "" {
		return entities.Category{}, fmt.Errorf("create category: %w", entities.ErrMissingID)
	}
	if category.Color == nil {
		category.Color = req.Color
	}

	s.mu.Lock()
	s.categories = append(s.categories, category)
	s.mu.Unlock()
	s.store.Invalidate()

	s.logger.Infow("category created", "category_id", category.ID, "title", category.Title)
	return category.Clone(), nil
}

// DeleteCategory removes a category optimistically, restoring it if the
// server rejects the delete
func (s *CategoriesService) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := s.guardWritable(categoryID); err != nil {
		return err
	}

	err := optimistic.Run(ctx, optimistic.Mutation[[]entities.Category]{
		Snapshot: s.Snapshot,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			next := s.categories[:0:0]
			for _, category := range s.categories {
				if category.ID != categoryID {
					next = append(next, category)
				}
			}
			s.categories = next
		},
		Request: func(ctx context.Context) ([]entities.Category, error) {
			_, err := s.client.Delete(ctx, s.client.Routes().Category(categoryID))
			return nil, err
		},
		Rollback: s.restore,
	})
	if err != nil {
		return err
	}

	s.store.Invalidate()
	return nil
}

// AddTask creates a task inside a category and slots it into canonical order
func (s *CategoriesService) AddTask(ctx context.Context, categoryID string, req ports.CreateTaskRequest) (entities.Task, error) {
	if err := s.guardWritable(categoryID); err != nil {
		return entities.Task{}, err
	}
	if err := s.validate.Struct(req); err != nil {
		return entities.Task{}, fmt.Errorf("invalid task: %w", err)
	}

	data, err := s.client.Post(ctx, s.client.Routes().CategoryTasks(categoryID), map[string]any{"data": req})
	if err != nil {
		return entities.Task{}, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return entities.Task{}, fmt.Errorf("decode created task: %w", err)
	}
	task := normalize.NormalizeTask(raw)
	if task.ID == "" {
		return entities.Task{}, fmt.Errorf("create task: %w", entities.ErrMissingID)
	}

	s.mu.Lock()
	s.updateCategoryLocked(categoryID, func(category *entities.Category) {
		category.Tasks = normalize.EnsureTaskOrder(append(entities.CloneTasks(category.Tasks), task))
		category.TasksCount = len(category.Tasks)
	})
	s.mu.Unlock()
	s.store.Invalidate()

	return task.Clone(), nil
}

// UpdateTask patches a task's fields optimistically
func (s *CategoriesService) UpdateTask(ctx context.Context, categoryID, taskID string, req ports.UpdateTaskRequest) error {
	if err := s.guardWritable(categoryID); err != nil {
		return err
	}
	if (entities.Task{ID: taskID}).IsSample() {
		return entities.ErrReadOnlySample
	}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid task update: %w", err)
	}

	err := optimistic.Run(ctx, optimistic.Mutation[[]entities.Category]{
		Snapshot: s.Snapshot,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.updateTaskLocked(categoryID, taskID, func(task *entities.Task) {
				if req.Title != nil {
					task.Title = *req.Title
				}
				if req.Description != nil {
					task.Description = *req.Description
				}
				if req.Status != nil {
					task.Status = entities.TaskStatus(*req.Status)
				}
				if req.DueDate != nil {
					task.DueDate = req.DueDate
				}
			})
		},
		Request: func(ctx context.Context) ([]entities.Category, error) {
			_, err := s.client.Patch(ctx, s.client.Routes().CategoryTask(categoryID, taskID), map[string]any{"data": req})
			return nil, err
		},
		Rollback: s.restore,
	})
	if err != nil {
		return err
	}

	s.store.Invalidate()
	return nil
}

// ToggleTaskStatus flips a task between pendiente and completada, applying
// the change locally before the network call and rolling back on failure
func (s *CategoriesService) ToggleTaskStatus(ctx context.Context, categoryID, taskID string) error {
	if err := s.guardWritable(categoryID); err != nil {
		return err
	}

	s.mu.Lock()
	found := false
	s.updateTaskLocked(categoryID, taskID, func(*entities.Task) { found = true })
	s.mu.Unlock()
	if !found {
		return fmt.Errorf("toggle task %s: %w", taskID, entities.ErrNotFound)
	}

	var nextStatus entities.TaskStatus
	err := optimistic.Run(ctx, optimistic.Mutation[[]entities.Category]{
		Snapshot: s.Snapshot,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.updateTaskLocked(categoryID, taskID, func(task *entities.Task) {
				if task.Status == entities.TaskStatusCompletada {
					nextStatus = entities.TaskStatusPendiente
				} else {
					nextStatus = entities.TaskStatusCompletada
				}
				task.Status = nextStatus
			})
		},
		Request: func(ctx context.Context) ([]entities.Category, error) {
			_, err := s.client.Patch(ctx, s.client.Routes().CategoryTask(categoryID, taskID),
				map[string]any{"data": map[string]any{"status": nextStatus}})
			return nil, err
		},
		Rollback: s.restore,
	})
	if err != nil {
		return err
	}

	s.store.Invalidate()
	return nil
}

// DeleteTask removes a task optimistically
func (s *CategoriesService) DeleteTask(ctx context.Context, categoryID, taskID string) error {
	if err := s.guardWritable(categoryID); err != nil {
		return err
	}

	err := optimistic.Run(ctx, optimistic.Mutation[[]entities.Category]{
		Snapshot: s.Snapshot,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.updateCategoryLocked(categoryID, func(category *entities.Category) {
				remaining := category.Tasks[:0:0]
				for _, task := range category.Tasks {
					if task.ID != taskID {
						remaining = append(remaining, task)
					}
				}
				category.Tasks = remaining
				category.TasksCount = len(remaining)
			})
		},
		Request: func(ctx context.Context) ([]entities.Category, error) {
			_, err := s.client.Delete(ctx, s.client.Routes().CategoryTask(categoryID, taskID))
			return nil, err
		},
		Rollback: s.restore,
	})
	if err != nil {
		return err
	}

	s.store.Invalidate()
	return nil
}

// ReorderTasks commits a drag-reorder: the new order is applied to the view
// as given and persisted in one batched call. A failed persist leaves the
// visual order in place and reports the error; the next full fetch corrects
// it. This deliberately diverges from the rollback discipline used elsewhere.
func (s *CategoriesService) ReorderTasks(ctx context.Context, categoryID string, orderedTaskIDs []string) error {
	if err := s.guardWritable(categoryID); err != nil {
		return err
	}

	refs := make([]entities.TaskOrderRef, len(orderedTaskIDs))
	for i, id := range orderedTaskIDs {
		refs[i] = entities.TaskOrderRef{ID: id, Order: i}
	}

	s.mu.Lock()
	s.updateCategoryLocked(categoryID, func(category *entities.Category) {
		byID := make(map[string]entities.Task, len(category.Tasks))
		for _, task := range category.Tasks {
			byID[task.ID] = task
		}
		reordered := make([]entities.Task, 0, len(refs))
		for _, ref := range refs {
			task, ok := byID[ref.ID]
			if !ok {
				continue
			}
			order := ref.Order
			task.Order = &order
			reordered = append(reordered, task)
		}
		if len(reordered) == len(category.Tasks) {
			category.Tasks = reordered
		}
	})
	s.mu.Unlock()

	_, err := s.client.Post(ctx, s.client.Routes().CategoryTasksReorder(categoryID), map[string]any{"data": refs})
	if err != nil {
		s.logger.Warnw("persist reorder failed, keeping visual order until next fetch",
			"category_id", categoryID, "error", err.Error())
		return err
	}

	s.store.Invalidate()
	return nil
}

func (s *CategoriesService) restore(snapshot []entities.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = snapshot
}

func (s *CategoriesService) guardWritable(categoryID string) error {
	s.mu.Lock()
	fallback := s.usingFallback
	s.mu.Unlock()
	if fallback {
		return entities.ErrOffline
	}
	if (entities.Category{ID: categoryID}).IsSample() {
		return entities.ErrReadOnlySample
	}
	return nil
}

func (s *CategoriesService) updateCategoryLocked(categoryID string, fn func(*entities.Category)) {
	for i := range s.categories {
		if s.categories[i].ID == categoryID {
			fn(&s.categories[i])
			return
		}
	}
}

func (s *CategoriesService) updateTaskLocked(categoryID, taskID string, fn func(*entities.Task)) {
	s.updateCategoryLocked(categoryID, func(category *entities.Category) {
		for i := range category.Tasks {
			if category.Tasks[i].ID == taskID {
				fn(&category.Tasks[i])
				return
			}
		}
	})
}

// sampleCategories is the read-only set shown when the network is
// unreachable. The sample- prefix keeps it distinguishable from real data.
func sampleCategories() []entities.Category {
	build := func(id, title string, taskTitles ...string) entities.Category {
		tasks := make([]entities.Task, len(taskTitles))
		for i, taskTitle := range taskTitles {
			order := i
			tasks[i] = entities.Task{
				ID:     fmt.Sprintf("%s-%d", id, i+1),
				Title:  taskTitle,
				Status: entities.TaskStatusPendiente,
				Order:  &order,
			}
		}
		return entities.Category{ID: id, Title: title, Tasks: tasks, TasksCount: len(tasks)}
	}

	return []entities.Category{
		build("sample-boda", "Boda", "Zapatos de charol", "Traje recoger", "Ir por Gabo"),
		build("sample-casa", "Casa", "Rotoplas", "Lavavajillas"),
		build("sample-silverado", "Silverado", "Soportes motor", "Aceite transmision"),
		build("sample-gatos", "Gatos", "Camita"),
	}
}
