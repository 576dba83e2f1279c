package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hogarhub/core/internal/application/optimistic"
	"github.com/hogarhub/core/internal/domain/entities"
	"github.com/hogarhub/core/internal/domain/normalize"
	"github.com/hogarhub/core/internal/infrastructure/api"
	"github.com/hogarhub/core/internal/infrastructure/logger"
	"github.com/hogarhub/core/internal/ports"
)

// SupermarketService keeps the shared shopping list: checked items sink to
// the bottom, stats are derived locally and overridden by the server's copy
// when one arrives.
type SupermarketService struct {
	client   *api.Client
	validate *validator.Validate
	logger   *logger.Logger

	mu          sync.Mutex
	items       []entities.SupermarketItem
	serverStats *entities.SupermarketStats
}

// NewSupermarketService creates a new supermarket service
func NewSupermarketService(client *api.Client, appLogger *logger.Logger) *SupermarketService {
	return &SupermarketService{
		client:   client,
		validate: validator.New(),
		logger:   appLogger.WithComponent("supermarket"),
	}
}

// Items returns a copy of the current list
func (s *SupermarketService) Items() []entities.SupermarketItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entities.CloneSupermarketItems(s.items)
}

// Stats returns the server stats when present, otherwise the locally
// computed ones
func (s *SupermarketService) Stats() entities.SupermarketStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.serverStats != nil {
		return *s.serverStats
	}
	return normalize.ComputeSupermarketStats(s.items)
}

// Fetch loads the shopping list. The server may respond with a bare item
// array or with {items, stats}; both shapes are accepted.
func (s *SupermarketService) Fetch(ctx context.Context) ([]entities.SupermarketItem, error) {
	data, err := s.client.Get(ctx, s.client.Routes().Supermarket(""))
	if err != nil {
		return nil, err
	}

	rawItems, stats, err := decodeSupermarketPayload(data)
	if err != nil {
		return nil, err
	}

	items := make([]entities.SupermarketItem, 0, len(rawItems))
	for _, raw := range rawItems {
		if item := normalize.NormalizeSupermarketItem(raw); item != nil {
			items = append(items, *item)
		}
	}
	items = normalize.SortSupermarketItems(items)

	s.mu.Lock()
	s.items = items
	s.serverStats = stats
	s.mu.Unlock()

	return entities.CloneSupermarketItems(items), nil
}

func decodeSupermarketPayload(data json.RawMessage) ([]any, *entities.SupermarketStats, error) {
	var rawItems []any
	if err := json.Unmarshal(data, &rawItems); err == nil {
		return rawItems, nil, nil
	}

	var wrapped struct {
		Items []any                      `json:"items"`
		Stats *entities.SupermarketStats `json:"stats"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, nil, fmt.Errorf("decode supermarket payload: %w", err)
	}
	return wrapped.Items, wrapped.Stats, nil
}

// Create adds an item to the list
func (s *SupermarketService) Create(ctx context.Context, req ports.CreateSupermarketItemRequest) (entities.SupermarketItem, error) {
	if err := s.validate.Struct(req); err != nil {
		return entities.SupermarketItem{}, fmt.Errorf("invalid item: %w", err)
	}

	data, err := s.client.Post(ctx, s.client.Routes().Supermarket(""), map[string]any{"data": req})
	if err != nil {
		return entities.SupermarketItem{}, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return entities.SupermarketItem{}, fmt.Errorf("decode created item: %w", err)
	}
	item := normalize.NormalizeSupermarketItem(raw)
	if item == nil {
		return entities.SupermarketItem{}, fmt.Errorf("create item: %w", entities.ErrMissingID)
	}

	s.mu.Lock()
	s.items = normalize.SortSupermarketItems(append(s.items, *item))
	s.serverStats = nil
	s.mu.Unlock()

	return item.Clone(), nil
}

// Toggle flips an item's checked state optimistically. The server's copy of
// the item, when returned, replaces the optimistic one.
func (s *SupermarketService) Toggle(ctx context.Context, itemID string) error {
	var nextChecked bool
	return optimistic.Run(ctx, optimistic.Mutation[[]entities.SupermarketItem]{
		Snapshot: s.Items,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i := range s.items {
				if s.items[i].ID == itemID {
					nextChecked = !s.items[i].Checked
					s.items[i].Checked = nextChecked
					break
				}
			}
			s.items = normalize.SortSupermarketItems(s.items)
			s.serverStats = nil
		},
		Request: func(ctx context.Context) ([]entities.SupermarketItem, error) {
			data, err := s.client.Patch(ctx, s.client.Routes().SupermarketItem(itemID),
				map[string]any{"data": map[string]any{"checked": nextChecked}})
			if err != nil {
				return nil, err
			}
			var raw any
			if err := json.Unmarshal(data, &raw); err != nil {
				return nil, nil
			}
			item := normalize.NormalizeSupermarketItem(raw)
			if item == nil {
				return nil, nil
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			for i := range s.items {
				if s.items[i].ID == item.ID {
					s.items[i] = *item
					break
				}
			}
			return nil, nil
		},
		Rollback: s.restore,
	})
}

// Update patches an item optimistically
func (s *SupermarketService) Update(ctx context.Context, itemID string, req ports.CreateSupermarketItemRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid item: %w", err)
	}

	return optimistic.Run(ctx, optimistic.Mutation[[]entities.SupermarketItem]{
		Snapshot: s.Items,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i := range s.items {
				if s.items[i].ID == itemID {
					applyItemRequest(&s.items[i], req)
					break
				}
			}
			s.items = normalize.SortSupermarketItems(s.items)
			s.serverStats = nil
		},
		Request: func(ctx context.Context) ([]entities.SupermarketItem, error) {
			_, err := s.client.Patch(ctx, s.client.Routes().SupermarketItem(itemID), map[string]any{"data": req})
			return nil, err
		},
		Rollback: s.restore,
	})
}

// Delete removes an item optimistically
func (s *SupermarketService) Delete(ctx context.Context, itemID string) error {
	return optimistic.Run(ctx, optimistic.Mutation[[]entities.SupermarketItem]{
		Snapshot: s.Items,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			remaining := s.items[:0:0]
			for _, item := range s.items {
				if item.ID != itemID {
					remaining = append(remaining, item)
				}
			}
			s.items = remaining
			s.serverStats = nil
		},
		Request: func(ctx context.Context) ([]entities.SupermarketItem, error) {
			_, err := s.client.Delete(ctx, s.client.Routes().SupermarketItem(itemID))
			return nil, err
		},
		Rollback: s.restore,
	})
}

func applyItemRequest(item *entities.SupermarketItem, req ports.CreateSupermarketItemRequest) {
	item.Name = req.Name
	item.Quantity = req.Quantity
	if req.Unit != "" {
		item.Unit = req.Unit
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Store != nil {
		item.Store = *req.Store
	}
	item.Price = req.Price
	item.Priority = req.Priority
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	item.Recurring = req.Recurring
	item.Tags = append([]string(nil), req.Tags...)
	item.Checked = req.Checked
}

func (s *SupermarketService) restore(snapshot []entities.SupermarketItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snapshot
	s.serverStats = nil
}
