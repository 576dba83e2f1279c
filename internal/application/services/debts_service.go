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

// DebtsService keeps the shared debt ledger: charges and payments sorted
// newest first, with the running balance derived locally.
type DebtsService struct {
	client   *api.Client
	validate *validator.Validate
	logger   *logger.Logger

	mu      sync.Mutex
	entries []entities.DebtEntry
}

// NewDebtsService creates a new debts service
func NewDebtsService(client *api.Client, appLogger *logger.Logger) *DebtsService {
	return &DebtsService{
		client:   client,
		validate: validator.New(),
		logger:   appLogger.WithComponent("debts"),
	}
}

// Entries returns a copy of the current ledger
func (s *DebtsService) Entries() []entities.DebtEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.DebtEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Balance computes the ledger totals from the local entries
func (s *DebtsService) Balance() entities.DebtBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return normalize.ComputeDebtBalance(s.entries)
}

// Fetch loads the ledger from the server. Entries without a usable id are
// dropped rather than rendered as ghosts.
func (s *DebtsService) Fetch(ctx context.Context) ([]entities.DebtEntry, error) {
	data, err := s.client.Get(ctx, s.client.Routes().Debts(""))
	if err != nil {
		return nil, err
	}

	var rawList []any
	if err := json.Unmarshal(data, &rawList); err != nil {
		return nil, fmt.Errorf("decode debts: %w", err)
	}

	entries := make([]entities.DebtEntry, 0, len(rawList))
	for _, raw := range rawList {
		if entry := normalize.NormalizeDebtEntry(raw); entry != nil {
			entries = append(entries, *entry)
		}
	}
	entries = normalize.SortDebtEntries(entries)

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	return s.Entries(), nil
}

// Create records a new charge or payment
func (s *DebtsService) Create(ctx context.Context, req ports.CreateDebtEntryRequest) (entities.DebtEntry, error) {
	if err := s.validate.Struct(req); err != nil {
		return entities.DebtEntry{}, fmt.Errorf("invalid entry: %w", err)
	}

	data, err := s.client.Post(ctx, s.client.Routes().Debts(""), map[string]any{"data": req})
	if err != nil {
		return entities.DebtEntry{}, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return entities.DebtEntry{}, fmt.Errorf("decode created entry: %w", err)
	}
	entry := normalize.NormalizeDebtEntry(raw)
	if entry == nil {
		return entities.DebtEntry{}, fmt.Errorf("create debt entry: %w", entities.ErrMissingID)
	}

	s.mu.Lock()
	s.entries = normalize.SortDebtEntries(append(s.entries, *entry))
	s.mu.Unlock()

	s.logger.Infow("debt entry created", "entry_id", entry.ID, "type", entry.Type, "amount", entry.Amount)
	return *entry, nil
}

// Update patches an existing entry optimistically
func (s *DebtsService) Update(ctx context.Context, entryID string, req ports.CreateDebtEntryRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}

	return optimistic.Run(ctx, optimistic.Mutation[[]entities.DebtEntry]{
		Snapshot: s.Entries,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i := range s.entries {
				if s.entries[i].ID == entryID {
					s.entries[i].Title = req.Title
					s.entries[i].Amount = req.Amount
					s.entries[i].Type = entities.DebtType(req.Type)
					if req.Date != "" {
						s.entries[i].Date = req.Date
					}
					break
				}
			}
			s.entries = normalize.SortDebtEntries(s.entries)
		},
		Request: func(ctx context.Context) ([]entities.DebtEntry, error) {
			_, err := s.client.Patch(ctx, s.client.Routes().Debt(entryID), map[string]any{"data": req})
			return nil, err
		},
		Rollback: s.restore,
	})
}

// Delete removes an entry optimistically
func (s *DebtsService) Delete(ctx context.Context, entryID string) error {
	return optimistic.Run(ctx, optimistic.Mutation[[]entities.DebtEntry]{
		Snapshot: s.Entries,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			remaining := s.entries[:0:0]
			for _, entry := range s.entries {
				if entry.ID != entryID {
					remaining = append(remaining, entry)
				}
			}
			s.entries = remaining
		},
		Request: func(ctx context.Context) ([]entities.DebtEntry, error) {
			_, err := s.client.Delete(ctx, s.client.Routes().Debt(entryID))
			return nil, err
		},
		Rollback: s.restore,
	})
}

func (s *DebtsService) restore(snapshot []entities.DebtEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = snapshot
}
