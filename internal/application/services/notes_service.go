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

// NotesService keeps the household notes, manzana notes pinned on top.
type NotesService struct {
	client   *api.Client
	validate *validator.Validate
	logger   *logger.Logger

	mu    sync.Mutex
	notes []entities.Note
}

// NewNotesService creates a new notes service
func NewNotesService(client *api.Client, appLogger *logger.Logger) *NotesService {
	return &NotesService{
		client:   client,
		validate: validator.New(),
		logger:   appLogger.WithComponent("notes"),
	}
}

// Notes returns a copy of the current note list
func (s *NotesService) Notes() []entities.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Fetch loads all notes from the server
func (s *NotesService) Fetch(ctx context.Context) ([]entities.Note, error) {
	data, err := s.client.Get(ctx, s.client.Routes().Notes(""))
	if err != nil {
		return nil, err
	}

	var rawList []any
	if err := json.Unmarshal(data, &rawList); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}

	notes := make([]entities.Note, 0, len(rawList))
	for _, raw := range rawList {
		if note := normalize.NormalizeNote(raw); note != nil {
			notes = append(notes, *note)
		}
	}
	notes = normalize.SortNotes(notes)

	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()

	return s.Notes(), nil
}

// Create adds a note and re-sorts the list with the server's copy
func (s *NotesService) Create(ctx context.Context, req ports.CreateNoteRequest) (entities.Note, error) {
	if err := s.validate.Struct(req); err != nil {
		return entities.Note{}, fmt.Errorf("invalid note: %w", err)
	}

	data, err := s.client.Post(ctx, s.client.Routes().Notes(""), map[string]any{"data": req})
	if err != nil {
		return entities.Note{}, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return entities.Note{}, fmt.Errorf("decode created note: %w", err)
	}
	note := normalize.NormalizeNote(raw)
	if note == nil {
		return entities.Note{}, fmt.Errorf("create note: %w", entities.ErrMissingID)
	}

	s.mu.Lock()
	s.notes = normalize.SortNotes(append(s.notes, *note))
	s.mu.Unlock()

	return *note, nil
}

// Update patches a note optimistically
func (s *NotesService) Update(ctx context.Context, noteID string, req ports.CreateNoteRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid note: %w", err)
	}

	return optimistic.Run(ctx, optimistic.Mutation[[]entities.Note]{
		Snapshot: s.Notes,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i := range s.notes {
				if s.notes[i].ID == noteID {
					s.notes[i].Title = req.Title
					s.notes[i].Content = req.Content
					s.notes[i].IsManzana = req.IsManzana
					if req.IsManzana {
						s.notes[i].Type = entities.NoteTypeManzana
					} else {
						s.notes[i].Type = entities.NoteTypeNormal
					}
					break
				}
			}
			s.notes = normalize.SortNotes(s.notes)
		},
		Request: func(ctx context.Context) ([]entities.Note, error) {
			_, err := s.client.Patch(ctx, s.client.Routes().Note(noteID), map[string]any{"data": req})
			return nil, err
		},
		Rollback: s.restore,
	})
}

// Delete removes a note optimistically
func (s *NotesService) Delete(ctx context.Context, noteID string) error {
	return optimistic.Run(ctx, optimistic.Mutation[[]entities.Note]{
		Snapshot: s.Notes,
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			remaining := s.notes[:0:0]
			for _, note := range s.notes {
				if note.ID != noteID {
					remaining = append(remaining, note)
				}
			}
			s.notes = remaining
		},
		Request: func(ctx context.Context) ([]entities.Note, error) {
			_, err := s.client.Delete(ctx, s.client.Routes().Note(noteID))
			return nil, err
		},
		Rollback: s.restore,
	})
}

func (s *NotesService) restore(snapshot []entities.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = snapshot
}
