package tracker

import (
	"context"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// Store persists the whole entry list. Each call is atomic.
type Store interface {
	Load(ctx context.Context) ([]model.PredictionEntry, error)
	Save(ctx context.Context, entries []model.PredictionEntry) error
}

// MemoryStore keeps entries in memory.
type MemoryStore struct {
	entries []model.PredictionEntry
}

func (s *MemoryStore) Load(_ context.Context) ([]model.PredictionEntry, error) {
	return append([]model.PredictionEntry(nil), s.entries...), nil
}

func (s *MemoryStore) Save(_ context.Context, entries []model.PredictionEntry) error {
	s.entries = append([]model.PredictionEntry(nil), entries...)
	return nil
}
