package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// JSONFileStore keeps the entry list in a single JSON document.
type JSONFileStore struct {
	path string
}

// NewJSONFileStore creates a store backed by path.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

type jsonDocument struct {
	Entries   []model.PredictionEntry `json:"entries"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Load reads the entries. Returns an empty list if the file doesn't exist.
func (s *JSONFileStore) Load(_ context.Context) ([]model.PredictionEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return doc.Entries, nil
}

// Save writes the entries via a temp file and rename.
func (s *JSONFileStore) Save(_ context.Context, entries []model.PredictionEntry) error {
	doc := jsonDocument{Entries: entries, UpdatedAt: time.Now()}
	if doc.Entries == nil {
		doc.Entries = []model.PredictionEntry{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
