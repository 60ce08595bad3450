package holdings

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

var (
	ErrDuplicate   = errors.New("holding already exists")
	ErrNotFound    = errors.New("holding not found")
	ErrInvalidCode = errors.New("fund code must be 6 digits")
	ErrInvalidType = errors.New("unknown holding type")
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// Manager owns the user's holding list with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	holdings []model.Holding
	filePath string
}

// NewManager creates a Manager, loading holdings from disk or seeding defaults
// when no file exists yet.
func NewManager(filePath string, defaults []model.Holding) (*Manager, error) {
	list, exists, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	if !exists {
		list = append([]model.Holding(nil), defaults...)
	}
	for i := range list {
		list[i] = normalize(list[i])
		if !model.IsSectorType(list[i].Type) {
			list[i].Type = model.DefaultSectorType
		}
	}

	m := &Manager{holdings: list, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// List returns a copy of the current holdings.
func (m *Manager) List() []model.Holding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Holding(nil), m.holdings...)
}

// Codes returns the fund codes in list order.
func (m *Manager) Codes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	codes := make([]string, len(m.holdings))
	for i, h := range m.holdings {
		codes[i] = h.Code
	}
	return codes
}

// Add appends a holding. An empty type means the default sector type; any
// other type must be one of model.SectorTypes.
func (m *Manager) Add(h model.Holding) (model.Holding, error) {
	h = normalize(h)
	if !codePattern.MatchString(h.Code) {
		return model.Holding{}, fmt.Errorf("%w: %q", ErrInvalidCode, h.Code)
	}
	if h.Type == "" {
		h.Type = model.DefaultSectorType
	}
	if !model.IsSectorType(h.Type) {
		return model.Holding{}, fmt.Errorf("%w: %q", ErrInvalidType, h.Type)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.holdings {
		if existing.Code == h.Code {
			return model.Holding{}, fmt.Errorf("%w: %s", ErrDuplicate, h.Code)
		}
	}
	m.holdings = append(m.holdings, h)
	if err := m.save(); err != nil {
		m.holdings = m.holdings[:len(m.holdings)-1]
		return model.Holding{}, fmt.Errorf("save holdings: %w", err)
	}
	return h, nil
}

// Remove deletes the holding with the given code.
func (m *Manager) Remove(code string) (model.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, h := range m.holdings {
		if h.Code != code {
			continue
		}
		prev := m.holdings
		m.holdings = append(append([]model.Holding(nil), prev[:i]...), prev[i+1:]...)
		if err := m.save(); err != nil {
			m.holdings = prev
			return model.Holding{}, fmt.Errorf("save holdings: %w", err)
		}
		return h, nil
	}
	return model.Holding{}, fmt.Errorf("%w: %s", ErrNotFound, code)
}

func normalize(h model.Holding) model.Holding {
	h.Code = strings.TrimSpace(h.Code)
	h.Name = strings.TrimSpace(h.Name)
	h.Type = strings.TrimSpace(h.Type)
	if h.Name == "" {
		h.Name = h.Code
	}
	return h
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.holdings)
}
