package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/model"

	"github.com/shopspring/decimal"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	BaseNAV   float64
	Step      float64 // daily NAV change of generated history
	History   map[string][]model.PricePoint
	Estimates map[string]*model.Estimate
	Flows     []model.SectorFlow
	Fail      map[string]bool // codes whose fetches fail
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchNAVHistory(_ context.Context, code string, days int) ([]model.PricePoint, error) {
	if m.Fail[code] {
		return nil, fmt.Errorf("mock history %s: %w", code, ErrNoData)
	}
	if h, ok := m.History[code]; ok {
		return h, nil
	}
	return generateMockHistory(m.BaseNAV, m.Step, days), nil
}

func (m *MockFetcher) FetchEstimate(_ context.Context, code string) (*model.Estimate, error) {
	if m.Fail[code] {
		return nil, fmt.Errorf("mock estimate %s: %w", code, ErrNoData)
	}
	if e, ok := m.Estimates[code]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("mock estimate %s: %w", code, ErrNoData)
}

func (m *MockFetcher) FetchSectorFlows(_ context.Context) ([]model.SectorFlow, error) {
	if m.Flows != nil {
		return m.Flows, nil
	}
	return []model.SectorFlow{
		{Code: "BK0732", Name: "贵金属", Pct: 1.2, MainNet: decimal.NewFromInt(620000000), MainPct: 3.1},
		{Code: "BK1036", Name: "半导体", Pct: -0.8, MainNet: decimal.NewFromInt(-810000000), MainPct: -2.4},
	}, nil
}

func generateMockHistory(base, step float64, count int) []model.PricePoint {
	if base <= 0 {
		base = 1
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.PricePoint{
			Date: today.AddDate(0, 0, -(count - i)),
			NAV:  base * (1 + float64(i-count/2)*step),
		}
	}
	return points
}
