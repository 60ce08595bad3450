package collector

import (
	"context"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// Fetcher defines the interface for fetching fund market data.
type Fetcher interface {
	// FetchNAVHistory returns up to days NAV points in ascending date order.
	FetchNAVHistory(ctx context.Context, code string, days int) ([]model.PricePoint, error)
	FetchEstimate(ctx context.Context, code string) (*model.Estimate, error)
	FetchSectorFlows(ctx context.Context) ([]model.SectorFlow, error)
	Name() string
}
