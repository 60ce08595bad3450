package calculator

import (
	"errors"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// latestSMA returns the trailing SMA or nil when history is shorter than period.
func latestSMA(prices []float64, period int) *float64 {
	v, err := CalculateSMA(prices, period)
	if err != nil {
		return nil
	}
	return &v
}

// MAStatus labels the moving-average arrangement relative to the latest price.
func MAStatus(latest float64, ma5, ma20, ma60 *float64) string {
	switch {
	case bullishStack(latest, ma5, ma20, ma60):
		return model.MABullish
	case bearishStack(latest, ma5, ma20, ma60):
		return model.MABearish
	default:
		return model.MAMixed
	}
}

func bullishStack(latest float64, ma5, ma20, ma60 *float64) bool {
	if ma5 == nil || ma20 == nil || ma60 == nil {
		return false
	}
	return latest > *ma5 && *ma5 > *ma20 && *ma20 > *ma60
}

func bearishStack(latest float64, ma5, ma20, ma60 *float64) bool {
	if ma5 == nil || ma20 == nil || ma60 == nil {
		return false
	}
	return latest < *ma5 && *ma5 < *ma20 && *ma20 < *ma60
}

func extractNAVs(points []model.PricePoint) []float64 {
	navs := make([]float64, len(points))
	for i, p := range points {
		navs[i] = p.NAV
	}
	return navs
}
