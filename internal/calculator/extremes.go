package calculator

import (
	"errors"
	"math"
)

// CalculateRange returns the high and low over the full price window.
func CalculateRange(prices []float64) (high, low float64, err error) {
	if len(prices) == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range prices {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	return high, low, nil
}

// Drawdown returns the percentage distance of latest below high (<= 0).
func Drawdown(latest, high float64) (float64, error) {
	if high <= 0 {
		return 0, errors.New("high must be positive")
	}
	return (latest - high) / high * 100, nil
}

// Rebound returns the percentage distance of latest above low (>= 0).
func Rebound(latest, low float64) (float64, error) {
	if low <= 0 {
		return 0, errors.New("low must be positive")
	}
	return (latest - low) / low * 100, nil
}

// PercentChange returns the change of the latest price versus the price n
// sessions earlier. Nil when the history holds n or fewer prices.
func PercentChange(prices []float64, n int) *float64 {
	l := len(prices)
	if n <= 0 || l <= n {
		return nil
	}
	base := prices[l-1-n]
	if base == 0 {
		return nil
	}
	v := (prices[l-1] - base) / base * 100
	return &v
}
