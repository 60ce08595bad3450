package strategy

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Config holds the voter weights and decision thresholds.
type Config struct {
	RSIWeight   float64
	TrendWeight float64
	HeatWeight  float64

	BuyThreshold    float64 // normalized score above which buy is considered
	StrongThreshold float64 // normalized score beyond which the label is strong

	BuyMinConfidence  int
	SellMinConfidence int
	MaxConfidence     int

	FlowThreshold decimal.Decimal // absolute net sector inflow, CNY
}

// DefaultConfig returns the standard voter configuration.
func DefaultConfig() Config {
	return Config{
		RSIWeight:         0.35,
		TrendWeight:       0.40,
		HeatWeight:        0.25,
		BuyThreshold:      0.18,
		StrongThreshold:   0.35,
		BuyMinConfidence:  50,
		SellMinConfidence: 45,
		MaxConfidence:     95,
		FlowThreshold:     decimal.New(5, 8),
	}
}

// WithWeights returns a copy of c using the given factor weights.
func (c Config) WithWeights(rsi, trend, heat float64) Config {
	c.RSIWeight, c.TrendWeight, c.HeatWeight = rsi, trend, heat
	return c
}

// Validate checks that the weights sum to 1 and thresholds are ordered.
func (c Config) Validate() error {
	if c.RSIWeight < 0 || c.TrendWeight < 0 || c.HeatWeight < 0 {
		return errors.New("strategy weights must be non-negative")
	}
	if math.Abs(c.RSIWeight+c.TrendWeight+c.HeatWeight-1) > 1e-6 {
		return errors.New("strategy weights must sum to 1")
	}
	if c.BuyThreshold <= 0 || c.StrongThreshold < c.BuyThreshold {
		return errors.New("strategy thresholds must satisfy 0 < buy <= strong")
	}
	if c.MaxConfidence <= 0 || c.MaxConfidence > 100 {
		return errors.New("max confidence must be in (0, 100]")
	}
	return nil
}
