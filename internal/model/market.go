package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single NAV observation for a fund.
type PricePoint struct {
	Date time.Time `json:"date"`
	NAV  float64   `json:"nav"`
}

// Estimate is an intraday NAV estimate published during trading hours.
type Estimate struct {
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	NAV      float64   `json:"nav"`      // last confirmed NAV
	Estimate float64   `json:"estimate"` // estimated NAV
	Pct      float64   `json:"pct"`      // estimated change, percent
	Time     time.Time `json:"time"`
}

// SectorFlow is the institutional capital flow of one sector board.
type SectorFlow struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Pct     float64         `json:"pct"`
	MainNet decimal.Decimal `json:"main_net"` // signed net inflow, CNY
	MainPct float64         `json:"main_pct"`
}
