package model

import "time"

// HeatTrend is the direction sector attention is moving in.
type HeatTrend string

const (
	HeatUp     HeatTrend = "up"
	HeatDown   HeatTrend = "down"
	HeatStable HeatTrend = "stable"
	HeatNew    HeatTrend = "new"
)

// HeatEntry is one tag of the sector heatmap.
type HeatEntry struct {
	Tag         string    `json:"tag"`
	Temperature float64   `json:"temperature"` // 0..100
	Sentiment   float64   `json:"sentiment"`   // roughly -1..1
	Trend       HeatTrend `json:"trend"`
}

// HeatInfo is the heat resolved for one holding type.
type HeatInfo struct {
	Temperature int       `json:"temperature"`
	Trend       HeatTrend `json:"trend"`
	Sentiment   float64   `json:"sentiment"`
	Tag         string    `json:"tag"`
}

// HotEvent is a macro event extracted upstream from news feeds.
type HotEvent struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Category   string  `json:"category,omitempty"`
	Impact     float64 `json:"impact"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
	Advice     string  `json:"advice,omitempty"`
}

// HotEvents is the heatmap document produced by the sentiment pipeline.
type HotEvents struct {
	UpdatedAt time.Time   `json:"updated_at"`
	Heatmap   []HeatEntry `json:"heatmap"`
	Events    []HotEvent  `json:"events"`
}
