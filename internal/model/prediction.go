package model

import "time"

// DateLayout is the calendar-date key format used by the prediction tracker.
const DateLayout = "2006-01-02"

// Verdict is the outcome of comparing a prediction to the realized move.
type Verdict string

const (
	VerdictCorrect Verdict = "correct"
	VerdictWrong   Verdict = "wrong"
	VerdictNeutral Verdict = "neutral"
)

// HoldingPrediction is the recorded vote for one fund on a snapshot day.
type HoldingPrediction struct {
	Name       string   `json:"name"`
	Action     Action   `json:"action"`
	Score      float64  `json:"score"`
	Confidence int      `json:"confidence"`
	NextDayPct *float64 `json:"next_day_pct,omitempty"` // filled at verification
}

// HoldingVerdict is the per-fund verification detail.
type HoldingVerdict struct {
	Action     Action  `json:"action"`
	NextDayPct float64 `json:"next_day_pct"`
	Verdict    Verdict `json:"verdict"`
	Return     float64 `json:"return"` // signed by action direction
}

// Verification aggregates the verdicts of one snapshot.
type Verification struct {
	VerifiedAt         time.Time                 `json:"verified_at"`
	NextDate           string                    `json:"next_date"`
	Results            map[string]HoldingVerdict `json:"results"`
	Correct            int                       `json:"correct"`
	Wrong              int                       `json:"wrong"`
	Neutral            int                       `json:"neutral"`
	Accuracy           float64                   `json:"accuracy"`            // percent
	HypotheticalReturn float64                   `json:"hypothetical_return"` // percent
}

// PredictionEntry is one day's snapshot of votes.
type PredictionEntry struct {
	Date         string                       `json:"date"`
	CreatedAt    time.Time                    `json:"created_at"`
	Holdings     map[string]HoldingPrediction `json:"holdings"`
	OverallScore int                          `json:"overall_score"`
	OverallLabel string                       `json:"overall_label"`
	Verified     bool                         `json:"verified"`
	Verification *Verification                `json:"verification,omitempty"`
}

// TrackerStats are rolling statistics over verified entries.
type TrackerStats struct {
	Entries      int     `json:"entries"`
	VerifiedDays int     `json:"verified_days"`
	Correct      int     `json:"correct"`
	Wrong        int     `json:"wrong"`
	Neutral      int     `json:"neutral"`
	Accuracy     float64 `json:"accuracy"`   // percent
	AvgReturn    float64 `json:"avg_return"` // percent per verified day
}
