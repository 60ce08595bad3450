package recorder

import (
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// Run triggers.
const (
	TriggerSchedule = "schedule"
	TriggerCommand  = "command"
	TriggerStartup  = "startup"
)

// RunRecord holds everything produced by one refresh of the plan list.
type RunRecord struct {
	RunID        string
	Trigger      string
	StartedAt    time.Time
	Duration     time.Duration
	HeatFallback bool
	Failed       []string // codes whose market data could not be fetched
	Overview     model.Overview
	Plans        []model.Plan
}

// HoldingEvent records a change to the holdings list.
type HoldingEvent struct {
	Action string // "add" or "remove"
	Code   string
	Name   string
	Type   string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecordVerification(entry *model.PredictionEntry) error
	RecordHoldingEvent(evt *HoldingEvent) error
	Close() error
}
