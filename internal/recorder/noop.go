package recorder

import "github.com/allenshen-svg/fund-assistant/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunRecord) error                      { return nil }
func (n *NoopRecorder) RecordVerification(_ *model.PredictionEntry) error { return nil }
func (n *NoopRecorder) RecordHoldingEvent(_ *HoldingEvent) error          { return nil }
func (n *NoopRecorder) Close() error                                      { return nil }
