package tracker

import "errors"

var (
	ErrSnapshotExists = errors.New("snapshot already exists for date")
	ErrNotTradingDay  = errors.New("not a trading day")
	ErrEntryNotFound  = errors.New("prediction entry not found")
	ErrNoPlans        = errors.New("no plans to snapshot")
)
