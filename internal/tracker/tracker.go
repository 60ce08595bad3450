package tracker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/calendar"
	"github.com/allenshen-svg/fund-assistant/internal/model"

	"go.uber.org/zap"
)

// RealizedFunc returns the realized percentage change of code on date.
type RealizedFunc func(code, date string) (float64, bool)

// VerifyOutcome describes what a verification attempt did.
type VerifyOutcome struct {
	Skipped bool
	Reason  string
	Entry   model.PredictionEntry
}

// Skip reasons.
const (
	ReasonNotTradingDay   = "not a trading day"
	ReasonNothingPending  = "no unverified entry"
	ReasonAlreadyVerified = "already verified"
	ReasonTooEarly        = "next trading day not reached"
	ReasonNoNextDay       = "no next trading day"
	ReasonSessionOpen     = "next trading day session not closed"
)

// Tracker snapshots daily votes and verifies them against the next trading
// day's realized moves.
type Tracker struct {
	mu       sync.Mutex
	store    Store
	cal      *calendar.Calendar
	capacity int
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Tracker. A nil calendar uses calendar.Default.
func New(store Store, cal *calendar.Calendar, capacity int, logger *zap.Logger) *Tracker {
	if cal == nil {
		cal = calendar.Default()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		store:    store,
		cal:      cal,
		capacity: capacity,
		logger:   logger,
		now:      time.Now,
	}
}

func (t *Tracker) load(ctx context.Context) (*Ring, error) {
	entries, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return NewRing(t.capacity, entries), nil
}

func (t *Tracker) save(ctx context.Context, r *Ring) error {
	if err := t.store.Save(ctx, r.Entries()); err != nil {
		return fmt.Errorf("save entries: %w", err)
	}
	return nil
}

// Snapshot records the votes of plans under date.
func (t *Tracker) Snapshot(ctx context.Context, date string, plans []model.Plan, overwrite bool) (model.PredictionEntry, error) {
	ok, err := t.cal.IsTradingDate(date)
	if err != nil {
		return model.PredictionEntry{}, err
	}
	if !ok {
		return model.PredictionEntry{}, fmt.Errorf("snapshot %s: %w", date, ErrNotTradingDay)
	}
	if len(plans) == 0 {
		return model.PredictionEntry{}, ErrNoPlans
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ring, err := t.load(ctx)
	if err != nil {
		return model.PredictionEntry{}, err
	}
	if _, exists := ring.Get(date); exists && !overwrite {
		return model.PredictionEntry{}, fmt.Errorf("snapshot %s: %w", date, ErrSnapshotExists)
	}

	entry := model.PredictionEntry{
		Date:      date,
		CreatedAt: t.now(),
		Holdings:  make(map[string]model.HoldingPrediction, len(plans)),
	}
	for _, p := range plans {
		entry.Holdings[p.Code] = model.HoldingPrediction{
			Name:       p.Name,
			Action:     p.Vote.Action,
			Score:      p.Vote.Score,
			Confidence: p.Vote.Confidence,
		}
	}
	entry.OverallScore = OverallScore(plans)
	entry.OverallLabel = OverallLabel(entry.OverallScore)

	for _, e := range ring.Put(entry) {
		t.logger.Info("prediction evicted", zap.String("date", e.Date))
	}
	if err := t.save(ctx, ring); err != nil {
		return model.PredictionEntry{}, err
	}
	t.logger.Info("prediction snapshot",
		zap.String("date", date),
		zap.Int("holdings", len(entry.Holdings)),
		zap.Int("overall", entry.OverallScore),
		zap.Int("retained", ring.Len()),
		zap.Bool("overwrite", overwrite))
	return entry, nil
}

// Verify verifies the most recent unverified entry dated before asOf.
func (t *Tracker) Verify(ctx context.Context, asOf string, realized RealizedFunc) (VerifyOutcome, error) {
	ok, err := t.cal.IsTradingDate(asOf)
	if err != nil {
		return VerifyOutcome{}, err
	}
	if !ok {
		return VerifyOutcome{Skipped: true, Reason: ReasonNotTradingDay}, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ring, err := t.load(ctx)
	if err != nil {
		return VerifyOutcome{}, err
	}
	entries := ring.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Date >= asOf || e.Verified {
			continue
		}
		return t.verify(ctx, ring, e, asOf, realized)
	}
	return VerifyOutcome{Skipped: true, Reason: ReasonNothingPending}, nil
}

// VerifyDate verifies the entry recorded for date.
func (t *Tracker) VerifyDate(ctx context.Context, date string, realized RealizedFunc) (VerifyOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ring, err := t.load(ctx)
	if err != nil {
		return VerifyOutcome{}, err
	}
	e, ok := ring.Get(date)
	if !ok {
		return VerifyOutcome{}, fmt.Errorf("verify %s: %w", date, ErrEntryNotFound)
	}
	if e.Verified {
		return VerifyOutcome{Skipped: true, Reason: ReasonAlreadyVerified, Entry: e}, nil
	}
	return t.verify(ctx, ring, e, t.cal.Key(t.now()), realized)
}

func (t *Tracker) verify(ctx context.Context, ring *Ring, e model.PredictionEntry, asOf string, realized RealizedFunc) (VerifyOutcome, error) {
	next, ok, err := t.cal.NextTradingDate(e.Date)
	if err != nil {
		return VerifyOutcome{}, err
	}
	if !ok {
		return VerifyOutcome{Skipped: true, Reason: ReasonNoNextDay, Entry: e}, nil
	}
	if next > asOf {
		return VerifyOutcome{Skipped: true, Reason: ReasonTooEarly, Entry: e}, nil
	}
	// Intraday moves are provisional until the close.
	now := t.now()
	if next == t.cal.Key(now) && t.cal.Status(now).Session != calendar.SessionClosed {
		return VerifyOutcome{Skipped: true, Reason: ReasonSessionOpen, Entry: e}, nil
	}

	v := &model.Verification{
		VerifiedAt: t.now(),
		NextDate:   next,
		Results:    make(map[string]model.HoldingVerdict, len(e.Holdings)),
	}
	holdings := make(map[string]model.HoldingPrediction, len(e.Holdings))
	var sumReturn float64
	for code, hp := range e.Holdings {
		pct, found := 0.0, false
		if realized != nil {
			pct, found = realized(code, next)
		}
		if !found {
			t.logger.Debug("realized move missing", zap.String("code", code), zap.String("date", next))
		}
		pct = math.Round(pct*100) / 100
		verdict := Judge(hp.Action, pct)
		ret := SignedReturn(hp.Action, pct)
		v.Results[code] = model.HoldingVerdict{
			Action:     hp.Action,
			NextDayPct: pct,
			Verdict:    verdict,
			Return:     ret,
		}
		switch verdict {
		case model.VerdictCorrect:
			v.Correct++
		case model.VerdictWrong:
			v.Wrong++
		default:
			v.Neutral++
		}
		sumReturn += ret
		hp.NextDayPct = &pct
		holdings[code] = hp
	}
	if n := len(e.Holdings); n > 0 {
		v.Accuracy = round1(float64(v.Correct) / float64(n) * 100)
		v.HypotheticalReturn = round2(sumReturn / float64(n))
	}

	e.Holdings = holdings
	e.Verified = true
	e.Verification = v
	ring.Put(e)
	if err := t.save(ctx, ring); err != nil {
		return VerifyOutcome{}, err
	}
	t.logger.Info("prediction verified",
		zap.String("date", e.Date),
		zap.String("next", next),
		zap.Int("correct", v.Correct),
		zap.Int("wrong", v.Wrong),
		zap.Int("neutral", v.Neutral),
		zap.Float64("return", v.HypotheticalReturn))
	return VerifyOutcome{Entry: e}, nil
}

// Stats aggregates all verified entries.
func (t *Tracker) Stats(ctx context.Context) (model.TrackerStats, error) {
	entries, err := t.Entries(ctx)
	if err != nil {
		return model.TrackerStats{}, err
	}
	stats := model.TrackerStats{Entries: len(entries)}
	var sumReturn float64
	for _, e := range entries {
		if !e.Verified || e.Verification == nil {
			continue
		}
		stats.VerifiedDays++
		stats.Correct += e.Verification.Correct
		stats.Wrong += e.Verification.Wrong
		stats.Neutral += e.Verification.Neutral
		sumReturn += e.Verification.HypotheticalReturn
	}
	if total := stats.Correct + stats.Wrong + stats.Neutral; total > 0 {
		stats.Accuracy = round1(float64(stats.Correct) / float64(total) * 100)
	}
	if stats.VerifiedDays > 0 {
		stats.AvgReturn = round2(sumReturn / float64(stats.VerifiedDays))
	}
	return stats, nil
}

// Entries returns all retained entries, oldest first.
func (t *Tracker) Entries(ctx context.Context) ([]model.PredictionEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ring, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	return ring.Entries(), nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
