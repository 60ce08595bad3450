package tracker

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/calendar"
	"github.com/allenshen-svg/fund-assistant/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T, store Store) *Tracker {
	t.Helper()
	cal, err := calendar.New(nil, nil, time.UTC)
	require.NoError(t, err)
	tr := New(store, cal, 0, nil)
	tr.now = func() time.Time { return time.Date(2025, 3, 20, 16, 0, 0, 0, time.UTC) }
	return tr
}

func plan(code string, action model.Action, score float64) model.Plan {
	return model.Plan{
		Holding: model.Holding{Code: code, Name: "基金" + code, Type: "黄金"},
		Vote:    model.VoteResult{Action: action, Score: score, Confidence: 60},
	}
}

func fixed(moves map[string]float64) RealizedFunc {
	return func(code, date string) (float64, bool) {
		v, ok := moves[code+"@"+date]
		return v, ok
	}
}

func TestRing_CapacityAndOrder(t *testing.T) {
	r := NewRing(30, nil)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var evicted []model.PredictionEntry
	// Insert newest first to exercise ordered insertion.
	for i := 34; i >= 0; i-- {
		d := start.AddDate(0, 0, i).Format(model.DateLayout)
		evicted = append(evicted, r.Put(model.PredictionEntry{Date: d})...)
	}
	require.Equal(t, 30, r.Len())
	assert.Len(t, evicted, 5)

	entries := r.Entries()
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Date, entries[i].Date)
	}
	assert.Equal(t, "2025-02-04", entries[len(entries)-1].Date)
}

func TestRing_EvictsOldest(t *testing.T) {
	r := NewRing(3, nil)
	for _, d := range []string{"2025-03-03", "2025-03-04", "2025-03-05"} {
		assert.Empty(t, r.Put(model.PredictionEntry{Date: d}))
	}
	evicted := r.Put(model.PredictionEntry{Date: "2025-03-06"})
	require.Len(t, evicted, 1)
	assert.Equal(t, "2025-03-03", evicted[0].Date)
	_, ok := r.Get("2025-03-03")
	assert.False(t, ok)
}

func TestRing_ReplacesSameDate(t *testing.T) {
	r := NewRing(30, nil)
	r.Put(model.PredictionEntry{Date: "2025-03-03", OverallScore: 40})
	r.Put(model.PredictionEntry{Date: "2025-03-04"})
	assert.Empty(t, r.Put(model.PredictionEntry{Date: "2025-03-03", OverallScore: 60}))

	require.Equal(t, 2, r.Len())
	e, ok := r.Get("2025-03-03")
	require.True(t, ok)
	assert.Equal(t, 60, e.OverallScore)
}

func TestJudge(t *testing.T) {
	tests := []struct {
		action model.Action
		pct    float64
		want   model.Verdict
	}{
		{model.ActionBuy, 0.5, model.VerdictCorrect},
		{model.ActionBuy, -0.5, model.VerdictWrong},
		{model.ActionBuy, 0.3, model.VerdictNeutral},
		{model.ActionSell, -0.31, model.VerdictCorrect},
		{model.ActionSell, 0.8, model.VerdictWrong},
		{model.ActionSell, 0.1, model.VerdictNeutral},
		{model.ActionHold, 0.9, model.VerdictCorrect},
		{model.ActionHold, -0.99, model.VerdictCorrect},
		{model.ActionHold, 1.2, model.VerdictNeutral},
		{model.ActionHold, -1.2, model.VerdictNeutral},
		{model.ActionHold, -1.6, model.VerdictWrong},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%v", tt.action, tt.pct), func(t *testing.T) {
			assert.Equal(t, tt.want, Judge(tt.action, tt.pct))
		})
	}
}

func TestOverallScore(t *testing.T) {
	plans := []model.Plan{plan("A", model.ActionBuy, 0.1), plan("B", model.ActionBuy, 0.3)}
	s := OverallScore(plans)
	assert.Equal(t, 70, s)
	assert.Equal(t, OverallAggressive, OverallLabel(s))

	assert.Equal(t, 100, OverallScore([]model.Plan{plan("A", model.ActionBuy, 1.2)}))
	assert.Equal(t, 0, OverallScore([]model.Plan{plan("A", model.ActionSell, -0.9)}))
	assert.Equal(t, 50, OverallScore(nil))

	assert.Equal(t, OverallLeanLong, OverallLabel(58))
	assert.Equal(t, OverallNeutral, OverallLabel(42))
	assert.Equal(t, OverallCautious, OverallLabel(30))
	assert.Equal(t, OverallDefensive, OverallLabel(29))
}

func TestSnapshot_Rules(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, &MemoryStore{})
	plans := []model.Plan{plan("000216", model.ActionBuy, 0.2)}

	_, err := tr.Snapshot(ctx, "2025-03-01", plans, false)
	assert.ErrorIs(t, err, ErrNotTradingDay)

	_, err = tr.Snapshot(ctx, "2025-03-03", nil, false)
	assert.ErrorIs(t, err, ErrNoPlans)

	entry, err := tr.Snapshot(ctx, "2025-03-03", plans, false)
	require.NoError(t, err)
	assert.Equal(t, 70, entry.OverallScore)
	assert.Equal(t, model.ActionBuy, entry.Holdings["000216"].Action)

	_, err = tr.Snapshot(ctx, "2025-03-03", plans, false)
	assert.ErrorIs(t, err, ErrSnapshotExists)

	entry, err = tr.Snapshot(ctx, "2025-03-03", []model.Plan{plan("000216", model.ActionSell, -0.3)}, true)
	require.NoError(t, err)
	assert.Equal(t, model.ActionSell, entry.Holdings["000216"].Action)

	entries, err := tr.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 20, entries[0].OverallScore)
}

func TestVerify_BuyCorrectOnce(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, &MemoryStore{})
	_, err := tr.Snapshot(ctx, "2025-03-03", []model.Plan{
		plan("000216", model.ActionBuy, 0.25),
		plan("110022", model.ActionHold, 0.05),
	}, false)
	require.NoError(t, err)

	realized := fixed(map[string]float64{"000216@2025-03-04": 0.5})
	out, err := tr.Verify(ctx, "2025-03-04", realized)
	require.NoError(t, err)
	require.False(t, out.Skipped)

	v := out.Entry.Verification
	require.NotNil(t, v)
	assert.True(t, out.Entry.Verified)
	assert.Equal(t, "2025-03-04", v.NextDate)
	assert.Equal(t, model.VerdictCorrect, v.Results["000216"].Verdict)
	// Missing realized move counts as flat; a flat hold is correct.
	assert.Equal(t, model.VerdictCorrect, v.Results["110022"].Verdict)
	assert.Equal(t, 2, v.Correct)
	assert.InDelta(t, 100.0, v.Accuracy, 1e-9)
	assert.InDelta(t, 0.25, v.HypotheticalReturn, 1e-9)
	require.NotNil(t, out.Entry.Holdings["000216"].NextDayPct)
	assert.InDelta(t, 0.5, *out.Entry.Holdings["000216"].NextDayPct, 1e-9)

	again, err := tr.Verify(ctx, "2025-03-05", fixed(map[string]float64{"000216@2025-03-04": -3}))
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Equal(t, ReasonNothingPending, again.Reason)

	entries, err := tr.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.VerdictCorrect, entries[0].Verification.Results["000216"].Verdict)
}

func TestVerify_Skips(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, &MemoryStore{})

	out, err := tr.Verify(ctx, "2025-03-08", nil)
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Equal(t, ReasonNotTradingDay, out.Reason)

	out, err = tr.Verify(ctx, "2025-03-04", nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonNothingPending, out.Reason)

	_, err = tr.Snapshot(ctx, "2025-03-04", []model.Plan{plan("A", model.ActionBuy, 0.2)}, false)
	require.NoError(t, err)
	// Only entries strictly before asOf are eligible.
	out, err = tr.Verify(ctx, "2025-03-04", nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonNothingPending, out.Reason)
}

func TestVerify_PicksMostRecentAcrossWeekend(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, &MemoryStore{})
	for _, d := range []string{"2025-03-06", "2025-03-07"} {
		_, err := tr.Snapshot(ctx, d, []model.Plan{plan("A", model.ActionSell, -0.3)}, false)
		require.NoError(t, err)
	}

	out, err := tr.Verify(ctx, "2025-03-10", fixed(map[string]float64{"A@2025-03-10": -1.0}))
	require.NoError(t, err)
	require.False(t, out.Skipped)
	assert.Equal(t, "2025-03-07", out.Entry.Date)
	assert.Equal(t, "2025-03-10", out.Entry.Verification.NextDate)
	assert.Equal(t, model.VerdictCorrect, out.Entry.Verification.Results["A"].Verdict)
	assert.InDelta(t, 1.0, out.Entry.Verification.HypotheticalReturn, 1e-9)
}

func TestVerifyDate(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, &MemoryStore{})

	_, err := tr.VerifyDate(ctx, "2025-03-03", nil)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = tr.Snapshot(ctx, "2025-03-03", []model.Plan{plan("A", model.ActionBuy, 0.2)}, false)
	require.NoError(t, err)

	tr.now = func() time.Time { return time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC) }
	out, err := tr.VerifyDate(ctx, "2025-03-03", nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonTooEarly, out.Reason)

	tr.now = func() time.Time { return time.Date(2025, 3, 4, 20, 0, 0, 0, time.UTC) }
	out, err = tr.VerifyDate(ctx, "2025-03-03", fixed(map[string]float64{"A@2025-03-04": -0.6}))
	require.NoError(t, err)
	require.False(t, out.Skipped)
	assert.Equal(t, model.VerdictWrong, out.Entry.Verification.Results["A"].Verdict)

	out, err = tr.VerifyDate(ctx, "2025-03-03", nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonAlreadyVerified, out.Reason)
}

func TestVerify_WaitsForSessionClose(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, &MemoryStore{})
	_, err := tr.Snapshot(ctx, "2025-03-03", []model.Plan{plan("A", model.ActionBuy, 0.2)}, false)
	require.NoError(t, err)
	realized := fixed(map[string]float64{"A@2025-03-04": 0.8})

	tr.now = func() time.Time { return time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC) }
	out, err := tr.Verify(ctx, "2025-03-04", realized)
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Equal(t, ReasonSessionOpen, out.Reason)
	out, err = tr.VerifyDate(ctx, "2025-03-03", realized)
	require.NoError(t, err)
	assert.Equal(t, ReasonSessionOpen, out.Reason)

	entries, err := tr.Entries(ctx)
	require.NoError(t, err)
	assert.False(t, entries[0].Verified)

	tr.now = func() time.Time { return time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC) }
	out, err = tr.VerifyDate(ctx, "2025-03-03", realized)
	require.NoError(t, err)
	require.False(t, out.Skipped)
	assert.Equal(t, model.VerdictCorrect, out.Entry.Verification.Results["A"].Verdict)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, &MemoryStore{})
	for _, d := range []string{"2025-03-03", "2025-03-04", "2025-03-05"} {
		_, err := tr.Snapshot(ctx, d, []model.Plan{
			plan("A", model.ActionBuy, 0.2),
			plan("B", model.ActionSell, -0.2),
		}, false)
		require.NoError(t, err)
	}
	realized := fixed(map[string]float64{
		"A@2025-03-04": 1.0, "B@2025-03-04": -1.0, // both correct, return +1
		"A@2025-03-05": -1.0, "B@2025-03-05": 0.2, // wrong + neutral, return -0.6
	})
	_, err := tr.VerifyDate(ctx, "2025-03-03", realized)
	require.NoError(t, err)
	_, err = tr.VerifyDate(ctx, "2025-03-04", realized)
	require.NoError(t, err)

	stats, err := tr.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Entries)
	assert.Equal(t, 2, stats.VerifiedDays)
	assert.Equal(t, 2, stats.Correct)
	assert.Equal(t, 1, stats.Wrong)
	assert.Equal(t, 1, stats.Neutral)
	assert.InDelta(t, 50.0, stats.Accuracy, 1e-9)
	assert.InDelta(t, 0.2, stats.AvgReturn, 1e-9)
}

func TestStores_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStore(filepath.Join(dir, "nested", "db", "tracker.db"))
	require.NoError(t, err)
	defer sqlite.Close()

	stores := map[string]Store{
		"json":   NewJSONFileStore(filepath.Join(dir, "sub", "predictions.json")),
		"sqlite": sqlite,
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			entries, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, entries)

			tr := newTracker(t, store)
			_, err = tr.Snapshot(ctx, "2025-03-04", []model.Plan{plan("A", model.ActionBuy, 0.2)}, false)
			require.NoError(t, err)
			_, err = tr.Snapshot(ctx, "2025-03-03", []model.Plan{plan("A", model.ActionHold, 0)}, false)
			require.NoError(t, err)
			_, err = tr.Verify(ctx, "2025-03-05", fixed(map[string]float64{"A@2025-03-05": 0.4}))
			require.NoError(t, err)

			entries, err = store.Load(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "2025-03-03", entries[0].Date)
			assert.False(t, entries[0].Verified)
			assert.True(t, entries[1].Verified)
			assert.Equal(t, model.VerdictCorrect, entries[1].Verification.Results["A"].Verdict)
			assert.Equal(t, "基金A", entries[1].Holdings["A"].Name)
		})
	}
}
