package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/calendar"
	"github.com/allenshen-svg/fund-assistant/internal/model"
	"github.com/allenshen-svg/fund-assistant/internal/planner"
	"github.com/allenshen-svg/fund-assistant/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_SplitsLongMessages(t *testing.T) {
	var (
		mu    sync.Mutex
		texts []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["chat_id"])
		assert.Equal(t, "HTML", payload["parse_mode"])
		mu.Lock()
		texts = append(texts, payload["text"])
		mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "", nil)
	tn.APIBase = srv.URL

	line := strings.Repeat("基", 99) + "\n"
	require.NoError(t, tn.Send(context.Background(), strings.Repeat(line, 60)))
	require.Len(t, texts, 2)
	for _, txt := range texts {
		assert.LessOrEqual(t, len([]rune(txt)), maxMessageLen)
	}
}

func TestSend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "", nil)
	tn.APIBase = srv.URL
	err := tn.Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendWithRetry_RetriesOnlyFailedChunk(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts int
		texts    []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 2 {
			http.Error(w, `{"ok":false}`, http.StatusBadGateway)
			return
		}
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		texts = append(texts, payload["text"])
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "", nil)
	tn.APIBase = srv.URL
	tn.backoff = time.Millisecond

	first := strings.Repeat("甲", maxMessageLen-1) + "\n"
	second := strings.Repeat("乙", 10)
	require.NoError(t, tn.SendWithRetry(context.Background(), first+second, 2))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
	require.Len(t, texts, 2)
	assert.Equal(t, strings.TrimRight(first, "\n"), texts[0])
	assert.Equal(t, second, texts[1])
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	chunks := splitMessage("aaaa\nbbbb\ncccccccccccc", 10)
	assert.Equal(t, []string{"aaaa\nbbbb", "cccccccccc", "cc"}, chunks)
}

func TestStartPolling_FiltersChat(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		polls   int
		replies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			polls++
			if polls == 1 {
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":1,"message":{"text":"/stats","chat":{"id":42}}},
					{"update_id":2,"message":{"text":"/stats","chat":{"id":7}}}
				]}`))
				return
			}
			cancel()
			w.Write([]byte(`{"ok":true,"result":[]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			replies = append(replies, payload["text"])
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "", nil)
	tn.APIBase = srv.URL

	var handled []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		tn.StartPolling(ctx, func(_ context.Context, cmd string) string {
			handled = append(handled, cmd)
			return "ok"
		})
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}

	assert.Equal(t, []string{"/stats"}, handled)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ok"}, replies)
}

func TestFormatPlans(t *testing.T) {
	pct := 1.5
	plans := []model.Plan{{
		Holding:  model.Holding{Code: "000216", Name: "黄金<A>", Type: "黄金"},
		Vote:     model.VoteResult{Action: model.ActionBuy, Label: "买入", Confidence: 62, Crowding: "热度过高"},
		Trend:    &model.TrendSnapshot{Chg5D: &pct},
		DirText:  "上涨",
		Priority: 1,
		Urgency:  model.UrgencyMid,
	}}
	msg := FormatPlans(Report{
		Date:     "2025-03-04",
		Overview: planner.BuildOverview(plans),
		Plans:    plans,
		Events:   []model.HotEvent{{Title: "美联储降息", Impact: 2}},
		Failed:   []string{"110022"},
	})
	assert.Contains(t, msg, "2025-03-04")
	assert.Contains(t, msg, "黄金&lt;A&gt;")
	assert.Contains(t, msg, "置信度 62")
	assert.Contains(t, msg, "紧迫度 中")
	assert.Contains(t, msg, "热度过高")
	assert.Contains(t, msg, "110022")
	assert.Contains(t, msg, "美联储降息")
	assert.NotContains(t, msg, "盘中数据")

	msg = FormatPlans(Report{
		Date:   "2025-03-04",
		Market: calendar.MarketStatus{Session: calendar.SessionBreak, Text: "午间休市"},
		Plans:  plans,
	})
	assert.Contains(t, msg, "市场: 午间休市")
	assert.Contains(t, msg, "盘中数据")
}

func TestFormatVerificationAndStats(t *testing.T) {
	assert.Contains(t, FormatVerification(tracker.VerifyOutcome{Skipped: true, Reason: "not a trading day"}), "not a trading day")

	out := tracker.VerifyOutcome{Entry: model.PredictionEntry{
		Date:     "2025-03-03",
		Holdings: map[string]model.HoldingPrediction{"A": {Name: "黄金", Action: model.ActionBuy}},
		Verified: true,
		Verification: &model.Verification{
			NextDate: "2025-03-04",
			Results: map[string]model.HoldingVerdict{
				"A": {Action: model.ActionBuy, NextDayPct: 0.5, Verdict: model.VerdictCorrect, Return: 0.5},
			},
			Correct:            1,
			Accuracy:           100,
			HypotheticalReturn: 0.5,
		},
	}}
	msg := FormatVerification(out)
	assert.Contains(t, msg, "2025-03-03 → 2025-03-04")
	assert.Contains(t, msg, "✅ 黄金 买入 次日 +0.50%")
	assert.Contains(t, msg, "准确率: 100.0%")

	stats := FormatStats(model.TrackerStats{Entries: 5, VerifiedDays: 4, Correct: 6, Wrong: 1, Neutral: 1, Accuracy: 75, AvgReturn: 0.31})
	assert.Contains(t, stats, "准确率: 75.0%")
	assert.Contains(t, stats, "+0.31%")
}

func TestFormatHoldings(t *testing.T) {
	msg := FormatHoldings(nil, planner.ModelPortfolio())
	assert.Contains(t, msg, "暂无持仓")
	assert.Contains(t, msg, "合计 100%")
}
