package heat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/allenshen-svg/fund-assistant/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validDoc = `{
  "updated_at": "2025-06-03T08:30:00+08:00",
  "heatmap": [
    {"tag": "黄金", "temperature": 30, "sentiment": -0.2, "trend": "down"},
    {"tag": "AI算力", "temperature": 120, "sentiment": 0.9},
    {"tag": "", "temperature": 99}
  ],
  "events": [{"id": "e1", "title": "降息预期", "impact": 2, "confidence": 0.7}]
}`

func TestParse_Valid(t *testing.T) {
	doc, err := Parse([]byte(validDoc))
	require.NoError(t, err)
	require.Len(t, doc.Heatmap, 2)
	assert.Equal(t, "AI算力", doc.Heatmap[0].Tag)
	assert.Equal(t, 100.0, doc.Heatmap[0].Temperature)
	assert.Equal(t, model.HeatTrend(""), doc.Heatmap[0].Trend)
	assert.Equal(t, model.HeatDown, doc.Heatmap[1].Trend)
	assert.Equal(t, 2025, doc.UpdatedAt.Year())
	require.Len(t, doc.Events, 1)
	assert.Equal(t, "降息预期", doc.Events[0].Title)
}

func TestParse_RepairsMalformedJSON(t *testing.T) {
	broken := `{"heatmap": [{"tag": "军工", "temperature": 78, "trend": "up",},]`
	doc, err := Parse([]byte(broken))
	require.NoError(t, err)
	require.Len(t, doc.Heatmap, 1)
	assert.Equal(t, "军工", doc.Heatmap[0].Tag)
	assert.Equal(t, model.HeatUp, doc.Heatmap[0].Trend)
}

func TestDeriveTrends(t *testing.T) {
	prev := &model.HotEvents{Heatmap: []model.HeatEntry{
		{Tag: "黄金", Temperature: 60},
		{Tag: "医药", Temperature: 70},
		{Tag: "消费", Temperature: 50},
	}}
	cur := []model.HeatEntry{
		{Tag: "黄金", Temperature: 66},
		{Tag: "医药", Temperature: 64},
		{Tag: "消费", Temperature: 55},
		{Tag: "军工", Temperature: 70},
		{Tag: "债券", Temperature: 40, Trend: model.HeatUp},
	}
	got := DeriveTrends(cur, prev)
	want := []model.HeatTrend{model.HeatUp, model.HeatDown, model.HeatStable, model.HeatNew, model.HeatUp}
	for i, w := range want {
		assert.Equal(t, w, got[i].Trend, got[i].Tag)
	}

	noPrev := DeriveTrends(cur[:1], nil)
	assert.Equal(t, model.HeatStable, noPrev[0].Trend)
	assert.Equal(t, model.HeatTrend(""), cur[0].Trend, "input must not be modified")
}

func TestSource_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot_events.json")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0644))

	src := NewSource(path, nil, zap.NewNop())
	doc, fallback := src.Load(context.Background())
	assert.False(t, fallback)
	require.Len(t, doc.Heatmap, 2)
	assert.Equal(t, model.HeatStable, doc.Heatmap[0].Trend)

	// Second load compares against the first document.
	hotter := `{"heatmap": [{"tag": "AI算力", "temperature": 80}, {"tag": "券商", "temperature": 60}]}`
	require.NoError(t, os.WriteFile(path, []byte(hotter), 0644))
	doc, _ = src.Load(context.Background())
	assert.Equal(t, model.HeatDown, doc.Heatmap[0].Trend)
	assert.Equal(t, model.HeatNew, doc.Heatmap[1].Trend)
}

func TestSource_LoadHTTPAndFallback(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(validDoc))
	}))
	defer srv.Close()

	src := NewSource(srv.URL, srv.Client(), zap.NewNop())
	doc, fallback := src.Load(context.Background())
	require.False(t, fallback)
	assert.Len(t, doc.Heatmap, 2)

	// Failures serve the last good document.
	status.Store(http.StatusInternalServerError)
	doc, fallback = src.Load(context.Background())
	assert.True(t, fallback)
	assert.Len(t, doc.Heatmap, 2)

	// Without any good document the built-in heatmap is used.
	cold := NewSource(srv.URL, srv.Client(), zap.NewNop())
	doc, fallback = cold.Load(context.Background())
	assert.True(t, fallback)
	assert.Equal(t, Fallback().Heatmap, doc.Heatmap)
}

func TestSource_EmptyLocation(t *testing.T) {
	doc, fallback := NewSource("", nil, nil).Load(context.Background())
	assert.True(t, fallback)
	assert.NotEmpty(t, doc.Heatmap)
}
