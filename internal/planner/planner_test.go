package planner

import (
	"testing"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(n int, start, step float64) []model.PricePoint {
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	out := make([]model.PricePoint, n)
	for i := range out {
		out[i] = model.PricePoint{Date: d.AddDate(0, 0, i), NAV: start + float64(i)*step}
	}
	return out
}

func TestPickHeat_GoldOnly(t *testing.T) {
	heatmap := []model.HeatEntry{
		{Tag: "黄金", Temperature: 30, Trend: model.HeatDown, Sentiment: -0.4},
		{Tag: "半导体", Temperature: 80, Trend: model.HeatUp, Sentiment: 0.6},
	}
	heat := PickHeat("黄金", heatmap, DefaultTagMap())
	assert.Equal(t, 30, heat.Temperature)
	assert.Equal(t, model.HeatDown, heat.Trend)
	assert.InDelta(t, -0.4, heat.Sentiment, 1e-9)
	assert.Equal(t, "黄金", heat.Tag)
}

func TestPickHeat_AveragesMatches(t *testing.T) {
	heatmap := []model.HeatEntry{
		{Tag: "AI算力", Temperature: 80, Trend: model.HeatUp, Sentiment: 0.5},
		{Tag: "半导体设备", Temperature: 71, Trend: model.HeatUp, Sentiment: 0.1},
		{Tag: "机器人", Temperature: 60, Trend: model.HeatDown, Sentiment: 0},
		{Tag: "白酒", Temperature: 20, Trend: model.HeatDown},
	}
	heat := PickHeat("AI/科技", heatmap, DefaultTagMap())
	assert.Equal(t, 70, heat.Temperature)
	assert.Equal(t, model.HeatUp, heat.Trend)
	assert.InDelta(t, 0.2, heat.Sentiment, 1e-9)
	assert.Equal(t, "AI算力", heat.Tag)
}

func TestPickHeat_NoMatch(t *testing.T) {
	heat := PickHeat("债券", []model.HeatEntry{{Tag: "黄金", Temperature: 90}}, DefaultTagMap())
	assert.Equal(t, NeutralHeat(), heat)

	// Unknown types match on the type name itself.
	heat = PickHeat("券商", []model.HeatEntry{{Tag: "券商", Temperature: 66, Trend: model.HeatStable}}, DefaultTagMap())
	assert.Equal(t, 66, heat.Temperature)

	// Empty tags never match.
	heat = PickHeat("黄金", []model.HeatEntry{{Tag: "", Temperature: 99}}, DefaultTagMap())
	assert.Equal(t, DefaultTag, heat.Tag)
}

func TestMatchSectorFlow(t *testing.T) {
	flows := []model.SectorFlow{
		{Name: "半导体", MainNet: decimal.NewFromInt(-8e8)},
		{Name: "贵金属", MainNet: decimal.NewFromInt(6e8)},
	}
	f := MatchSectorFlow("黄金", flows, DefaultTagMap())
	require.NotNil(t, f)
	assert.Equal(t, "贵金属", f.Name)

	assert.Nil(t, MatchSectorFlow("医药", flows, DefaultTagMap()))
	assert.Nil(t, MatchSectorFlow("黄金", nil, DefaultTagMap()))
}

func TestBuildPlans_OrderingAndPriority(t *testing.T) {
	holdings := []model.Holding{
		{Code: "A", Name: "hold-no-data", Type: "债券"},
		{Code: "B", Name: "falling", Type: "黄金"},
		{Code: "C", Name: "rising", Type: "宽基"},
		{Code: "D", Name: "falling-hot", Type: "半导体"},
	}
	heatmap := []model.HeatEntry{
		{Tag: "黄金", Temperature: 30, Trend: model.HeatDown},
		{Tag: "宽基", Temperature: 75, Trend: model.HeatUp},
		{Tag: "半导体", Temperature: 40, Trend: model.HeatDown, Sentiment: -0.5},
	}
	hist := map[string][]model.PricePoint{
		"B": history(80, 2, -0.01),
		"C": history(80, 1, 0.005),
		"D": history(80, 2, -0.012),
	}

	plans := BuildPlans(holdings, heatmap, hist, nil, DefaultOptions())
	require.Len(t, plans, 4)

	for i := 1; i < len(plans); i++ {
		prev, cur := plans[i-1], plans[i]
		require.LessOrEqual(t, prev.Vote.Action.Priority(), cur.Vote.Action.Priority(), "action order at %d", i)
		if prev.Vote.Action == cur.Vote.Action {
			assert.GreaterOrEqual(t, prev.RiskScore, cur.RiskScore, "risk order at %d", i)
		}
	}
	for i, p := range plans {
		assert.Equal(t, i+1, p.Priority)
	}

	byCode := map[string]model.Plan{}
	for _, p := range plans {
		byCode[p.Code] = p
	}
	assert.False(t, byCode["A"].HasTrend())
	assert.Equal(t, model.ActionHold, byCode["A"].Vote.Action)
	assert.Equal(t, "--", byCode["A"].Chg5DText)
	assert.Equal(t, model.ActionSell, byCode["B"].Vote.Action)
	assert.Equal(t, model.ActionBuy, byCode["C"].Vote.Action)
	assert.Equal(t, model.UrgencyMid, byCode["C"].Urgency)
}

func TestBuildPlan_FlowText(t *testing.T) {
	flows := []model.SectorFlow{{Name: "黄金", MainNet: decimal.NewFromInt(1234e6)}}
	p := BuildPlan(model.Holding{Code: "000216", Type: "黄金"}, nil, history(30, 1, 0.001), flows, DefaultOptions())
	assert.Equal(t, "+12.3亿", p.SectorFlowText)
	assert.Equal(t, "in", p.SectorFlowDir)
	assert.True(t, p.HasTrend())
	assert.Contains(t, p.Chg5DText, "+")
}

func TestBuildOverview(t *testing.T) {
	mk := func(a model.Action, conf int) model.Plan {
		return model.Plan{Vote: model.VoteResult{Action: a, Confidence: conf}}
	}
	tests := []struct {
		name  string
		plans []model.Plan
		label string
		score int
	}{
		{"empty", nil, OverviewNeutral, 0},
		{"buy dominant", []model.Plan{mk(model.ActionBuy, 60), mk(model.ActionBuy, 70), mk(model.ActionHold, 31)}, OverviewBullish, 54},
		{"lean buy", []model.Plan{mk(model.ActionBuy, 60), mk(model.ActionHold, 30), mk(model.ActionHold, 30)}, OverviewLeanBullish, 40},
		{"sell dominant", []model.Plan{mk(model.ActionSell, 60), mk(model.ActionSell, 60), mk(model.ActionBuy, 60)}, OverviewDefensive, 60},
		{"lean sell", []model.Plan{mk(model.ActionSell, 50), mk(model.ActionHold, 30), mk(model.ActionHold, 30)}, OverviewLeanBearish, 37},
		{"tie", []model.Plan{mk(model.ActionSell, 50), mk(model.ActionBuy, 50)}, OverviewNeutral, 50},
	}
	for _, tt := range tests {
		o := BuildOverview(tt.plans)
		assert.Equal(t, tt.label, o.Label, tt.name)
		assert.Equal(t, tt.score, o.Score, tt.name)
		assert.Equal(t, len(tt.plans), o.Buy+o.Sell+o.Hold, tt.name)
	}
}

func TestUrgency(t *testing.T) {
	assert.Equal(t, model.UrgencyHigh, Urgency(-0.4))
	assert.Equal(t, model.UrgencyMid, Urgency(0.18))
	assert.Equal(t, model.UrgencyLow, Urgency(0.1))
	assert.Equal(t, "高", UrgencyText(model.UrgencyHigh))
}

func TestModelPortfolio(t *testing.T) {
	p := ModelPortfolio()
	assert.Equal(t, 100, p.TotalWeight())
	hs := p.Holdings()
	require.Len(t, hs, 9)
	assert.Equal(t, "022430", hs[0].Code)
	for _, h := range hs {
		assert.True(t, model.IsSectorType(h.Type), h.Type)
	}
}
