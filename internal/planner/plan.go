package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/allenshen-svg/fund-assistant/internal/calculator"
	"github.com/allenshen-svg/fund-assistant/internal/model"
	"github.com/allenshen-svg/fund-assistant/internal/strategy"
)

// Options configures plan building.
type Options struct {
	Strategy strategy.Config
	TagMap   TagMap
}

// DefaultOptions returns the default voter config and tag map.
func DefaultOptions() Options {
	return Options{Strategy: strategy.DefaultConfig(), TagMap: DefaultTagMap()}
}

// BuildPlan runs the indicator engine, the voter and the advisor for one holding.
func BuildPlan(h model.Holding, heatmap []model.HeatEntry, history []model.PricePoint, flows []model.SectorFlow, opts Options) model.Plan {
	heat := PickHeat(h.Type, heatmap, opts.TagMap)
	td := calculator.AnalyzeTrend(history)
	flow := MatchSectorFlow(h.Type, flows, opts.TagMap)
	vote := strategy.Vote(td, heat, flow, opts.Strategy)
	advice := strategy.Advise(h, td, heat, vote)

	p := model.Plan{
		Holding:        h,
		Heat:           heat,
		Trend:          td,
		Vote:           vote,
		Advice:         advice,
		Flow:           flow,
		DirText:        strategy.TrendText(td),
		SwingText:      strategy.SwingText(td),
		MAStatus:       "—",
		RSIText:        missing,
		Chg5DText:      missing,
		Chg20DText:     missing,
		DrawdownText:   missing,
		ReboundText:    missing,
		VolatilityText: missing,
		RiskScore:      advice.RiskScore,
		RiskLevel:      advice.RiskLevel,
		Urgency:        Urgency(vote.Score),
	}
	if td != nil {
		p.MAStatus = td.MAStatus
		p.RSIText = fmt.Sprintf("%.0f", td.RSI)
		p.Chg5DText = SignedPct(td.Chg5D)
		p.Chg20DText = SignedPct(td.Chg20D)
		p.DrawdownText = Pct(td.DrawdownFromHigh)
		p.ReboundText = Pct(td.ReboundFromLow)
		p.VolatilityText = Pct(td.Volatility)
	}
	p.SectorFlowText, p.SectorFlowDir = flowText(flow)
	return p
}

// BuildPlans builds one plan per holding and orders them sell, buy, hold with
// descending risk inside each group. Priority is the 1-based rank after sorting.
func BuildPlans(holdings []model.Holding, heatmap []model.HeatEntry, historyMap map[string][]model.PricePoint, flows []model.SectorFlow, opts Options) []model.Plan {
	plans := make([]model.Plan, 0, len(holdings))
	for _, h := range holdings {
		plans = append(plans, BuildPlan(h, heatmap, historyMap[h.Code], flows, opts))
	}
	SortPlans(plans)
	return plans
}

// SortPlans stable-sorts plans in place and renumbers their priority.
func SortPlans(plans []model.Plan) {
	sort.SliceStable(plans, func(i, j int) bool {
		pi, pj := plans[i].Vote.Action.Priority(), plans[j].Vote.Action.Priority()
		if pi != pj {
			return pi < pj
		}
		return plans[i].RiskScore > plans[j].RiskScore
	})
	for i := range plans {
		plans[i].Priority = i + 1
	}
}

// Overview labels.
const (
	OverviewBullish     = "积极偏多"
	OverviewLeanBullish = "谨慎偏多"
	OverviewDefensive   = "防御优先"
	OverviewLeanBearish = "谨慎偏空"
	OverviewNeutral     = "中性观望"
)

// BuildOverview counts actions and averages confidence across plans.
func BuildOverview(plans []model.Plan) model.Overview {
	var o model.Overview
	total := 0
	for _, p := range plans {
		switch p.Vote.Action {
		case model.ActionBuy:
			o.Buy++
		case model.ActionSell:
			o.Sell++
		default:
			o.Hold++
		}
		total += p.Vote.Confidence
	}
	if len(plans) > 0 {
		o.Score = int(math.Round(float64(total) / float64(len(plans))))
	}

	switch {
	case o.Buy > o.Sell+o.Hold:
		o.Label = OverviewBullish
	case o.Buy > o.Sell:
		o.Label = OverviewLeanBullish
	case o.Sell > o.Buy+o.Hold:
		o.Label = OverviewDefensive
	case o.Sell > o.Buy:
		o.Label = OverviewLeanBearish
	default:
		o.Label = OverviewNeutral
	}
	return o
}
