package planner

import (
	"fmt"

	"github.com/allenshen-svg/fund-assistant/internal/model"
	"github.com/allenshen-svg/fund-assistant/internal/strategy"
)

const missing = "--"

// SignedPct formats a nullable percentage as "+1.2%" or "--".
func SignedPct(v *float64) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf("%+.1f%%", *v)
}

// Pct formats a percentage with one decimal.
func Pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Urgency maps the absolute vote score to an urgency tier.
func Urgency(score float64) string {
	if score < 0 {
		score = -score
	}
	switch {
	case score >= 0.35:
		return model.UrgencyHigh
	case score >= 0.18:
		return model.UrgencyMid
	default:
		return model.UrgencyLow
	}
}

// UrgencyText is the display label of an urgency tier.
func UrgencyText(u string) string {
	switch u {
	case model.UrgencyHigh:
		return "高"
	case model.UrgencyMid:
		return "中"
	default:
		return "低"
	}
}

// ActionText is the short display label of an action.
func ActionText(a model.Action) string {
	switch a {
	case model.ActionBuy:
		return "买入"
	case model.ActionSell:
		return "卖出"
	default:
		return "持有"
	}
}

// flowText renders the signed net inflow and its direction.
func flowText(f *model.SectorFlow) (text, dir string) {
	if f == nil {
		return "", ""
	}
	text = strategy.FormatYi(f.MainNet)
	dir = "out"
	if !f.MainNet.IsNegative() {
		text = "+" + text
		dir = "in"
	}
	return text, dir
}
