package strategy

import (
	"math"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// Vote labels.
const (
	LabelStrongBuy  = "建议加仓"
	LabelLeanBuy    = "偏多持有"
	LabelStrongSell = "建议减仓"
	LabelLeanSell   = "偏空持有"
	LabelHold       = "持有观望"
)

// NoDataConfidence is the confidence reported when no snapshot is available.
const NoDataConfidence = 30

// Vote blends the RSI, trend and sector-heat factors with the swing, near-high,
// deep-dip and capital-flow corrections into one decision.
//
// Order of evaluation: weighted factors and additive corrections accumulate
// into one raw score, the crowding multiplier scales that raw score, and the
// result is normalized by the sum of applied weights before the confidence and
// thresholds are evaluated.
func Vote(td *model.TrendSnapshot, heat model.HeatInfo, flow *model.SectorFlow, cfg Config) model.VoteResult {
	if td == nil {
		return model.VoteResult{
			Action:     model.ActionHold,
			Label:      LabelHold,
			Confidence: NoDataConfidence,
			Score:      0,
			Factors:    []model.Factor{},
		}
	}

	weighted := []weightedVote{
		scoreRSI(td, cfg.RSIWeight),
		scoreTrend(td, cfg.TrendWeight),
		scoreHeat(heat, cfg.HeatWeight),
	}

	var raw, totalWeight float64
	factors := make([]model.Factor, 0, 7)
	for _, w := range weighted {
		raw += w.contribution()
		totalWeight += w.Weight
		factors = append(factors, w.Factor)
	}
	for _, c := range corrections(td, flow, cfg) {
		raw += c.Delta
		factors = append(factors, c.Factor)
	}

	mult, crowding := crowdingFor(heat.Temperature, td.RSI)
	raw *= mult

	score := 0.0
	if totalWeight > 0 {
		score = raw / totalWeight
	}
	conf := Confidence(score, cfg.MaxConfidence)
	action, label := Decide(score, conf, cfg)

	buy, sell := tally(factors)
	return model.VoteResult{
		Action:      action,
		Label:       label,
		Confidence:  conf,
		Score:       score,
		BuyVotes:    buy,
		SellVotes:   sell,
		Consensus:   Consensus(buy, sell),
		Crowding:    crowding,
		Factors:     factors,
		SwingAdvice: td.SwingAdvice,
	}
}

// Confidence maps a normalized score to min(max, round(|score|*100+30)).
func Confidence(score float64, max int) int {
	c := int(math.Round(math.Abs(score)*100 + 30))
	if c > max {
		c = max
	}
	if c < 0 {
		c = 0
	}
	return c
}

// Decide applies the buy/sell thresholds to a normalized score and confidence.
func Decide(score float64, conf int, cfg Config) (model.Action, string) {
	switch {
	case score > cfg.BuyThreshold && conf >= cfg.BuyMinConfidence:
		if score > cfg.StrongThreshold {
			return model.ActionBuy, LabelStrongBuy
		}
		return model.ActionBuy, LabelLeanBuy
	case score < -cfg.BuyThreshold && conf >= cfg.SellMinConfidence:
		if score < -cfg.StrongThreshold {
			return model.ActionSell, LabelStrongSell
		}
		return model.ActionSell, LabelLeanSell
	default:
		return model.ActionHold, LabelHold
	}
}

// Consensus labels the factor direction tally.
func Consensus(buy, sell int) string {
	switch {
	case buy >= 3 && sell == 0:
		return "共识看多"
	case sell >= 3 && buy == 0:
		return "共识看空"
	case buy > sell:
		return "偏多"
	case sell > buy:
		return "偏空"
	default:
		return "分歧"
	}
}

func tally(factors []model.Factor) (buy, sell int) {
	for _, f := range factors {
		switch f.Direction {
		case model.DirBuy:
			buy++
		case model.DirSell:
			sell++
		}
	}
	return buy, sell
}
