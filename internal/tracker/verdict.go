package tracker

import (
	"math"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// Tolerance bands, in percent.
const (
	directionalBand = 0.3
	holdCorrectBand = 1.0
	holdWrongBand   = -1.5
)

// Judge compares a predicted action against the realized next-day change.
func Judge(action model.Action, pct float64) model.Verdict {
	switch action {
	case model.ActionBuy:
		switch {
		case pct > directionalBand:
			return model.VerdictCorrect
		case pct < -directionalBand:
			return model.VerdictWrong
		}
	case model.ActionSell:
		switch {
		case pct < -directionalBand:
			return model.VerdictCorrect
		case pct > directionalBand:
			return model.VerdictWrong
		}
	default:
		switch {
		case math.Abs(pct) < holdCorrectBand:
			return model.VerdictCorrect
		case pct < holdWrongBand:
			return model.VerdictWrong
		}
	}
	return model.VerdictNeutral
}

// SignedReturn is the return earned by following the action: long on buy,
// short on sell, flat on hold.
func SignedReturn(action model.Action, pct float64) float64 {
	switch action {
	case model.ActionBuy:
		return pct
	case model.ActionSell:
		return -pct
	default:
		return 0
	}
}

// Overall labels.
const (
	OverallAggressive = "积极加仓"
	OverallLeanLong   = "偏多持有"
	OverallNeutral    = "中性观望"
	OverallCautious   = "偏空谨慎"
	OverallDefensive  = "防御减仓"
)

// OverallScore maps the mean vote score of plans onto 0..100 around 50.
func OverallScore(plans []model.Plan) int {
	if len(plans) == 0 {
		return 50
	}
	var sum float64
	for _, p := range plans {
		sum += p.Vote.Score
	}
	s := int(math.Round(50 + sum/float64(len(plans))*100))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// OverallLabel maps an overall score to its label.
func OverallLabel(score int) string {
	switch {
	case score >= 70:
		return OverallAggressive
	case score >= 58:
		return OverallLeanLong
	case score >= 42:
		return OverallNeutral
	case score >= 30:
		return OverallCautious
	default:
		return OverallDefensive
	}
}
