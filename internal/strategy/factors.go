package strategy

import (
	"fmt"

	"github.com/allenshen-svg/fund-assistant/internal/model"

	"github.com/shopspring/decimal"
)

// weightedVote is one weighted factor before it is folded into the score.
type weightedVote struct {
	Vote       int // -1, 0, +1
	Confidence int
	Weight     float64
	Factor     model.Factor
}

func (w weightedVote) contribution() float64 {
	return float64(w.Vote) * float64(w.Confidence) / 100 * w.Weight
}

func directionOf(vote int) model.Direction {
	switch {
	case vote > 0:
		return model.DirBuy
	case vote < 0:
		return model.DirSell
	default:
		return model.DirHold
	}
}

// scoreRSI votes on the 14-period RSI.
func scoreRSI(td *model.TrendSnapshot, weight float64) weightedVote {
	rsi := td.RSI
	var vote, conf int
	var name string
	switch {
	case rsi < 30:
		vote, conf, name = 1, 85, "RSI超卖"
	case rsi < 35:
		vote, conf, name = 1, 70, "RSI偏低"
	case rsi > 80:
		vote, conf, name = -1, 85, "RSI超买"
	case rsi > 75:
		vote, conf, name = -1, 70, "RSI偏高"
	default:
		vote, conf, name = 0, 40, "RSI中性"
	}
	return weightedVote{
		Vote:       vote,
		Confidence: conf,
		Weight:     weight,
		Factor:     model.Factor{Name: name, Value: fmt.Sprintf("%.0f", rsi), Direction: directionOf(vote)},
	}
}

// scoreTrend votes on the trend direction bucket.
func scoreTrend(td *model.TrendSnapshot, weight float64) weightedVote {
	var vote, conf int
	switch td.TrendDir {
	case model.TrendStrongUp:
		vote, conf = 1, 80
	case model.TrendUp:
		vote, conf = 1, 65
	case model.TrendStrongDown:
		vote, conf = -1, 80
	case model.TrendDown:
		vote, conf = -1, 65
	default:
		vote, conf = 0, 40
	}
	return weightedVote{
		Vote:       vote,
		Confidence: conf,
		Weight:     weight,
		Factor:     model.Factor{Name: "趋势", Value: TrendText(td), Direction: directionOf(vote)},
	}
}

// scoreHeat votes on the sector temperature and its trend.
func scoreHeat(heat model.HeatInfo, weight float64) weightedVote {
	temp := heat.Temperature
	var vote, conf int
	switch {
	case temp >= 72 && heat.Trend != model.HeatDown:
		vote, conf = 1, 70
	case temp <= 35:
		vote, conf = -1, 70
	case temp <= 46 || heat.Trend == model.HeatDown:
		vote, conf = -1, 60
	default:
		vote, conf = 0, 40
	}
	return weightedVote{
		Vote:       vote,
		Confidence: conf,
		Weight:     weight,
		Factor:     model.Factor{Name: "板块热度", Value: fmt.Sprintf("%d°", temp), Direction: directionOf(vote)},
	}
}

// correction is an additive adjustment applied after the weighted factors.
type correction struct {
	Delta  float64
	Factor model.Factor
}

// corrections returns the swing, near-high, deep-dip and capital-flow adjustments
// in the order they apply.
func corrections(td *model.TrendSnapshot, flow *model.SectorFlow, cfg Config) []correction {
	var out []correction
	if td.SwingPos == model.SwingSurge && td.Chg5D != nil && *td.Chg5D >= 3 {
		out = append(out, correction{Delta: -0.15, Factor: model.Factor{
			Name: "冲高止盈", Value: fmt.Sprintf("+%.1f%%", *td.Chg5D), Direction: model.DirSell,
		}})
	}
	if td.DrawdownFromHigh > -3 && td.Chg20D != nil && *td.Chg20D > 10 {
		out = append(out, correction{Delta: -0.10, Factor: model.Factor{
			Name: "距高点近", Value: fmt.Sprintf("%.1f%%", td.DrawdownFromHigh), Direction: model.DirSell,
		}})
	}
	if td.SwingPos == model.SwingDeepDip && td.TrendDir != model.TrendStrongDown && td.Chg5D != nil {
		out = append(out, correction{Delta: 0.10, Factor: model.Factor{
			Name: "深度回调", Value: fmt.Sprintf("%.1f%%", *td.Chg5D), Direction: model.DirBuy,
		}})
	}
	if flow != nil {
		switch {
		case flow.MainNet.GreaterThan(cfg.FlowThreshold):
			out = append(out, correction{Delta: 0.04, Factor: model.Factor{
				Name: "板块资金流入", Value: FormatYi(flow.MainNet), Direction: model.DirBuy,
			}})
		case flow.MainNet.LessThan(cfg.FlowThreshold.Neg()):
			out = append(out, correction{Delta: -0.04, Factor: model.Factor{
				Name: "板块资金流出", Value: FormatYi(flow.MainNet), Direction: model.DirSell,
			}})
		}
	}
	return out
}

var yi = decimal.New(1, 8)

// FormatYi renders a CNY amount in units of 1e8 (亿) with one decimal.
func FormatYi(amount decimal.Decimal) string {
	return amount.Div(yi).StringFixed(1) + "亿"
}

// crowdingFor returns the crowding multiplier and flag for the given heat and RSI.
func crowdingFor(temp int, rsi float64) (float64, string) {
	switch {
	case temp > 80 && rsi > 70:
		return 0.6, CrowdingOverheated
	case temp < 20 && rsi < 30:
		return 1.3, CrowdingContrarian
	default:
		return 1, ""
	}
}

// Crowding flags.
const (
	CrowdingOverheated = "过热拥挤"
	CrowdingContrarian = "逆向机会"
)
