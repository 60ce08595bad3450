package strategy

import (
	"fmt"
	"strings"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// Risk level labels.
const (
	RiskHigh   = "高风险"
	RiskMedium = "中风险"
	RiskLow    = "低风险"
)

// ValuationBucket classifies the drawdown and sector heat into a valuation label.
func ValuationBucket(td *model.TrendSnapshot, heat int) string {
	switch {
	case td == nil:
		return NoDataText
	case td.DrawdownFromHigh <= -25 && heat <= 60:
		return "极度低估"
	case td.DrawdownFromHigh <= -15 && heat <= 50:
		return "明显低估"
	case td.DrawdownFromHigh >= -8 || heat >= 75:
		return "估值偏高"
	default:
		return "估值合理"
	}
}

// TrendBucket collapses the trend direction into three plain buckets.
func TrendBucket(td *model.TrendSnapshot) string {
	switch {
	case td == nil:
		return NoDataText
	case td.TrendDir.IsDown():
		return "跌跌不休"
	case td.TrendDir.IsUp():
		return "强势上涨"
	default:
		return "筑底震荡"
	}
}

// WindDirection reads the sector sentiment as tailwind, headwind or unclear.
func WindDirection(heat model.HeatInfo) string {
	switch {
	case heat.Sentiment > 0.3 && heat.Temperature >= 60:
		return "顺风"
	case heat.Sentiment < -0.2 || heat.Temperature < 35:
		return "逆风"
	default:
		return "混沌"
	}
}

// RiskScore sums the heat, trend, volatility, drawdown and sentiment penalties, capped at 100.
func RiskScore(td *model.TrendSnapshot, heat model.HeatInfo) int {
	if td == nil {
		return 50
	}
	score := 0
	switch {
	case heat.Temperature >= 80:
		score += 30
	case heat.Temperature >= 65:
		score += 15
	}
	if td.TrendDir.IsDown() {
		score += 25
	}
	switch {
	case td.Volatility > 25:
		score += 15
	case td.Volatility > 18:
		score += 8
	}
	if td.DrawdownFromHigh < -20 {
		score += 15
	}
	if heat.Sentiment < -0.3 {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

// RiskLevel maps a risk score to its label.
func RiskLevel(score int) string {
	switch {
	case score >= 55:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Advise builds the plain-language diagnosis for one holding.
func Advise(h model.Holding, td *model.TrendSnapshot, heat model.HeatInfo, vote model.VoteResult) model.Advice {
	if td == nil {
		return model.Advice{
			RiskScore:   50,
			RiskLevel:   NoDataText,
			Valuation:   "--",
			TrendBucket: "--",
			WindDir:     "未知",
			BiggestRisk: NoDataText,
			TLDR:        "暂无足够数据进行分析",
			Operation:   "观望",
			Tactics:     "等待更多数据",
			StopLoss:    "--",
			Radar:       model.Radar{Valuation: 50, Momentum: 50, Macro: 50, Defense: 50, Sentiment: 50},
		}
	}

	temp := heat.Temperature
	val := ValuationBucket(td, temp)
	trend := TrendBucket(td)
	wind := WindDirection(heat)
	risk := RiskScore(td, heat)

	a := model.Advice{
		RiskScore:   risk,
		RiskLevel:   RiskLevel(risk),
		Valuation:   val,
		TrendBucket: trend,
		WindDir:     wind,
		BiggestRisk: biggestRisk(td, temp, wind),
		TLDR:        tldr(val, trend, temp),
		Radar:       radar(td, val, wind, temp),
	}
	a.Operation, a.Tactics, a.StopLoss = operation(td, vote.Action)
	return a
}

func biggestRisk(td *model.TrendSnapshot, temp int, wind string) string {
	switch {
	case temp >= 80:
		return "赛道拥挤，小心踩踏"
	case wind == "逆风":
		return "情绪/宏观逆风"
	case td.Volatility > 30:
		return "波动率偏高"
	case td.DrawdownFromHigh < -20:
		return "深度套牢区"
	default:
		return "暂无明显风险"
	}
}

func tldr(val, trend string, temp int) string {
	switch {
	case strings.Contains(val, "低估") && trend != "跌跌不休":
		return "便宜区间，可慢慢买"
	case val == "估值偏高" && temp >= 75:
		return "热度偏高，防回调"
	case trend == "跌跌不休":
		return "下行未止，先观望"
	case trend == "强势上涨":
		return "趋势好，顺势持有"
	default:
		return "不上不下，耐心等待方向"
	}
}

func operation(td *model.TrendSnapshot, action model.Action) (op, tactics, stopLoss string) {
	ma20 := ""
	if td.MA20 != nil {
		ma20 = fmt.Sprintf("MA20: %.4f", *td.MA20)
	}
	pick := func(fallback string) string {
		if ma20 != "" {
			return ma20
		}
		return fallback
	}
	switch action {
	case model.ActionBuy:
		chg := "--"
		if td.Chg5D != nil {
			chg = fmt.Sprintf("%.1f", *td.Chg5D)
		}
		return "定投 / 分批买入",
			fmt.Sprintf("当前趋势偏强，可分2-3次建仓。5日涨跌%s%%，回调时优先加仓。", chg),
			pick("跌破5日最低-5%")
	case model.ActionSell:
		return "减仓 / 暂停定投", "趋势或估值偏弱，建议逢高分批减仓。", pick("跌破-5%止损")
	default:
		return LabelHold, "方向不明朗，保持现有仓位。关注MA20和板块热度变化。", pick("设定-5%止损")
	}
}

func radar(td *model.TrendSnapshot, val, wind string, temp int) model.Radar {
	r := model.Radar{Valuation: 55, Momentum: 50, Macro: 50, Defense: 75, Sentiment: 50}
	switch {
	case strings.Contains(val, "低估"):
		r.Valuation = 85
	case val == "估值偏高":
		r.Valuation = 25
	}
	switch td.TrendDir {
	case model.TrendStrongUp:
		r.Momentum = 90
	case model.TrendUp:
		r.Momentum = 70
	case model.TrendDown:
		r.Momentum = 30
	case model.TrendStrongDown:
		r.Momentum = 15
	}
	switch wind {
	case "顺风":
		r.Macro = 80
	case "逆风":
		r.Macro = 25
	}
	switch {
	case td.Volatility > 30:
		r.Defense = 20
	case td.Volatility > 20:
		r.Defense = 45
	}
	switch {
	case temp >= 70:
		r.Sentiment = min(90, temp)
	case temp <= 30:
		r.Sentiment = max(10, temp)
	}
	return r
}
