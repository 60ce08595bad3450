package calculator

import (
	"sort"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// MinHistory is the minimum number of distinct NAV points needed for a snapshot.
const MinHistory = 5

const rsiPeriod = 14

// TrendInputs are the indicators the trend score is computed from.
type TrendInputs struct {
	Latest  float64
	MA5     *float64
	MA20    *float64
	MA60    *float64
	Chg60D  *float64
	Chg250D *float64
}

// ScoreTrend sums the trend points: MA stacking, 60-day and 250-day momentum,
// and the price position against MA20.
func ScoreTrend(in TrendInputs) int {
	score := 0
	if bullishStack(in.Latest, in.MA5, in.MA20, in.MA60) {
		score += 30
	} else if bearishStack(in.Latest, in.MA5, in.MA20, in.MA60) {
		score -= 30
	}

	if in.Chg60D != nil {
		switch c := *in.Chg60D; {
		case c > 10:
			score += 25
		case c > 3:
			score += 15
		case c < -10:
			score -= 25
		case c < -3:
			score -= 15
		}
	}

	if in.Chg250D != nil {
		switch c := *in.Chg250D; {
		case c > 15:
			score += 20
		case c < -15:
			score -= 20
		}
	}

	if in.MA20 != nil {
		if in.Latest > *in.MA20*1.02 {
			score += 10
		}
		if in.Latest < *in.MA20*0.98 {
			score -= 10
		}
	}
	return score
}

// ClassifyTrend maps a trend score to its direction bucket.
func ClassifyTrend(score int) model.TrendDir {
	switch {
	case score >= 25:
		return model.TrendStrongUp
	case score >= 10:
		return model.TrendUp
	case score <= -25:
		return model.TrendStrongDown
	case score <= -10:
		return model.TrendDown
	default:
		return model.TrendSideways
	}
}

// ClassifySwing maps the 5-day change to a swing position. Nil means mid.
func ClassifySwing(chg5d *float64) model.SwingPos {
	if chg5d == nil {
		return model.SwingMid
	}
	switch c := *chg5d; {
	case c <= -3:
		return model.SwingDeepDip
	case c <= -1.5:
		return model.SwingDip
	case c >= 3:
		return model.SwingSurge
	case c >= 1.5:
		return model.SwingRally
	default:
		return model.SwingMid
	}
}

// SwingAdviceFor looks up the tactical advice for a trend and swing pair.
func SwingAdviceFor(dir model.TrendDir, pos model.SwingPos) string {
	switch {
	case dir.IsUp():
		switch pos {
		case model.SwingDeepDip, model.SwingDip:
			return "波段买入机会"
		case model.SwingSurge:
			return "冲顶止盈"
		case model.SwingRally:
			return "加速持有"
		default:
			return "趋势持有"
		}
	case dir.IsDown():
		switch pos {
		case model.SwingRally, model.SwingSurge:
			return "反弹减仓"
		case model.SwingDeepDip:
			return "超跌勿追"
		default:
			return "暂避风险"
		}
	case dir == model.TrendSideways:
		switch pos {
		case model.SwingDeepDip:
			return "低吸机会"
		case model.SwingSurge:
			return "冲高减仓"
		default:
			return "震荡观望"
		}
	}
	return "观望"
}

// NormalizeHistory sorts points by date, drops non-positive NAVs and keeps the
// last observation for duplicated dates. The input slice is not modified.
func NormalizeHistory(points []model.PricePoint) []model.PricePoint {
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if p.NAV > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	dedup := out[:0]
	for _, p := range out {
		n := len(dedup)
		if n > 0 && sameDay(dedup[n-1].Date, p.Date) {
			dedup[n-1] = p
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AnalyzeTrend computes a TrendSnapshot from a NAV history.
// Returns nil when fewer than MinHistory usable points remain.
func AnalyzeTrend(points []model.PricePoint) *model.TrendSnapshot {
	points = NormalizeHistory(points)
	if len(points) < MinHistory {
		return nil
	}
	prices := extractNAVs(points)
	latest := prices[len(prices)-1]

	td := &model.TrendSnapshot{
		Latest:  latest,
		Chg5D:   PercentChange(prices, 5),
		Chg20D:  PercentChange(prices, 20),
		Chg60D:  PercentChange(prices, 60),
		Chg120D: PercentChange(prices, 120),
		Chg250D: PercentChange(prices, 250),
		MA5:     latestSMA(prices, 5),
		MA20:    latestSMA(prices, 20),
		MA60:    latestSMA(prices, 60),
	}

	// Only fails on non-positive period.
	td.RSI, _ = CalculateRSI(prices, rsiPeriod)
	td.Volatility = CalculateVolatility(prices)

	td.High, td.Low, _ = CalculateRange(prices)
	td.DrawdownFromHigh, _ = Drawdown(latest, td.High)
	td.ReboundFromLow, _ = Rebound(latest, td.Low)

	td.TrendScore = ScoreTrend(TrendInputs{
		Latest:  latest,
		MA5:     td.MA5,
		MA20:    td.MA20,
		MA60:    td.MA60,
		Chg60D:  td.Chg60D,
		Chg250D: td.Chg250D,
	})
	td.TrendDir = ClassifyTrend(td.TrendScore)
	td.SwingPos = ClassifySwing(td.Chg5D)
	td.MAStatus = MAStatus(latest, td.MA5, td.MA20, td.MA60)
	td.SwingAdvice = SwingAdviceFor(td.TrendDir, td.SwingPos)
	return td
}
