package strategy

import "github.com/allenshen-svg/fund-assistant/internal/model"

// NoDataText is shown wherever a snapshot could not be computed.
const NoDataText = "数据不足"

var dirText = map[model.TrendDir]string{
	model.TrendStrongUp:   "强势上攻",
	model.TrendUp:         "趋势向上",
	model.TrendSideways:   "横盘震荡",
	model.TrendDown:       "趋势走弱",
	model.TrendStrongDown: "强势下跌",
}

var swingText = map[model.SwingPos]string{
	model.SwingDeepDip: "深度回调",
	model.SwingDip:     "短期回调",
	model.SwingMid:     "中位运行",
	model.SwingRally:   "短期反弹",
	model.SwingSurge:   "短期冲高",
}

// TrendText returns the display text for the snapshot's trend direction.
func TrendText(td *model.TrendSnapshot) string {
	if td == nil {
		return NoDataText
	}
	if s, ok := dirText[td.TrendDir]; ok {
		return s
	}
	return dirText[model.TrendSideways]
}

// SwingText returns the display text for the snapshot's swing position.
func SwingText(td *model.TrendSnapshot) string {
	if td == nil {
		return "—"
	}
	if s, ok := swingText[td.SwingPos]; ok {
		return s
	}
	return swingText[model.SwingMid]
}
