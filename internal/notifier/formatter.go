package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/allenshen-svg/fund-assistant/internal/calendar"
	"github.com/allenshen-svg/fund-assistant/internal/model"
	"github.com/allenshen-svg/fund-assistant/internal/planner"
	"github.com/allenshen-svg/fund-assistant/internal/tracker"
)

// Report is everything shown in a plan message.
type Report struct {
	Date         string
	Overview     model.Overview
	Plans        []model.Plan
	Events       []model.HotEvent
	HeatFallback bool
	Failed       []string
	Market       calendar.MarketStatus
}

func actionIcon(a model.Action) string {
	switch a {
	case model.ActionBuy:
		return "🟢"
	case model.ActionSell:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatPlans formats the prioritized plan list into a Telegram message.
func FormatPlans(r Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>基金操作计划</b> | %s\n\n", r.Date))
	ov := r.Overview
	b.WriteString(fmt.Sprintf("总览: %s (平均置信度 %d)\n", ov.Label, ov.Score))
	b.WriteString(fmt.Sprintf("买入 %d | 卖出 %d | 持有 %d\n", ov.Buy, ov.Sell, ov.Hold))
	if r.Market.Text != "" {
		b.WriteString(fmt.Sprintf("市场: %s\n", r.Market.Text))
	}
	if r.Market.Open() {
		b.WriteString("⏱ 盘中数据，收盘后以净值为准\n")
	}
	if r.HeatFallback {
		b.WriteString("⚠️ 热度数据不可用，使用内置热度\n")
	}
	if len(r.Failed) > 0 {
		b.WriteString(fmt.Sprintf("⚠️ 行情获取失败: %s\n", strings.Join(r.Failed, ", ")))
	}

	for _, p := range r.Plans {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s <b>%d. %s</b> (%s) %s\n",
			actionIcon(p.Vote.Action), p.Priority, html.EscapeString(p.Name), p.Code, html.EscapeString(p.Type)))
		b.WriteString(fmt.Sprintf("   %s | 置信度 %d | 紧迫度 %s\n",
			p.Vote.Label, p.Vote.Confidence, planner.UrgencyText(p.Urgency)))
		if p.HasTrend() {
			b.WriteString(fmt.Sprintf("   趋势: %s | 波段: %s | %s\n", p.DirText, p.SwingText, p.MAStatus))
			b.WriteString(fmt.Sprintf("   RSI %s | 5日 %s | 20日 %s | 回撤 %s\n",
				p.RSIText, p.Chg5DText, p.Chg20DText, p.DrawdownText))
		} else {
			b.WriteString(fmt.Sprintf("   趋势: %s\n", p.DirText))
		}
		b.WriteString(fmt.Sprintf("   热度 %d°", p.Heat.Temperature))
		if p.SectorFlowText != "" {
			b.WriteString(fmt.Sprintf(" | 主力 %s", p.SectorFlowText))
		}
		b.WriteString(fmt.Sprintf(" | 风险 %d %s\n", p.RiskScore, p.RiskLevel))
		if p.Vote.Crowding != "" {
			b.WriteString(fmt.Sprintf("   ⚠️ %s\n", p.Vote.Crowding))
		}
		if p.Advice.TLDR != "" {
			b.WriteString(fmt.Sprintf("   💡 %s\n", html.EscapeString(p.Advice.TLDR)))
		}
		if p.Vote.SwingAdvice != "" {
			b.WriteString(fmt.Sprintf("   %s\n", html.EscapeString(p.Vote.SwingAdvice)))
		}
	}

	if len(r.Events) > 0 {
		b.WriteString("\n📰 <b>热点事件:</b>\n")
		for i, e := range r.Events {
			if i == 5 {
				break
			}
			b.WriteString(fmt.Sprintf("  • %s (%+.1f)\n", html.EscapeString(e.Title), e.Impact))
		}
	}
	return b.String()
}

// FormatSnapshot confirms a recorded prediction.
func FormatSnapshot(e model.PredictionEntry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📝 <b>已记录预测</b> | %s\n\n", e.Date))
	b.WriteString(fmt.Sprintf("综合评分: %d %s\n", e.OverallScore, e.OverallLabel))
	for _, code := range sortedCodes(e.Holdings) {
		hp := e.Holdings[code]
		b.WriteString(fmt.Sprintf("  %s %s %s (%+.3f)\n",
			actionIcon(hp.Action), html.EscapeString(hp.Name), planner.ActionText(hp.Action), hp.Score))
	}
	return b.String()
}

func verdictIcon(v model.Verdict) string {
	switch v {
	case model.VerdictCorrect:
		return "✅"
	case model.VerdictWrong:
		return "❌"
	default:
		return "➖"
	}
}

// FormatVerification formats the result of a verification attempt.
func FormatVerification(out tracker.VerifyOutcome) string {
	if out.Skipped {
		if out.Entry.Date != "" {
			return fmt.Sprintf("⏭ 跳过验证 %s: %s", out.Entry.Date, out.Reason)
		}
		return fmt.Sprintf("⏭ 跳过验证: %s", out.Reason)
	}
	e := out.Entry
	v := e.Verification
	if v == nil {
		return fmt.Sprintf("⏭ %s 尚未验证", e.Date)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔍 <b>预测验证</b> | %s → %s\n\n", e.Date, v.NextDate))
	for _, code := range sortedCodes(e.Holdings) {
		r, ok := v.Results[code]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s %s 次日 %+.2f%%\n",
			verdictIcon(r.Verdict), html.EscapeString(e.Holdings[code].Name), planner.ActionText(r.Action), r.NextDayPct))
	}
	b.WriteString(fmt.Sprintf("\n正确 %d | 错误 %d | 中性 %d\n", v.Correct, v.Wrong, v.Neutral))
	b.WriteString(fmt.Sprintf("准确率: %.1f%%\n", v.Accuracy))
	b.WriteString(fmt.Sprintf("模拟收益: %+.2f%%\n", v.HypotheticalReturn))
	return b.String()
}

// FormatStats formats the rolling tracker statistics.
func FormatStats(s model.TrackerStats) string {
	var b strings.Builder
	b.WriteString("📈 <b>预测统计</b>\n\n")
	b.WriteString(fmt.Sprintf("记录天数: %d | 已验证: %d\n", s.Entries, s.VerifiedDays))
	if s.VerifiedDays == 0 {
		b.WriteString("暂无已验证的预测\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("正确 %d | 错误 %d | 中性 %d\n", s.Correct, s.Wrong, s.Neutral))
	b.WriteString(fmt.Sprintf("准确率: %.1f%%\n", s.Accuracy))
	b.WriteString(fmt.Sprintf("日均模拟收益: %+.2f%%\n", s.AvgReturn))
	return b.String()
}

// FormatHoldings lists the user's holdings followed by the reference allocation.
func FormatHoldings(holdings []model.Holding, ref planner.Portfolio) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>我的持仓</b> (%d)\n\n", len(holdings)))
	if len(holdings) == 0 {
		b.WriteString("暂无持仓，使用 /add &lt;代码&gt; &lt;名称&gt; &lt;类型&gt; 添加\n")
	}
	for _, h := range holdings {
		b.WriteString(fmt.Sprintf("  %s %s [%s]\n", h.Code, html.EscapeString(h.Name), html.EscapeString(h.Type)))
	}

	b.WriteString(fmt.Sprintf("\n🧭 <b>参考配置</b> (合计 %d%%)\n", ref.TotalWeight()))
	writeLines := func(title string, lines []planner.ModelHolding) {
		b.WriteString(fmt.Sprintf("%s:\n", title))
		for _, m := range lines {
			b.WriteString(fmt.Sprintf("  %s %s %d%%\n", m.Code, html.EscapeString(m.Name), m.Weight))
		}
	}
	writeLines("核心", ref.Core)
	writeLines("卫星", ref.Satellite)
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return strings.Join([]string{
		"🤖 <b>可用命令</b>",
		"/plan - 刷新并查看操作计划",
		"/snapshot - 记录今日预测",
		"/snapshot_force - 覆盖今日预测",
		"/verify - 验证最近一次预测",
		"/stats - 预测准确率统计",
		"/holdings - 查看持仓",
		"/add &lt;代码&gt; &lt;名称&gt; &lt;类型&gt; - 添加持仓",
		"/remove &lt;代码&gt; - 删除持仓",
	}, "\n")
}

func sortedCodes(m map[string]model.HoldingPrediction) []string {
	codes := make([]string, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
