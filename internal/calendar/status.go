package calendar

import "time"

// Session is the exchange session state.
type Session string

const (
	SessionPre    Session = "pre"
	SessionOpen   Session = "open"
	SessionBreak  Session = "break"
	SessionClosed Session = "closed"
)

// MarketStatus describes the exchange session at a moment.
type MarketStatus struct {
	Session   Session
	Text      string
	IsHoliday bool
}

// Open reports whether quotes are live, including the lunch break.
func (s MarketStatus) Open() bool {
	return s.Session == SessionOpen || s.Session == SessionBreak
}

// Status returns the A-share session at now.
func (c *Calendar) Status(now time.Time) MarketStatus {
	key := c.Key(now)
	if _, ok := c.holidays[key]; ok {
		return MarketStatus{Session: SessionClosed, Text: "节假日休市", IsHoliday: true}
	}
	if !c.IsTradingDay(now) {
		return MarketStatus{Session: SessionClosed, Text: "周末休市"}
	}
	local := now.In(c.loc)
	minutes := local.Hour()*60 + local.Minute()
	switch {
	case minutes < 570:
		return MarketStatus{Session: SessionPre, Text: "未开盘"}
	case minutes < 690:
		return MarketStatus{Session: SessionOpen, Text: "交易中·上午"}
	case minutes < 780:
		return MarketStatus{Session: SessionBreak, Text: "午间休市"}
	case minutes < 900:
		return MarketStatus{Session: SessionOpen, Text: "交易中·下午"}
	default:
		return MarketStatus{Session: SessionClosed, Text: "已收盘"}
	}
}
