package model

// Radar scores a holding on five 0..100 axes.
type Radar struct {
	Valuation int `json:"valuation"`
	Momentum  int `json:"momentum"`
	Macro     int `json:"macro"`
	Defense   int `json:"defense"`
	Sentiment int `json:"sentiment"`
}

// Advice is the plain-language diagnosis attached to a plan.
type Advice struct {
	RiskScore   int    `json:"risk_score"`
	RiskLevel   string `json:"risk_level"`
	Valuation   string `json:"valuation"`
	TrendBucket string `json:"trend_bucket"`
	WindDir     string `json:"wind_dir"`
	BiggestRisk string `json:"biggest_risk"`
	TLDR        string `json:"tldr"`
	Operation   string `json:"operation"`
	Tactics     string `json:"tactics"`
	StopLoss    string `json:"stop_loss"`
	Radar       Radar  `json:"radar"`
}

// Urgency tiers derived from the absolute vote score.
const (
	UrgencyHigh = "high"
	UrgencyMid  = "mid"
	UrgencyLow  = "low"
)

// Plan is the per-holding view recomputed on every refresh. It is never persisted.
type Plan struct {
	Holding
	Heat   HeatInfo       `json:"heat"`
	Trend  *TrendSnapshot `json:"trend,omitempty"`
	Vote   VoteResult     `json:"vote"`
	Advice Advice         `json:"advice"`
	Flow   *SectorFlow    `json:"flow,omitempty"`

	DirText        string `json:"dir_text"`
	SwingText      string `json:"swing_text"`
	MAStatus       string `json:"ma_status"`
	RSIText        string `json:"rsi_text"`
	Chg5DText      string `json:"chg_5d_text"`
	Chg20DText     string `json:"chg_20d_text"`
	DrawdownText   string `json:"drawdown_text"`
	ReboundText    string `json:"rebound_text"`
	VolatilityText string `json:"volatility_text"`
	SectorFlowText string `json:"sector_flow_text,omitempty"`
	SectorFlowDir  string `json:"sector_flow_dir,omitempty"` // in, out

	RiskScore int    `json:"risk_score"`
	RiskLevel string `json:"risk_level"`
	Urgency   string `json:"urgency"`
	Priority  int    `json:"priority"` // 1-based, after sorting
}

// HasTrend reports whether enough history existed to analyze the holding.
func (p Plan) HasTrend() bool { return p.Trend != nil }

// Overview summarizes a plan list.
type Overview struct {
	Buy   int    `json:"buy"`
	Sell  int    `json:"sell"`
	Hold  int    `json:"hold"`
	Score int    `json:"score"` // average confidence
	Label string `json:"label"`
}
