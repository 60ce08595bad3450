package model

// TrendDir is the medium-term trend bucket derived from the trend score.
type TrendDir string

const (
	TrendStrongUp   TrendDir = "strong_up"
	TrendUp         TrendDir = "up"
	TrendSideways   TrendDir = "sideways"
	TrendDown       TrendDir = "down"
	TrendStrongDown TrendDir = "strong_down"
)

// IsUp reports whether the trend points upwards.
func (d TrendDir) IsUp() bool { return d == TrendStrongUp || d == TrendUp }

// IsDown reports whether the trend points downwards.
func (d TrendDir) IsDown() bool { return d == TrendStrongDown || d == TrendDown }

// SwingPos classifies the short-horizon (5-day) price posture.
type SwingPos string

const (
	SwingDeepDip SwingPos = "deep_dip"
	SwingDip     SwingPos = "dip"
	SwingMid     SwingPos = "mid"
	SwingRally   SwingPos = "rally"
	SwingSurge   SwingPos = "surge"
)

// MA arrangement labels.
const (
	MABullish = "多头排列"
	MABearish = "空头排列"
	MAMixed   = "交织"
)

// TrendSnapshot holds all indicators computed from one NAV history.
// Pointer fields are nil when the history is too short for the window.
type TrendSnapshot struct {
	Latest float64 `json:"latest"`

	Chg5D   *float64 `json:"chg_5d"`
	Chg20D  *float64 `json:"chg_20d"`
	Chg60D  *float64 `json:"chg_60d"`
	Chg120D *float64 `json:"chg_120d"`
	Chg250D *float64 `json:"chg_250d"`

	MA5  *float64 `json:"ma5"`
	MA20 *float64 `json:"ma20"`
	MA60 *float64 `json:"ma60"`

	RSI        float64 `json:"rsi"`
	Volatility float64 `json:"volatility"` // annualized, percent

	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	DrawdownFromHigh float64 `json:"drawdown_from_high"` // percent, <= 0
	ReboundFromLow   float64 `json:"rebound_from_low"`   // percent, >= 0

	TrendDir    TrendDir `json:"trend_dir"`
	TrendScore  int      `json:"trend_score"`
	SwingPos    SwingPos `json:"swing_pos"`
	MAStatus    string   `json:"ma_status"`
	SwingAdvice string   `json:"swing_advice"`
}
