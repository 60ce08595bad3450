package model

// Action is the discrete recommendation for one holding.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Priority orders actions for the plan list: sell first, hold last.
func (a Action) Priority() int {
	switch a {
	case ActionSell:
		return 0
	case ActionBuy:
		return 1
	default:
		return 2
	}
}

// Direction is the way a single factor leans.
type Direction string

const (
	DirBuy  Direction = "buy"
	DirSell Direction = "sell"
	DirHold Direction = "hold"
)

// Factor is one named entry of a vote breakdown.
type Factor struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Direction Direction `json:"direction"`
}

// VoteResult is the output of the multi-factor voter.
type VoteResult struct {
	Action      Action   `json:"action"`
	Label       string   `json:"label"`
	Confidence  int      `json:"confidence"` // 0..100
	Score       float64  `json:"score"`
	BuyVotes    int      `json:"buy_votes"`
	SellVotes   int      `json:"sell_votes"`
	Consensus   string   `json:"consensus"`
	Crowding    string   `json:"crowding,omitempty"`
	Factors     []Factor `json:"factors"`
	SwingAdvice string   `json:"swing_advice"`
}
