package calculator

import "math"

const (
	volatilityWindow = 20
	tradingDaysYear  = 250
)

// CalculateVolatility returns the annualized volatility in percent from the
// population standard deviation of the last 20 simple daily returns.
// Returns 0 when fewer than 21 prices are available.
func CalculateVolatility(prices []float64) float64 {
	if len(prices) < volatilityWindow+1 {
		return 0
	}
	recent := prices[len(prices)-volatilityWindow-1:]
	returns := make([]float64, 0, volatilityWindow)
	for i := 1; i < len(recent); i++ {
		if recent[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (recent[i]-recent[i-1])/recent[i-1])
	}
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance) * math.Sqrt(tradingDaysYear) * 100
}
