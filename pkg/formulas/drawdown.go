package formulas

// MaxDrawdown calculates the maximum peak-to-trough decline of a price
// series as a non-positive fraction (-0.25 = 25% below the running peak).
//
// Drawdown Formula:
//
//	Drawdown = (Price - Running Peak) / Running Peak
//	Max Drawdown = most negative drawdown observed
//
// Returns nil when fewer than two prices are available.
func MaxDrawdown(prices []float64) *float64 {
	if len(prices) < 2 {
		return nil
	}

	maxDrawdown := 0.0
	peak := prices[0]

	for _, price := range prices {
		if price > peak {
			peak = price
		}

		if peak > 0 {
			drawdown := (price - peak) / peak
			if drawdown < maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	return &maxDrawdown
}
