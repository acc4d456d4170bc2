// Package kpis computes the technical indicator summary for a price history.
package kpis

import (
	"finsight/internal/clients/alphavantage"
	"finsight/pkg/formulas"
)

// ErrNoCloses indicates the input series carried no closing prices. This is
// an integration error, not an expected runtime condition.
type ErrNoCloses struct{}

func (e ErrNoCloses) Error() string {
	return "kpis: price history has no closing prices"
}

// Summary holds the indicator values for a price history. All values are
// rounded to two decimals. Fields whose lookback window exceeds the series
// length are nil and marshal as JSON null.
type Summary struct {
	LastPrice      float64  `json:"last_price"`
	DailyReturnPct *float64 `json:"daily_return_pct"`
	VolatilityPct  *float64 `json:"volatility_pct"`
	MA20           *float64 `json:"ma_20"`
	MA50           *float64 `json:"ma_50"`
	RSI14          *float64 `json:"rsi_14"`
	MaxDrawdownPct *float64 `json:"max_drawdown_pct"`
	Trend          string   `json:"trend"`
}

// Calculate computes the KPI summary for a chronologically ascending price
// history.
//
// Indicators: mean and sample standard deviation of day-over-day returns (as
// percentages), 20- and 50-period simple moving averages, 14-period RSI with
// Wilder smoothing, maximum drawdown as a non-positive percentage, and a
// trend label - "bullish" when the last price is above the 50-period moving
// average, "bearish" otherwise (including when the average is undefined).
func Calculate(history []alphavantage.DailyPrice) (Summary, error) {
	if len(history) == 0 {
		return Summary{}, ErrNoCloses{}
	}

	closes := make([]float64, len(history))
	for i, p := range history {
		closes[i] = p.Close
	}

	last := closes[len(closes)-1]
	returns := formulas.Returns(closes)

	ma50 := formulas.SMA(closes, 50)

	trend := "bearish"
	if ma50 != nil && last > *ma50 {
		trend = "bullish"
	}

	return Summary{
		LastPrice:      formulas.Round2(last),
		DailyReturnPct: round2Pct(formulas.Mean(returns)),
		VolatilityPct:  round2Pct(formulas.StdDev(returns)),
		MA20:           round2(formulas.SMA(closes, 20)),
		MA50:           round2(ma50),
		RSI14:          round2(formulas.RSI(closes, 14)),
		MaxDrawdownPct: round2Pct(formulas.MaxDrawdown(closes)),
		Trend:          trend,
	}, nil
}

// round2 rounds a nullable value to two decimals.
func round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := formulas.Round2(*v)
	return &r
}

// round2Pct converts a nullable fraction to a percentage rounded to two
// decimals.
func round2Pct(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := formulas.Round2(*v * 100)
	return &r
}
