package formulas

import (
	"github.com/markcheno/go-talib"
)

// SMA calculates the simple moving average over the trailing window of the
// given length and returns the latest value.
//
// Returns nil when the series is shorter than the window, mirroring a rolling
// mean that has not filled its window yet.
func SMA(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)

	last := sma[len(sma)-1]
	if isNaN(last) {
		return nil
	}
	return &last
}

// RSI calculates the Relative Strength Index over the given period and
// returns the latest value.
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss over N periods (Wilder smoothing)
//
// Returns nil when there are not enough closes for one full period plus the
// seed delta.
func RSI(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)

	last := rsi[len(rsi)-1]
	if isNaN(last) {
		return nil
	}
	return &last
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
