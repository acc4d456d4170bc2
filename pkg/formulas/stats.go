package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Returns converts a price series to day-over-day fractional returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// Mean calculates the arithmetic mean of a slice of float64 values.
// Returns nil for an empty slice.
func Mean(data []float64) *float64 {
	if len(data) == 0 {
		return nil
	}
	m := stat.Mean(data, nil)
	return &m
}

// StdDev calculates the sample standard deviation of a slice of float64 values.
// Returns nil when fewer than two samples are available.
func StdDev(data []float64) *float64 {
	if len(data) < 2 {
		return nil
	}
	sd := stat.StdDev(data, nil)
	return &sd
}

// Round2 rounds a value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
