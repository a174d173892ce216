package forecast

import "math"

// EstimateGrowth returns the compound annual growth rate between the value
// lookback periods before the last one and the last one.
//
// The window start is clamped to the beginning of the series. Every
// degenerate case returns fallback: fewer than two points, a start value
// <= 0, a zero span, or a non-finite result (e.g. a negative end value).
func EstimateGrowth(series []float64, lookback int, fallback float64) float64 {
	n := len(series)
	if n < 2 {
		return fallback
	}
	if lookback < 0 {
		lookback = 0
	}

	startIdx := n - 1 - lookback
	if startIdx < 0 {
		startIdx = 0
	}
	start := series[startIdx]
	end := series[n-1]
	years := n - 1 - startIdx

	if start <= 0 || years == 0 {
		return fallback
	}

	rate := math.Pow(end/start, 1/float64(years)) - 1
	if !finite(rate) {
		return fallback
	}
	return rate
}
