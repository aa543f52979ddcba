package engine

// DynamicThreshold computes the volatility-adaptive movement threshold, in
// percent, from a trailing window of candles: multiplier × mean body movement.
//
// An empty window or a window of doji candles (zero average movement) yields
// a threshold of 0. That is a valid degenerate outcome, not an error: with a
// zero threshold only candles with nonzero movement qualify as legends.
func DynamicThreshold(window []Candle, multiplier float64) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, c := range window {
		sum += c.MovementPct()
	}
	avg := sum / float64(len(window))
	if avg == 0 {
		return 0
	}
	return multiplier * avg
}
