package engine

// LegendCandle is a candle whose own movement reached the dynamic threshold
// computed from the window preceding it. It is a transient view: the engine
// materializes one, resolves an entry from it, and discards it.
type LegendCandle struct {
	Candle Candle
	Index  int
	// DynamicThreshold (percent) computed over the preceding window.
	DynamicThreshold float64
	// MovementPct of the legend candle itself, kept for provenance.
	MovementPct float64
	// Entry levels derived from the close: close × (1 ± threshold/100).
	UpwardThreshold   float64
	DownwardThreshold float64
}

// legendAt tests candle i against the dynamic threshold of candles [i-N, i).
// The boundary is inclusive (movement ≥ threshold qualifies), with the one
// carve-out that a zero threshold still requires nonzero movement.
func legendAt(candles []Candle, i int, cfg Config) (LegendCandle, bool) {
	n := cfg.LookbackCandles
	if i < n {
		return LegendCandle{}, false
	}
	c := candles[i]
	threshold := DynamicThreshold(candles[i-n:i], cfg.ThresholdMultiplier)
	move := c.MovementPct()
	if move == 0 || move < threshold {
		return LegendCandle{}, false
	}
	return LegendCandle{
		Candle:            c,
		Index:             i,
		DynamicThreshold:  threshold,
		MovementPct:       move,
		UpwardThreshold:   c.Close * (1 + threshold/100),
		DownwardThreshold: c.Close * (1 - threshold/100),
	}, true
}
