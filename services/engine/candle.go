package engine

// Candle is a single OHLCV bar. OpenTime/CloseTime are epoch milliseconds.
// Candles are immutable once loaded; the engine never mutates its input slice.
type Candle struct {
	OpenTime  int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime int64
}

// MovementPct is the candle's own body movement as a percentage of its open,
// always non-negative. A zero open yields zero rather than Inf.
func (c Candle) MovementPct() float64 {
	if c.Open == 0 {
		return 0
	}
	d := c.Close - c.Open
	if d < 0 {
		d = -d
	}
	return d / c.Open * 100
}
