package engine

// Entry is a resolved directional entry from a legend candle.
type Entry struct {
	Side  Side
	Price float64
	Time  int64
	Index int
	// CandlesUntilCross is the offset from the legend candle to the crossing
	// candle.
	CandlesUntilCross int
	// DynamicThreshold (percent) fixed at entry time; the trailing ladder is
	// built from it and it is never recomputed mid-trade.
	DynamicThreshold float64
}

// resolveEntry scans the bounded window after a legend candle for the first
// candle crossing either entry level. Within a single candle the upward level
// is tested first, so a candle whose range spans both levels resolves LONG.
func resolveEntry(candles []Candle, legend LegendCandle, horizon int) (Entry, bool) {
	last := legend.Index + horizon
	if last > len(candles)-1 {
		last = len(candles) - 1
	}
	for j := legend.Index + 1; j <= last; j++ {
		c := candles[j]
		if c.High >= legend.UpwardThreshold {
			return Entry{
				Side:              Long,
				Price:             legend.UpwardThreshold,
				Time:              c.OpenTime,
				Index:             j,
				CandlesUntilCross: j - legend.Index,
				DynamicThreshold:  legend.DynamicThreshold,
			}, true
		}
		if c.Low <= legend.DownwardThreshold {
			return Entry{
				Side:              Short,
				Price:             legend.DownwardThreshold,
				Time:              c.OpenTime,
				Index:             j,
				CandlesUntilCross: j - legend.Index,
				DynamicThreshold:  legend.DynamicThreshold,
			}, true
		}
	}
	return Entry{}, false
}
