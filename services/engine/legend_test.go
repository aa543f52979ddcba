package engine

import "testing"

// flatSeries returns n candles with open == close (zero movement).
func flatSeries(n int) []Candle {
	out := make([]Candle, n)
	for i := range out {
		out[i] = Candle{
			OpenTime: int64(i) * 60_000,
			Open:     100, High: 100, Low: 100, Close: 100,
			CloseTime: int64(i+1)*60_000 - 1,
		}
	}
	return out
}

func TestLegendAfterFlatWindow(t *testing.T) {
	// Ten doji candles -> avgDiff 0 -> threshold 0. The first candle with any
	// nonzero movement must qualify.
	candles := flatSeries(10)
	candles = append(candles, Candle{OpenTime: 600_000, Open: 100, High: 100.2, Low: 99.9, Close: 100.1, CloseTime: 659_999})

	cfg := DefaultConfig()
	cfg.LookbackCandles = 10

	legend, ok := legendAt(candles, 10, cfg)
	if !ok {
		t.Fatal("expected candle with nonzero movement to be a legend over a flat window")
	}
	if legend.DynamicThreshold != 0 {
		t.Fatalf("expected zero threshold, got %v", legend.DynamicThreshold)
	}
	if legend.UpwardThreshold != legend.Candle.Close || legend.DownwardThreshold != legend.Candle.Close {
		t.Fatal("zero threshold must place both entry levels at the close")
	}
}

func TestNoLegendWithoutMovement(t *testing.T) {
	candles := flatSeries(11)
	cfg := DefaultConfig()
	cfg.LookbackCandles = 10
	if _, ok := legendAt(candles, 10, cfg); ok {
		t.Fatal("a doji over a flat window must not be a legend")
	}
}

func TestLegendBoundaryIsInclusive(t *testing.T) {
	// Window of uniform 1% moves, multiplier 1 -> threshold exactly 1%.
	candles := make([]Candle, 0, 21)
	for i := 0; i < 20; i++ {
		candles = append(candles, Candle{OpenTime: int64(i), Open: 100, High: 101, Low: 100, Close: 101})
	}
	candles = append(candles, Candle{OpenTime: 20, Open: 100, High: 101, Low: 100, Close: 101}) // exactly 1%

	cfg := DefaultConfig()
	cfg.LookbackCandles = 20
	cfg.ThresholdMultiplier = 1.0
	if _, ok := legendAt(candles, 20, cfg); !ok {
		t.Fatal("movement equal to the threshold must qualify")
	}
}

func countLegends(candles []Candle, cfg Config) int {
	count := 0
	for i := cfg.warmupBars(); i < len(candles); i++ {
		if _, ok := legendAt(candles, i, cfg); ok {
			count++
		}
	}
	return count
}

func TestLegendCountMonotoneInMultiplier(t *testing.T) {
	// Alternating small and large moves; raising the multiplier must never
	// surface more legends.
	candles := make([]Candle, 0, 120)
	for i := 0; i < 120; i++ {
		move := 0.5
		if i%7 == 0 {
			move = 3.0
		}
		close := 100 * (1 + move/100)
		candles = append(candles, Candle{OpenTime: int64(i), Open: 100, High: close, Low: 100, Close: close})
	}

	cfg := DefaultConfig()
	cfg.LookbackCandles = 20

	prev := -1
	for _, k := range []float64{0.5, 1.0, 1.5, 2.0, 3.0, 5.0} {
		cfg.ThresholdMultiplier = k
		n := countLegends(candles, cfg)
		if prev >= 0 && n > prev {
			t.Fatalf("legend count increased from %d to %d when multiplier rose to %v", prev, n, k)
		}
		prev = n
	}
}
