package engine

import (
	"math"
	"testing"
)

func bar(open, high, low, close float64) Candle {
	return Candle{Open: open, High: high, Low: low, Close: close}
}

func TestDynamicThresholdMeanOfBodyMoves(t *testing.T) {
	// Moves: 1%, 2%, 3% -> mean 2%, ×1.5 = 3%
	window := []Candle{
		bar(100, 101, 99, 101),
		bar(100, 103, 99, 102),
		bar(100, 104, 96, 97),
	}
	got := DynamicThreshold(window, 1.5)
	if math.Abs(got-3.0) > 1e-9 {
		t.Fatalf("expected threshold 3.0, got %v", got)
	}
}

func TestDynamicThresholdEmptyWindow(t *testing.T) {
	if got := DynamicThreshold(nil, 2.0); got != 0 {
		t.Fatalf("expected 0 for empty window, got %v", got)
	}
}

func TestDynamicThresholdFlatWindow(t *testing.T) {
	window := make([]Candle, 10)
	for i := range window {
		window[i] = bar(100, 100, 100, 100)
	}
	if got := DynamicThreshold(window, 2.0); got != 0 {
		t.Fatalf("expected 0 for flat window, got %v", got)
	}
}

func TestDynamicThresholdScalesWithMultiplier(t *testing.T) {
	window := []Candle{bar(100, 102, 99, 102)} // 2% move
	lo := DynamicThreshold(window, 1.0)
	hi := DynamicThreshold(window, 3.0)
	if math.Abs(hi-3*lo) > 1e-9 {
		t.Fatalf("expected threshold to scale linearly: lo=%v hi=%v", lo, hi)
	}
}
