package engine

import "fmt"

// Extra candles on top of the lookback window before detection starts, so the
// first tested candle always has a full window behind it.
const warmupPadding = 10

// Config is the per-run parameter bundle. Infrastructure settings (DSNs, data
// directories) live in the config package; this is only what the engine needs.
type Config struct {
	// LookbackCandles is the trailing window length for the dynamic threshold.
	LookbackCandles int `json:"lookback_candles"`
	// ThresholdMultiplier scales the window's average movement.
	ThresholdMultiplier float64 `json:"threshold_multiplier"`
	// MaxLookForwardCandles bounds both the entry scan and the trailing-stop
	// scan after entry.
	MaxLookForwardCandles int `json:"max_look_forward_candles"`
	// MaxTriggerLevels is the number of trailing trigger levels generated per
	// trade. Zero means the initial stop is never promoted.
	MaxTriggerLevels int `json:"max_trigger_levels"`
	// InitialBalance seeds the account before the first trade.
	InitialBalance float64 `json:"initial_balance"`
	// PositionSizePercent of the running balance committed per trade.
	// Informational: it scales the reported position size, not the
	// unit-notional P&L.
	PositionSizePercent float64 `json:"position_size_percent"`
}

// DefaultConfig mirrors the parameter defaults of the strategy runners.
func DefaultConfig() Config {
	return Config{
		LookbackCandles:       50,
		ThresholdMultiplier:   2.0,
		MaxLookForwardCandles: 300,
		MaxTriggerLevels:      10,
		InitialBalance:        1000.0,
		PositionSizePercent:   10.0,
	}
}

func (c Config) Validate() error {
	if c.LookbackCandles <= 0 {
		return fmt.Errorf("lookback candles must be > 0, got %d", c.LookbackCandles)
	}
	if c.ThresholdMultiplier <= 0 {
		return fmt.Errorf("threshold multiplier must be > 0, got %g", c.ThresholdMultiplier)
	}
	if c.MaxLookForwardCandles <= 0 {
		return fmt.Errorf("max look-forward candles must be > 0, got %d", c.MaxLookForwardCandles)
	}
	if c.MaxTriggerLevels < 0 {
		return fmt.Errorf("max trigger levels must be >= 0, got %d", c.MaxTriggerLevels)
	}
	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial balance must be > 0, got %g", c.InitialBalance)
	}
	if c.PositionSizePercent <= 0 || c.PositionSizePercent > 100 {
		return fmt.Errorf("position size percent must be in (0, 100], got %g", c.PositionSizePercent)
	}
	return nil
}

// warmupBars is the first candle index eligible for legend detection.
func (c Config) warmupBars() int {
	return c.LookbackCandles + warmupPadding
}
