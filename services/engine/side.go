package engine

import "fmt"

// Side is the trade direction. The sign conventions and crossing comparators
// for each direction live in the methods below so the simulator has a single
// code path for both.
type Side int

const (
	Long Side = iota
	Short
)

func (s Side) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// sign is +1 for Long, -1 for Short.
func (s Side) sign() float64 {
	if s == Short {
		return -1
	}
	return 1
}

// InitialStop places the protective stop delta away from entry, against the
// trade direction.
func (s Side) InitialStop(entry, delta float64) float64 {
	return entry - s.sign()*delta
}

// StopHit reports whether the candle's range reached the active stop.
func (s Side) StopHit(c Candle, stop float64) bool {
	if s == Long {
		return c.Low <= stop
	}
	return c.High >= stop
}

// TriggerCrossed reports whether the candle's range reached the trigger level.
func (s Side) TriggerCrossed(c Candle, trigger float64) bool {
	if s == Long {
		return c.High >= trigger
	}
	return c.Low <= trigger
}

// Pnl is the realized profit for a unit-notional position closed at exit.
func (s Side) Pnl(entry, exit float64) float64 {
	return s.sign() * (exit - entry)
}

// ProfitPct is the instantaneous profit percentage at price, relative to entry.
func (s Side) ProfitPct(entry, price float64) float64 {
	if entry == 0 {
		return 0
	}
	return s.sign() * (price - entry) / entry * 100
}
