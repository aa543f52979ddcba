package engine

// TriggerLevel is one rung of the trailing ladder: when price crosses Trigger,
// the active stop is promoted to StopLoss. Ordinal 0 is the initial stop (its
// Trigger is the entry price and is never tested); ordinals 1..M are triggers
// proper. The ladder is generated once at entry and never recomputed.
type TriggerLevel struct {
	Trigger  float64
	StopLoss float64
	Ordinal  int
}

// EventKind classifies trailing-stop log entries.
type EventKind string

const (
	EventInitial   EventKind = "INITIAL"
	EventTrailUp   EventKind = "TRAIL_UP"
	EventTrailDown EventKind = "TRAIL_DOWN"
	EventHit       EventKind = "HIT"
)

// TrailingStopEvent is one entry in a trade's append-only trigger log.
type TrailingStopEvent struct {
	Price              float64   `json:"price"`
	Time               int64     `json:"time"`
	Kind               EventKind `json:"kind"`
	MarketPriceAtEvent float64   `json:"market_price_at_event"`
	ProfitPctAtEvent   float64   `json:"profit_pct_at_event"`
}

// buildTriggerLadder generates the full ladder for a trade. delta is a fixed
// absolute distance, entryPrice × threshold/100, identical between rungs:
// each rung's stop equals the previous rung's trigger, so crossing trigger j
// promotes the stop to exactly trigger j-1.
func buildTriggerLadder(side Side, entryPrice, thresholdPct float64, levels int) []TriggerLevel {
	delta := entryPrice * thresholdPct / 100
	ladder := make([]TriggerLevel, 0, levels+1)
	ladder = append(ladder, TriggerLevel{
		Trigger:  entryPrice,
		StopLoss: side.InitialStop(entryPrice, delta),
		Ordinal:  0,
	})
	for j := 1; j <= levels; j++ {
		trigger := entryPrice + side.sign()*float64(j)*delta
		ladder = append(ladder, TriggerLevel{
			Trigger:  trigger,
			StopLoss: trigger - side.sign()*delta,
			Ordinal:  j,
		})
	}
	return ladder
}

// trailExit is the terminal state of a simulated trade.
type trailExit struct {
	price float64
	time  int64
	index int
}

// simulateTrailingStop walks candles after the entry candle, promoting the
// active stop as triggers are crossed, until the stop is hit or the horizon
// runs out. It returns the exit, the event log, and whether an exit occurred;
// a horizon exhausted with no stop hit means the trade is abandoned and the
// caller must discard it entirely.
//
// Per candle the stop check runs strictly before the trigger check: a candle
// whose range spans both the active stop and the next trigger exits at the
// stop and registers no further promotion. The trigger check is a loop, not a
// single test, because one wide candle can cross several consecutive rungs.
func simulateTrailingStop(candles []Candle, entry Entry, ladder []TriggerLevel, horizon int) (trailExit, []TrailingStopEvent, bool) {
	stop := ladder[0].StopLoss
	events := []TrailingStopEvent{{
		Price:              stop,
		Time:               entry.Time,
		Kind:               EventInitial,
		MarketPriceAtEvent: entry.Price,
		ProfitPctAtEvent:   0,
	}}

	trailKind := EventTrailUp
	if entry.Side == Short {
		trailKind = EventTrailDown
	}

	last := entry.Index + horizon
	if last > len(candles)-1 {
		last = len(candles) - 1
	}
	next := 1
	for k := entry.Index + 1; k <= last; k++ {
		c := candles[k]

		if entry.Side.StopHit(c, stop) {
			events = append(events, TrailingStopEvent{
				Price:              stop,
				Time:               c.OpenTime,
				Kind:               EventHit,
				MarketPriceAtEvent: stop,
				ProfitPctAtEvent:   entry.Side.ProfitPct(entry.Price, stop),
			})
			return trailExit{price: stop, time: c.OpenTime, index: k}, events, true
		}

		for next < len(ladder) && entry.Side.TriggerCrossed(c, ladder[next].Trigger) {
			stop = ladder[next].StopLoss
			events = append(events, TrailingStopEvent{
				Price:              stop,
				Time:               c.OpenTime,
				Kind:               trailKind,
				MarketPriceAtEvent: ladder[next].Trigger,
				ProfitPctAtEvent:   entry.Side.ProfitPct(entry.Price, ladder[next].Trigger),
			})
			next++
		}
	}

	return trailExit{index: last}, events, false
}
