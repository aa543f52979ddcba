package engine

// Trade is one finalized round trip. A trade exists only if its simulation
// exited at a stop; abandoned simulations never produce a Trade.
type Trade struct {
	Side       Side                `json:"-"`
	SideLabel  string              `json:"side"`
	EntryPrice float64             `json:"entry_price"`
	EntryTime  int64               `json:"entry_time"`
	ExitPrice  float64             `json:"exit_price"`
	ExitTime   int64               `json:"exit_time"`
	Pnl        float64             `json:"pnl"`
	PnlPct     float64             `json:"pnl_pct"`
	TriggerLog []TrailingStopEvent `json:"trigger_log"`

	// Position size in units, computed from the balance as it stood at entry.
	// Informational only: P&L above is unit-notional.
	PositionSize float64 `json:"position_size"`

	// Trail metrics derived from the trigger log.
	TrailCount        int     `json:"trail_count"`
	AvgTrailDistance  float64 `json:"avg_trail_distance"`
	MaxTrailDistance  float64 `json:"max_trail_distance"`
	CandlesUntilCross int     `json:"candles_until_cross"`

	DynamicThreshold float64 `json:"dynamic_threshold"`
	BalanceAfter     float64 `json:"balance_after"`
}

// BalanceUpdate is one entry of the ordered balance history.
type BalanceUpdate struct {
	Timestamp int64   `json:"timestamp"`
	Balance   float64 `json:"balance"`
	Pnl       float64 `json:"pnl"`
	Kind      string  `json:"kind"`
}

const (
	balanceKindDeposit = "DEPOSIT"
	balanceKindTrade   = "TRADE"
)

// accountant owns the running balance for one run. It is mutated exactly once
// per finalized trade, strictly in candle-time order.
type accountant struct {
	balance float64
	history []BalanceUpdate
}

func newAccountant(initialBalance float64, startTime int64) *accountant {
	return &accountant{
		balance: initialBalance,
		history: []BalanceUpdate{{
			Timestamp: startTime,
			Balance:   initialBalance,
			Kind:      balanceKindDeposit,
		}},
	}
}

// settle finalizes a trade from its entry and exit, folds the P&L into the
// balance, and appends to the history. Position size uses the balance as it
// stood before this trade's P&L landed.
func (a *accountant) settle(entry Entry, exit trailExit, events []TrailingStopEvent, positionSizePct float64) Trade {
	pnl := entry.Side.Pnl(entry.Price, exit.price)
	pnlPct := 0.0
	positionSize := 0.0
	if entry.Price != 0 {
		pnlPct = pnl / entry.Price * 100
		positionSize = a.balance * positionSizePct / 100 / entry.Price
	}

	trade := Trade{
		Side:              entry.Side,
		SideLabel:         entry.Side.String(),
		EntryPrice:        entry.Price,
		EntryTime:         entry.Time,
		ExitPrice:         exit.price,
		ExitTime:          exit.time,
		Pnl:               pnl,
		PnlPct:            pnlPct,
		TriggerLog:        events,
		PositionSize:      positionSize,
		CandlesUntilCross: entry.CandlesUntilCross,
		DynamicThreshold:  entry.DynamicThreshold,
	}
	trade.TrailCount, trade.AvgTrailDistance, trade.MaxTrailDistance = trailMetrics(events)

	a.balance += pnl
	trade.BalanceAfter = a.balance
	a.history = append(a.history, BalanceUpdate{
		Timestamp: exit.time,
		Balance:   a.balance,
		Pnl:       pnl,
		Kind:      balanceKindTrade,
	})
	return trade
}

// trailMetrics summarizes stop promotions: how many happened and how far the
// stop moved per promotion, measured against the previous stop level.
func trailMetrics(events []TrailingStopEvent) (count int, avg, max float64) {
	prev := 0.0
	havePrev := false
	var sum float64
	for _, ev := range events {
		switch ev.Kind {
		case EventInitial:
			prev = ev.Price
			havePrev = true
		case EventTrailUp, EventTrailDown:
			if havePrev {
				d := ev.Price - prev
				if d < 0 {
					d = -d
				}
				sum += d
				if d > max {
					max = d
				}
				count++
			}
			prev = ev.Price
		}
	}
	if count > 0 {
		avg = sum / float64(count)
	}
	return count, avg, max
}
