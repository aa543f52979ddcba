// Package engine implements the legend-candle backtesting core: dynamic
// threshold computation, legend detection, directional entry resolution, the
// multi-level trailing-stop simulation, and trade accounting. The engine is
// pure, synchronous, and deterministic: the same candles and config always
// produce the same trades and balance history.
package engine

import (
	"errors"
	"fmt"
)

var ErrNoCandles = errors.New("candle store is empty")

// Result is the complete output of one symbol/timeframe run.
type Result struct {
	Trades         []Trade         `json:"trades"`
	BalanceHistory []BalanceUpdate `json:"balance_history"`
	Summary        Summary         `json:"summary"`
}

// Summary aggregates run-level statistics.
type Summary struct {
	CandleCount     int     `json:"candle_count"`
	LegendsDetected int     `json:"legends_detected"`
	EntriesResolved int     `json:"entries_resolved"`
	TradesAbandoned int     `json:"trades_abandoned"`
	TotalTrades     int     `json:"total_trades"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	WinRatePct      float64 `json:"win_rate_pct"`
	NetPnl          float64 `json:"net_pnl"`
	LongTrades      int     `json:"long_trades"`
	ShortTrades     int     `json:"short_trades"`
	LongPnl         float64 `json:"long_pnl"`
	ShortPnl        float64 `json:"short_pnl"`
	StartBalance    float64 `json:"start_balance"`
	FinalBalance    float64 `json:"final_balance"`
}

// Run executes one full pass over a time-sorted candle sequence.
//
// The pass is strictly sequential: a resolved entry is simulated to its exit
// (or abandonment) before detection resumes, so trades never overlap within a
// run. After an exit, detection resumes at the candle after the exit; after an
// abandonment, at the candle after the exhausted horizon; after a legend with
// no entry, at the candle after the legend.
func Run(candles []Candle, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(candles) == 0 {
		return nil, ErrNoCandles
	}
	if cfg.LookbackCandles >= len(candles) {
		return nil, fmt.Errorf("lookback of %d candles exceeds candle count %d", cfg.LookbackCandles, len(candles))
	}

	acct := newAccountant(cfg.InitialBalance, candles[0].OpenTime)
	res := &Result{Trades: []Trade{}}
	res.Summary.CandleCount = len(candles)
	res.Summary.StartBalance = cfg.InitialBalance

	i := cfg.warmupBars()
	for i < len(candles) {
		legend, ok := legendAt(candles, i, cfg)
		if !ok {
			i++
			continue
		}
		res.Summary.LegendsDetected++

		entry, ok := resolveEntry(candles, legend, cfg.MaxLookForwardCandles)
		if !ok {
			i++
			continue
		}
		res.Summary.EntriesResolved++

		ladder := buildTriggerLadder(entry.Side, entry.Price, entry.DynamicThreshold, cfg.MaxTriggerLevels)
		exit, events, exited := simulateTrailingStop(candles, entry, ladder, cfg.MaxLookForwardCandles)
		if !exited {
			// Discarded entirely: no Trade, no balance mutation.
			res.Summary.TradesAbandoned++
			i = exit.index + 1
			continue
		}

		trade := acct.settle(entry, exit, events, cfg.PositionSizePercent)
		res.Trades = append(res.Trades, trade)
		i = exit.index + 1
	}

	res.BalanceHistory = acct.history
	summarize(&res.Summary, res.Trades, acct.balance)
	return res, nil
}

func summarize(s *Summary, trades []Trade, finalBalance float64) {
	s.TotalTrades = len(trades)
	s.FinalBalance = finalBalance
	for _, tr := range trades {
		s.NetPnl += tr.Pnl
		if tr.Pnl > 0 {
			s.Wins++
		} else if tr.Pnl < 0 {
			s.Losses++
		}
		switch tr.Side {
		case Long:
			s.LongTrades++
			s.LongPnl += tr.Pnl
		case Short:
			s.ShortTrades++
			s.ShortPnl += tr.Pnl
		}
	}
	if s.TotalTrades > 0 {
		s.WinRatePct = float64(s.Wins) / float64(s.TotalTrades) * 100
	}
}
