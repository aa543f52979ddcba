// Parallel backtest fan-out: every symbol × timeframe combination runs as an
// independent job on a bounded worker pool. Candles come either from CSV
// files laid out as <data-dir>/<symbol>-<timeframe>.csv or from ClickHouse.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"legend-backtest/config"
	"legend-backtest/services/batch"
	"legend-backtest/services/clickhouse"
	"legend-backtest/services/engine"
	"legend-backtest/services/marketdata"
)

func main() {
	var (
		symbols     = flag.String("symbols", "", "Comma-separated symbols (default from env/SYMBOLS)")
		timeframes  = flag.String("timeframes", "", "Comma-separated timeframes (default from env/TIMEFRAMES)")
		dataDir     = flag.String("data-dir", "", "CSV directory (default from env/DATA_DIR)")
		fromCH      = flag.Bool("from-clickhouse", false, "Load candles from ClickHouse instead of CSV files")
		workers     = flag.Int("workers", 0, "Worker pool size (0 = NumCPU)")
		lookback    = flag.Int("lookback", 50, "Trailing window length for the dynamic threshold")
		multiplier  = flag.Float64("multiplier", 2.0, "Threshold multiplier over the window's average movement")
		horizon     = flag.Int("horizon", 300, "Max candles scanned for entry and for exit")
		maxTriggers = flag.Int("max-triggers", 10, "Trailing trigger levels per trade")
		balance     = flag.Float64("balance", 1000.0, "Initial account balance per run")
		positionPct = flag.Float64("position-pct", 10.0, "Position size as percent of balance (informational)")
	)
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error creating logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	infra := config.Load()
	symbolList := infra.Symbols
	if *symbols != "" {
		symbolList = splitCSV(*symbols)
	}
	timeframeList := infra.Timeframes
	if *timeframes != "" {
		timeframeList = splitCSV(*timeframes)
	}
	dir := infra.DataDir
	if *dataDir != "" {
		dir = *dataDir
	}

	cfg := engine.Config{
		LookbackCandles:       *lookback,
		ThresholdMultiplier:   *multiplier,
		MaxLookForwardCandles: *horizon,
		MaxTriggerLevels:      *maxTriggers,
		InitialBalance:        *balance,
		PositionSizePercent:   *positionPct,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	var source batch.CandleSource
	if *fromCH {
		ch, err := clickhouse.NewClient(context.Background(), clickhouse.Config{
			DSN:      infra.ClickHouse.DSN,
			Database: infra.ClickHouse.Database,
			Table:    infra.ClickHouse.Table,
			User:     infra.ClickHouse.User,
			Password: infra.ClickHouse.Password,
		})
		if err != nil {
			log.Fatal("clickhouse connect failed", zap.Error(err))
		}
		defer ch.Close()
		source = func(symbol, timeframe string) ([]engine.Candle, error) {
			return ch.QueryCandles(context.Background(), symbol, timeframe, 0, 0)
		}
	} else {
		source = func(symbol, timeframe string) ([]engine.Candle, error) {
			return marketdata.LoadCSV(filepath.Join(dir, fmt.Sprintf("%s-%s.csv", symbol, timeframe)))
		}
	}

	jobs := make([]batch.Job, 0, len(symbolList)*len(timeframeList))
	for _, sym := range symbolList {
		for _, tf := range timeframeList {
			jobs = append(jobs, batch.Job{Symbol: sym, Timeframe: tf})
		}
	}

	runner := batch.NewRunner(cfg, source, infra.ReportsDir, *workers, log)
	results := runner.Run(jobs)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("%s %s: FAILED: %v\n", res.Job.Symbol, res.Job.Timeframe, res.Err)
			continue
		}
		fmt.Printf("%s %s: trades=%d winrate=%.2f%% net=%.8f -> %s\n",
			res.Job.Symbol, res.Job.Timeframe,
			res.Summary.TotalTrades, res.Summary.WinRatePct, res.Summary.NetPnl, res.ReportPath)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
