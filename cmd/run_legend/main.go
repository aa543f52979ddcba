// Single symbol/timeframe backtest: load a candle CSV, run the legend
// detection + trailing-stop engine, write a JSON report and print a summary.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"legend-backtest/config"
	"legend-backtest/services/engine"
	"legend-backtest/services/marketdata"
	"legend-backtest/services/report"
)

func main() {
	var (
		csvFile     = flag.String("csv", "", "Path to CSV file with OHLCV data")
		symbol      = flag.String("symbol", "BTCUSDT", "Symbol label for the report")
		timeframe   = flag.String("timeframe", "5m", "Timeframe label for the report")
		lookback    = flag.Int("lookback", 50, "Trailing window length for the dynamic threshold")
		multiplier  = flag.Float64("multiplier", 2.0, "Threshold multiplier over the window's average movement")
		horizon     = flag.Int("horizon", 300, "Max candles scanned for entry and for exit")
		maxTriggers = flag.Int("max-triggers", 10, "Trailing trigger levels per trade")
		balance     = flag.Float64("balance", 1000.0, "Initial account balance")
		positionPct = flag.Float64("position-pct", 10.0, "Position size as percent of balance (informational)")
		reportsDir  = flag.String("reports-dir", "", "Reports directory (default from env/REPORTS_DIR)")
	)
	flag.Parse()

	if *csvFile == "" {
		fmt.Fprintln(os.Stderr, "error: -csv is required")
		flag.Usage()
		os.Exit(1)
	}

	infra := config.Load()
	dir := infra.ReportsDir
	if *reportsDir != "" {
		dir = *reportsDir
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
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	candles, err := marketdata.LoadCSV(*csvFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading candles:", err)
		os.Exit(1)
	}

	res, err := engine.Run(candles, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error running backtest:", err)
		os.Exit(1)
	}

	rep := report.New(*symbol, *timeframe, *csvFile, cfg, res)
	path, err := report.Write(dir, rep)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error writing report:", err)
		os.Exit(1)
	}

	p := message.NewPrinter(language.English)
	s := res.Summary
	p.Printf("Candles: %d | Legends: %d | Entries: %d | Abandoned: %d\n",
		s.CandleCount, s.LegendsDetected, s.EntriesResolved, s.TradesAbandoned)
	p.Printf("Trades: %d (long %d / short %d) WinRate: %.2f%%\n",
		s.TotalTrades, s.LongTrades, s.ShortTrades, s.WinRatePct)
	p.Printf("Net PnL: %.8f (long %.8f / short %.8f)\n", s.NetPnl, s.LongPnl, s.ShortPnl)
	p.Printf("Balance: %.2f -> %.2f\n", s.StartBalance, s.FinalBalance)
	fmt.Printf("Report saved to %s\n", path)
}
