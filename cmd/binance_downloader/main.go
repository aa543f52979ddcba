// Bulk downloader for Binance spot monthly klines. Each month's zip archive
// is checksum-verified before its CSV is extracted into the data directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"legend-backtest/config"
	"legend-backtest/services/binance"
)

func main() {
	var (
		symbol   = flag.String("symbol", "BTCUSDT", "Symbol to download")
		interval = flag.String("interval", "1m", "Kline interval")
		startYM  = flag.String("start", "2024-01", "First month (YYYY-MM)")
		endYM    = flag.String("end", "2024-12", "Last month (YYYY-MM)")
		dataDir  = flag.String("data-dir", "", "Download directory (default from env/DATA_DIR)")
	)
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error creating logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	infra := config.Load()
	dir := infra.DataDir
	if *dataDir != "" {
		dir = *dataDir
	}

	months, err := monthRange(*startYM, *endYM)
	if err != nil {
		log.Fatal("invalid month range", zap.Error(err))
	}

	d := binance.NewDownloader(infra.BaseURL, dir, log)
	failures := 0
	for _, m := range months {
		if _, err := d.DownloadMonth(*symbol, *interval, m.Year(), int(m.Month())); err != nil {
			// Non-fatal: continue with the remaining months.
			log.Warn("month download failed",
				zap.String("month", m.Format("2006-01")),
				zap.Error(err))
			failures++
		}
	}
	if failures > 0 {
		log.Warn("finished with failures", zap.Int("failed_months", failures))
		os.Exit(1)
	}
	log.Info("all months downloaded", zap.Int("months", len(months)))
}

func monthRange(startYM, endYM string) ([]time.Time, error) {
	start, err := time.Parse("2006-01", startYM)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	end, err := time.Parse("2006-01", endYM)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s before start %s", endYM, startYM)
	}
	var out []time.Time
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	lim := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(lim) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out, nil
}
