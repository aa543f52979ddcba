// One-shot installer: validated candle CSVs → ClickHouse, with dedup
// guarantees from the ReplacingMergeTree schema. CSVs are expected as
// <data-dir>/<symbol>-<interval>.csv, the layout the downloader produces.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"legend-backtest/config"
	"legend-backtest/services/clickhouse"
	"legend-backtest/services/marketdata"
)

func main() {
	var (
		dataDir  = flag.String("data-dir", "", "CSV directory (default from env/DATA_DIR)")
		interval = flag.String("interval", "1m", "Kline interval of the input files")
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

	ctx := context.Background()
	ch, err := clickhouse.NewClient(ctx, clickhouse.Config{
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

	if err := ch.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure schema failed", zap.Error(err))
	}

	for _, symbol := range infra.Symbols {
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.csv", symbol, *interval))
		candles, err := marketdata.LoadCSV(path)
		if err != nil {
			// Non-fatal: continue with the remaining symbols.
			log.Warn("load failed", zap.String("file", path), zap.Error(err))
			continue
		}
		if err := ch.InsertCandles(ctx, symbol, *interval, candles); err != nil {
			log.Error("insert failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		log.Info("installed",
			zap.String("symbol", symbol),
			zap.String("interval", *interval),
			zap.Int("rows", len(candles)))
	}
}
