// Package clickhouse persists candle series in ClickHouse. The table is a
// ReplacingMergeTree keyed on (symbol, interval, open_time_ms) so repeated
// ingestion of the same months stays idempotent.
package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"

	"legend-backtest/services/engine"
)

type Config struct {
	DSN      string
	Database string
	Table    string
	User     string
	Password string
}

type Client struct {
	conn clickhouse.Conn
	cfg  Config
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{dsnHost(cfg.DSN)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": uint64(0),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	return &Client{conn: conn, cfg: cfg}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// dsnHost extracts host:port from a DSN-like URL for driver bootstrap.
func dsnHost(dsn string) string {
	host := "localhost:9000"
	if i := strings.Index(dsn, "@"); i != -1 {
		rest := dsn[i+1:]
		if j := strings.Index(rest, "?"); j != -1 {
			host = rest[:j]
		} else {
			host = rest
		}
		host = strings.TrimPrefix(host, "/")
		host = strings.TrimPrefix(host, "//")
	}
	return host
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	dbDDL := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", c.cfg.Database)
	if err := c.conn.Exec(ctx, dbDDL); err != nil {
		return fmt.Errorf("create database: %w", err)
	}

	tableDDL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.%s (
			symbol String,
			interval LowCardinality(String),
			open_time_ms UInt64,
			open Float64,
			high Float64,
			low Float64,
			close Float64,
			volume Float64,
			close_time_ms UInt64,
			ingested_at DateTime64(3),
			version UInt64
		)
		ENGINE = ReplacingMergeTree(version)
		ORDER BY (symbol, interval, open_time_ms)
		SETTINGS index_granularity = 8192
	`, c.cfg.Database, c.cfg.Table)
	return c.conn.Exec(ctx, tableDDL)
}

// InsertCandles batch-inserts one symbol/interval series. All rows of a call
// share one version; ReplacingMergeTree keeps the latest version per key.
func (c *Client) InsertCandles(ctx context.Context, symbol, interval string, candles []engine.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(ctx, fmt.Sprintf(
		"INSERT INTO %s.%s SETTINGS insert_deduplicate=1", c.cfg.Database, c.cfg.Table))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	now := time.Now().UTC()
	ver := uint64(now.UnixNano())
	for _, cd := range candles {
		if err := batch.Append(
			symbol, interval,
			uint64(cd.OpenTime),
			cd.Open, cd.High, cd.Low, cd.Close,
			cd.Volume,
			uint64(cd.CloseTime),
			now,
			ver,
		); err != nil {
			return fmt.Errorf("batch append: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("batch send: %w", err)
	}
	return nil
}

// QueryCandles loads a time-sorted series for one symbol/interval. FINAL
// collapses ReplacingMergeTree duplicates at read time. A zero toMs means
// "until the end of data".
func (c *Client) QueryCandles(ctx context.Context, symbol, interval string, fromMs, toMs int64) ([]engine.Candle, error) {
	q := fmt.Sprintf(`
		SELECT open_time_ms, open, high, low, close, volume, close_time_ms
		FROM %s.%s FINAL
		WHERE symbol = ? AND interval = ? AND open_time_ms >= ?`,
		c.cfg.Database, c.cfg.Table)
	args := []any{symbol, interval, uint64(fromMs)}
	if toMs > 0 {
		q += " AND open_time_ms < ?"
		args = append(args, uint64(toMs))
	}
	q += " ORDER BY open_time_ms"

	rows, err := c.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var out []engine.Candle
	for rows.Next() {
		var (
			openMs, closeMs uint64
			cd              engine.Candle
		)
		if err := rows.Scan(&openMs, &cd.Open, &cd.High, &cd.Low, &cd.Close, &cd.Volume, &closeMs); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		cd.OpenTime = int64(openMs)
		cd.CloseTime = int64(closeMs)
		out = append(out, cd)
	}
	return out, rows.Err()
}
