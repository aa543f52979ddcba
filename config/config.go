// Package config loads infrastructure settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ClickHouse ClickHouseConfig
	Symbols    []string
	Timeframes []string
	DataDir    string
	ReportsDir string
	BaseURL    string
}

type ClickHouseConfig struct {
	DSN      string
	Database string
	Table    string
	User     string
	Password string
}

// Load reads the environment. A missing .env file is not an error; explicit
// environment variables always win over defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ClickHouse: ClickHouseConfig{
			DSN:      env("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000?secure=false&compress=lz4"),
			Database: env("CH_DATABASE", "backtest"),
			Table:    env("CH_TABLE", "candles"),
			User:     env("CH_USER", "backtest"),
			Password: env("CH_PASSWORD", "backtest123"),
		},
		Symbols:    splitList(env("SYMBOLS", "BTCUSDT,ETHUSDT")),
		Timeframes: splitList(env("TIMEFRAMES", "5m,15m")),
		DataDir:    env("DATA_DIR", "data"),
		ReportsDir: env("REPORTS_DIR", "reports"),
		BaseURL:    env("BASE_URL", "https://data.binance.vision"),
	}
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
