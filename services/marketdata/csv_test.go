package marketdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legend-backtest/services/engine"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSVWithHeader(t *testing.T) {
	path := writeCSV(t, `timestamp,open,high,low,close,volume,close_time
1000,100,101,99,100.5,12.5,1999
2000,100.5,102,100,101,8,2999
`)
	candles, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1000), candles[0].OpenTime)
	assert.Equal(t, 100.5, candles[0].Close)
	assert.Equal(t, int64(2999), candles[1].CloseTime)
}

func TestLoadCSVSortsAndDedupes(t *testing.T) {
	path := writeCSV(t, `2000,100.5,102,100,101,8
1000,100,101,99,100.5,12.5
2000,100.6,102,100,101,9
`)
	candles, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1000), candles[0].OpenTime)
	// Duplicate open time keeps the last occurrence.
	assert.Equal(t, 100.6, candles[1].Open)
}

func TestLoadCSVRFC3339Timestamps(t *testing.T) {
	path := writeCSV(t, `2024-01-01T00:00:00Z,100,101,99,100.5,1
2024-01-01T00:01:00Z,100.5,101,100,100.8,1
`)
	candles, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1704067200000), candles[0].OpenTime)
}

func TestLoadCSVRejectsMalformedRow(t *testing.T) {
	path := writeCSV(t, `1000,100,101,99,not-a-price,1
`)
	_, err := LoadCSV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close")
}

func TestValidateRejectsBadCandles(t *testing.T) {
	cases := []struct {
		name    string
		candles []engine.Candle
	}{
		{"high below low", []engine.Candle{{OpenTime: 1, Open: 100, High: 99, Low: 101, Close: 100}}},
		{"non-positive open", []engine.Candle{{OpenTime: 1, Open: 0, High: 1, Low: 0, Close: 1}}},
		{"body outside range", []engine.Candle{{OpenTime: 1, Open: 100, High: 100, Low: 99, Close: 101}}},
		{"negative volume", []engine.Candle{{OpenTime: 1, Open: 100, High: 101, Low: 99, Close: 100, Volume: -1}}},
		{"non-monotonic time", []engine.Candle{
			{OpenTime: 2, Open: 100, High: 101, Low: 99, Close: 100},
			{OpenTime: 2, Open: 100, High: 101, Low: 99, Close: 100},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, Validate(tc.candles))
		})
	}
}

func TestValidateAcceptsCleanSeries(t *testing.T) {
	candles := []engine.Candle{
		{OpenTime: 1, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1},
		{OpenTime: 2, Open: 100.5, High: 102, Low: 100, Close: 101, Volume: 2},
	}
	assert.NoError(t, Validate(candles))
}
