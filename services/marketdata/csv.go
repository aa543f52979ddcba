// Package marketdata loads and validates OHLCV candle series for the engine.
// The engine assumes a clean, time-sorted sequence; everything that can be
// wrong with raw data is rejected here.
package marketdata

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"legend-backtest/services/engine"
)

// LoadCSV reads candles from a CSV file with columns
// timestamp,open,high,low,close,volume[,close_time]. A header row is
// optional; timestamps are epoch milliseconds or RFC3339. Rows are sorted by
// open time and deduplicated (last write wins), then validated.
func LoadCSV(path string) ([]engine.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	// UTF-16 exports show up in the wild; decode to UTF-8 when the BOM says so.
	if b, _ := br.Peek(2); len(b) >= 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF)) {
		if _, err := f.Seek(0, 0); err != nil {
			return nil, err
		}
		tr := transform.NewReader(f, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
		br = bufio.NewReader(tr)
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	candles := make([]engine.Candle, 0, 1_000)
	row := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		row++
		if len(rec) < 6 {
			return nil, fmt.Errorf("row %d: expected at least 6 columns, got %d", row, len(rec))
		}
		if row == 1 && isHeader(rec[0]) {
			continue
		}

		c, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		candles = append(candles, c)
	}
	if len(candles) == 0 {
		return nil, errors.New("no candles parsed")
	}

	// Stable so that for duplicate timestamps the later file row survives dedupe.
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].OpenTime < candles[j].OpenTime })
	candles = dedupe(candles)

	if err := Validate(candles); err != nil {
		return nil, err
	}
	return candles, nil
}

func isHeader(first string) bool {
	first = strings.TrimPrefix(strings.TrimSpace(first), "\ufeff")
	return strings.EqualFold(first, "timestamp") ||
		strings.EqualFold(first, "timestamp_ms") ||
		strings.EqualFold(first, "open_time") ||
		strings.EqualFold(first, "time_utc")
}

func parseRow(rec []string) (engine.Candle, error) {
	var c engine.Candle

	ts, err := parseTimestamp(rec[0])
	if err != nil {
		return c, fmt.Errorf("timestamp: %w", err)
	}
	c.OpenTime = ts

	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &c.Open},
		{"high", &c.High},
		{"low", &c.Low},
		{"close", &c.Close},
		{"volume", &c.Volume},
	}
	for i, fld := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.Trim(rec[i+1], `"`)), 64)
		if err != nil {
			return c, fmt.Errorf("%s: %w", fld.name, err)
		}
		*fld.dst = v
	}

	if len(rec) >= 7 {
		closeTs, err := parseTimestamp(rec[6])
		if err != nil {
			return c, fmt.Errorf("close_time: %w", err)
		}
		c.CloseTime = closeTs
	} else {
		c.CloseTime = c.OpenTime
	}
	return c, nil
}

func parseTimestamp(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "\ufeff")
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// dedupe collapses candles sharing an open time, keeping the last occurrence.
func dedupe(candles []engine.Candle) []engine.Candle {
	out := candles[:0]
	var lastTs int64 = -1
	for _, c := range candles {
		if c.OpenTime == lastTs {
			out[len(out)-1] = c
			continue
		}
		out = append(out, c)
		lastTs = c.OpenTime
	}
	return out
}

// Validate enforces the invariants the engine assumes: positive opens, sane
// OHLC ordering, non-negative volume, strictly increasing open times.
func Validate(candles []engine.Candle) error {
	var prevTs int64 = -1
	for i, c := range candles {
		if c.Open <= 0 {
			return fmt.Errorf("candle %d: non-positive open %g", i, c.Open)
		}
		if c.High < c.Low {
			return fmt.Errorf("candle %d: high %g below low %g", i, c.High, c.Low)
		}
		hi, lo := c.Open, c.Close
		if lo > hi {
			hi, lo = lo, hi
		}
		if c.High < hi || c.Low > lo {
			return fmt.Errorf("candle %d: body [%g, %g] outside range [%g, %g]", i, lo, hi, c.Low, c.High)
		}
		if c.Volume < 0 {
			return fmt.Errorf("candle %d: negative volume %g", i, c.Volume)
		}
		if c.OpenTime <= prevTs {
			return fmt.Errorf("candle %d: open time %d not after previous %d", i, c.OpenTime, prevTs)
		}
		prevTs = c.OpenTime
	}
	return nil
}
