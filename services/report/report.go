// Package report turns engine results into persisted JSON run reports.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"legend-backtest/services/engine"
)

// moneyPlaces is the rounding applied to monetary fields at serialization
// time. The engine itself stays on raw float64.
const moneyPlaces = 8

// RunReport is the on-disk shape of one symbol/timeframe run.
type RunReport struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Symbol      string    `json:"symbol"`
	Timeframe   string    `json:"timeframe"`
	InputFile   string    `json:"input_file,omitempty"`

	Config  engine.Config          `json:"config"`
	Summary engine.Summary         `json:"summary"`
	Trades  []engine.Trade         `json:"trades"`
	Balance []engine.BalanceUpdate `json:"balance_history"`
}

// New assembles a report for a finished run, rounding monetary fields.
func New(symbol, timeframe, inputFile string, cfg engine.Config, res *engine.Result) RunReport {
	rep := RunReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Symbol:      symbol,
		Timeframe:   timeframe,
		InputFile:   inputFile,
		Config:      cfg,
		Summary:     res.Summary,
		Trades:      make([]engine.Trade, len(res.Trades)),
		Balance:     make([]engine.BalanceUpdate, len(res.BalanceHistory)),
	}
	copy(rep.Trades, res.Trades)
	copy(rep.Balance, res.BalanceHistory)

	for i := range rep.Trades {
		rep.Trades[i].Pnl = roundMoney(rep.Trades[i].Pnl)
		rep.Trades[i].BalanceAfter = roundMoney(rep.Trades[i].BalanceAfter)
	}
	for i := range rep.Balance {
		rep.Balance[i].Balance = roundMoney(rep.Balance[i].Balance)
		rep.Balance[i].Pnl = roundMoney(rep.Balance[i].Pnl)
	}
	rep.Summary.NetPnl = roundMoney(rep.Summary.NetPnl)
	rep.Summary.LongPnl = roundMoney(rep.Summary.LongPnl)
	rep.Summary.ShortPnl = roundMoney(rep.Summary.ShortPnl)
	rep.Summary.FinalBalance = roundMoney(rep.Summary.FinalBalance)
	return rep
}

func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(moneyPlaces).InexactFloat64()
}

// FileName is <symbol>_<timeframe>.json; batch runs rely on it being stable.
func FileName(symbol, timeframe string) string {
	return fmt.Sprintf("%s_%s.json", symbol, timeframe)
}

// Write persists the report under dir, creating it if needed.
func Write(dir string, rep RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(dir, FileName(rep.Symbol, rep.Timeframe))
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Read loads a previously written report.
func Read(path string) (RunReport, error) {
	var rep RunReport
	data, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		return rep, fmt.Errorf("parse report %s: %w", filepath.Base(path), err)
	}
	return rep, nil
}
