// Package batch fans independent symbol/timeframe backtests out over a
// bounded worker pool. Runs share no mutable state: each job owns its candle
// slice, its account, and its report file, so ordering between jobs is
// unobservable and results are normalized by sorting.
package batch

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"legend-backtest/services/engine"
	"legend-backtest/services/report"
)

// Job identifies one independent run.
type Job struct {
	Symbol    string
	Timeframe string
}

// CandleSource supplies the candle series for a job. Implementations must be
// safe for concurrent use; the CSV loader and the ClickHouse client both are.
type CandleSource func(symbol, timeframe string) ([]engine.Candle, error)

// JobResult is the outcome of one job. Err is set when the job failed; a
// failed job never writes a report.
type JobResult struct {
	Job        Job
	ReportPath string
	Summary    engine.Summary
	Err        error
}

type Runner struct {
	cfg        engine.Config
	source     CandleSource
	reportsDir string
	workers    int
	log        *zap.Logger
}

func NewRunner(cfg engine.Config, source CandleSource, reportsDir string, workers int, log *zap.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{cfg: cfg, source: source, reportsDir: reportsDir, workers: workers, log: log}
}

// Run executes all jobs and returns their results sorted by symbol then
// timeframe. Individual job failures are reported per job, not returned as a
// batch error.
func (r *Runner) Run(jobs []Job) []JobResult {
	batchID := uuid.NewString()
	r.log.Info("batch started",
		zap.String("batch_id", batchID),
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", r.workers))

	jobCh := make(chan Job)
	results := make([]JobResult, 0, len(jobs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				res := r.runJob(batchID, job)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Job.Symbol != results[j].Job.Symbol {
			return results[i].Job.Symbol < results[j].Job.Symbol
		}
		return results[i].Job.Timeframe < results[j].Job.Timeframe
	})

	r.log.Info("batch finished", zap.String("batch_id", batchID))
	return results
}

func (r *Runner) runJob(batchID string, job Job) JobResult {
	log := r.log.With(
		zap.String("batch_id", batchID),
		zap.String("symbol", job.Symbol),
		zap.String("timeframe", job.Timeframe))

	candles, err := r.source(job.Symbol, job.Timeframe)
	if err != nil {
		log.Error("load candles failed", zap.Error(err))
		return JobResult{Job: job, Err: fmt.Errorf("load candles: %w", err)}
	}

	res, err := engine.Run(candles, r.cfg)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		return JobResult{Job: job, Err: fmt.Errorf("run: %w", err)}
	}

	rep := report.New(job.Symbol, job.Timeframe, "", r.cfg, res)
	path, err := report.Write(r.reportsDir, rep)
	if err != nil {
		log.Error("write report failed", zap.Error(err))
		return JobResult{Job: job, Err: err}
	}

	log.Info("job finished",
		zap.Int("trades", res.Summary.TotalTrades),
		zap.Float64("net_pnl", res.Summary.NetPnl),
		zap.String("report", path))
	return JobResult{Job: job, ReportPath: path, Summary: res.Summary}
}
