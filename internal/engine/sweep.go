package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"momentum/internal/metrics"
	"momentum/types"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var ErrRunPanicked = errors.New("simulation run panicked")

// SweepReport aggregates the runs of one sweep. Runs and Reports are in
// submission order; Reports[i] is nil when Runs[i] failed.
type SweepReport struct {
	Seed    uint64
	Dates   []time.Time
	Runs    []*RunResult
	Reports []*Report

	Completed int
	Failed    int
	Bankrupt  int

	// BankruptcyRate is bankrupt runs over all submitted runs.
	BankruptcyRate    decimal.Decimal
	BankruptcyPercent decimal.Decimal
	// AverageFinalCash is taken over completed runs.
	AverageFinalCash decimal.Decimal

	AverageCashTally     []decimal.Decimal
	AveragePositionTally []decimal.Decimal
}

// Errors returns the error of every failed run keyed by run id.
func (r *SweepReport) Errors() map[string]error {
	out := make(map[string]error)
	for _, run := range r.Runs {
		if run.Failed() {
			out[run.ID] = run.Err
		}
	}
	return out
}

// runSweep executes one simulation per params entry on at most workers
// goroutines. All runs read the same table and currency map. A failed or
// panicking run is recorded in its own slot and never stops the others.
func (e *Engine) runSweep(ctx context.Context, params []RunParams, table *types.MonthlyTable, currencies types.CurrencyMap) []*RunResult {
	results := make([]*RunResult, len(params))
	bar := initProgressBar(len(params), e.progressWriter())

	workers := e.sweepConfig.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(workers)

	for i, p := range params {
		runID := e.ids.New()
		if err := ctx.Err(); err != nil {
			results[i] = &RunResult{ID: runID, Params: p, Err: err}
			metrics.RunsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			continue
		}
		g.Go(func() error {
			metrics.SweepInFlight.Inc()
			defer metrics.SweepInFlight.Dec()

			results[i] = e.execute(runID, p, table, currencies)
			_ = bar.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()
	return results
}

// execute runs one simulation and converts a panic into a failed result.
func (e *Engine) execute(runID string, p RunParams, table *types.MonthlyTable, currencies types.CurrencyMap) (res *RunResult) {
	started := time.Now()
	log := e.log.WithFields(map[string]interface{}{
		"run_id": runID,
		"j":      p.J,
		"k":      p.K,
		"ratio":  p.Ratio.String(),
	})

	defer func() {
		if r := recover(); r != nil {
			res = &RunResult{ID: runID, Params: p, Err: fmt.Errorf("%w: %v", ErrRunPanicked, r)}
		}
		if res.Failed() {
			log.WithError(res.Err).Error("run failed")
		}
		metrics.ObserveRun(res.outcome(), started)
	}()

	sim := newSimulation(runID, p, e.newRanker(p.J), e.settlementConfig, log)
	err := sim.run(table, currencies)
	return sim.result(err)
}

// aggregate builds the sweep summary. Every statistic is a sum over runs, so
// the result does not depend on the order runs finished in.
func aggregate(results []*RunResult, dates []time.Time) *SweepReport {
	report := &SweepReport{
		Dates: dates,
		Runs:  results,
	}
	n := len(dates)
	cashSum := make([]decimal.Decimal, n)
	positionSum := make([]decimal.Decimal, n)
	for i := range cashSum {
		cashSum[i] = decimal.Zero
		positionSum[i] = decimal.Zero
	}
	finalCashSum := decimal.Zero

	for _, run := range results {
		if run.Failed() {
			report.Failed++
			continue
		}
		report.Completed++
		if run.Bankrupt() {
			report.Bankrupt++
		}
		finalCashSum = finalCashSum.Add(run.finalCash)
		for i := 0; i < n && i < len(run.cashTally); i++ {
			cashSum[i] = cashSum[i].Add(run.cashTally[i])
		}
		for i := 0; i < n && i < len(run.positionTally); i++ {
			positionSum[i] = positionSum[i].Add(run.positionTally[i])
		}
	}

	report.BankruptcyRate = decimal.Zero
	report.BankruptcyPercent = decimal.Zero
	if len(results) > 0 {
		report.BankruptcyRate = decimal.NewFromInt(int64(report.Bankrupt)).Div(decimal.NewFromInt(int64(len(results))))
		report.BankruptcyPercent = report.BankruptcyRate.Mul(decimal.NewFromInt(100)).Round(2)
	}

	report.AverageFinalCash = decimal.Zero
	if report.Completed > 0 {
		completed := decimal.NewFromInt(int64(report.Completed))
		report.AverageFinalCash = finalCashSum.Div(completed)
		report.AverageCashTally = make([]decimal.Decimal, n)
		report.AveragePositionTally = make([]decimal.Decimal, n)
		for i := 0; i < n; i++ {
			report.AverageCashTally[i] = cashSum[i].Div(completed)
			report.AveragePositionTally[i] = positionSum[i].Div(completed)
		}
	}
	return report
}

func printSweepReport(w io.Writer, report *SweepReport) {
	fmt.Fprintln(w, "===== Momentum Sweep Report =====")
	fmt.Fprintf(w, "Seed:                  %d\n", report.Seed)
	fmt.Fprintf(w, "Runs:                  %d\n", len(report.Runs))
	fmt.Fprintf(w, "Completed:             %d\n", report.Completed)
	fmt.Fprintf(w, "Failed:                %d\n", report.Failed)
	fmt.Fprintf(w, "Bankrupt:              %d\n", report.Bankrupt)
	fmt.Fprintf(w, "Bankrupt %%:            %s%%\n", report.BankruptcyPercent.StringFixed(2))
	fmt.Fprintf(w, "Average Final Cash:    %s\n", report.AverageFinalCash.StringFixed(2))

	if len(report.Runs) > 0 {
		fmt.Fprintln(w, "\n-- Runs --")
		fmt.Fprintf(w, "%-26s %3s %3s %6s %-9s %14s %9s %8s\n",
			"RUN", "J", "K", "RATIO", "OUTCOME", "FINAL CASH", "MAX DD %", "SHARPE")
		for i, run := range report.Runs {
			if run.Failed() {
				fmt.Fprintf(w, "%-26s %3d %3d %6s %-9s %v\n",
					run.ID, run.Params.J, run.Params.K, run.Params.Ratio.StringFixed(2), metrics.OutcomeFailed, run.Err)
				continue
			}
			maxDD, sharpe := "-", "-"
			if i < len(report.Reports) && report.Reports[i] != nil {
				rep := report.Reports[i]
				maxDD = rep.MaxDrawdownPercent.Mul(decimal.NewFromInt(100)).StringFixed(2)
				sharpe = rep.SharpeRatio.StringFixed(4)
			}
			fmt.Fprintf(w, "%-26s %3d %3d %6s %-9s %14s %9s %8s\n",
				run.ID, run.Params.J, run.Params.K, run.Params.Ratio.StringFixed(2), run.outcome(),
				run.finalCash.StringFixed(2), maxDD, sharpe)
		}
	}
	fmt.Fprintln(w, "=================================")
}

func initProgressBar(maxTicks int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Sweeping parameters..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
