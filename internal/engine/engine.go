package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"momentum/pkg/id"
	"momentum/pkg/logger"
	"momentum/types"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

type Engine struct {
	db               dataStore
	newRanker        RankerFactory
	sweepConfig      *SweepConfig
	settlementConfig *SettlementConfig
	reportingConfig  *ReportingConfig
	dataRange        DataRange
	log              *logger.Logger
	ids              *id.Generator
	out              io.Writer

	table      *types.MonthlyTable
	currencies types.CurrencyMap
}

func NewEngine(db dataStore, newRanker RankerFactory, sweepConfig *SweepConfig, settlementConfig *SettlementConfig, reportingConfig *ReportingConfig, log *logger.Logger) *Engine {
	if settlementConfig == nil {
		settlementConfig = DefaultSettlementConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	var seed uint64
	if sweepConfig != nil {
		seed = sweepConfig.seed
	}
	return &Engine{
		db:               db,
		newRanker:        newRanker,
		sweepConfig:      sweepConfig,
		settlementConfig: settlementConfig,
		reportingConfig:  reportingConfig,
		log:              log,
		ids:              id.NewGenerator(seed),
		out:              os.Stdout,
	}
}

// SetOutput redirects printed reports and the progress bar.
func (e *Engine) SetOutput(w io.Writer) {
	e.out = w
}

func (e *Engine) SetDataRange(r DataRange) {
	e.dataRange = r
}

// Run loads the data, sweeps the configured number of runs and reports on them.
func (e *Engine) Run(ctx context.Context) (*SweepReport, error) {
	if e.sweepConfig == nil {
		return nil, errors.New("no sweep config")
	}
	if e.sweepConfig.runs <= 0 {
		return nil, fmt.Errorf("sweep needs at least one run, got %d", e.sweepConfig.runs)
	}
	sampler, err := newSampler(e.sweepConfig.space, e.sweepConfig.seed)
	if err != nil {
		return nil, err
	}
	// Load the data
	if err := e.loadData(ctx); err != nil {
		return nil, err
	}

	// One seed covers both the parameter draws and the run ids.
	e.ids = id.NewGenerator(sampler.seed)
	params := sampler.sampleN(e.sweepConfig.runs, e.sweepConfig.startingCash)
	e.log.WithFields(map[string]interface{}{
		"runs":    len(params),
		"seed":    sampler.seed,
		"rows":    e.table.Len(),
		"tickers": len(e.table.Tickers),
	}).Info("starting sweep")

	started := time.Now()
	results := e.runSweep(ctx, params, e.table, e.currencies)
	report := aggregate(results, e.table.Dates())
	report.Seed = sampler.seed
	report.Reports = make([]*Report, len(results))
	for i, run := range results {
		if !run.Failed() {
			report.Reports[i] = generateReport(run, e.riskFreeRate())
		}
	}

	e.log.WithFields(map[string]interface{}{
		"completed":          report.Completed,
		"failed":             report.Failed,
		"bankrupt_pct":       report.BankruptcyPercent.StringFixed(2),
		"average_final_cash": report.AverageFinalCash.StringFixed(2),
		"elapsed":            time.Since(started).String(),
	}).Info("sweep finished")

	printSweepReport(e.out, report)
	if err := e.export(report); err != nil {
		return report, err
	}
	return report, ctx.Err()
}

// RunOnce runs a single simulation with fixed parameters.
func (e *Engine) RunOnce(ctx context.Context, params RunParams) (*RunResult, *Report, error) {
	if params.J < 1 || params.K < 1 {
		return nil, nil, fmt.Errorf("%w: J=%d K=%d", ErrInvalidSearchSpace, params.J, params.K)
	}
	if err := e.loadData(ctx); err != nil {
		return nil, nil, err
	}

	result := e.execute(e.ids.New(), params, e.table, e.currencies)
	if result.Failed() {
		return result, nil, result.Err
	}
	report := generateReport(result, e.riskFreeRate())
	printReport(e.out, report)

	if e.reportingConfig != nil && e.reportingConfig.writeFiles {
		single := aggregate([]*RunResult{result}, e.table.Dates())
		single.Reports = []*Report{report}
		if err := e.export(single); err != nil {
			return result, report, err
		}
	}
	return result, report, nil
}

func (e *Engine) loadData(ctx context.Context) error {
	if e.table != nil {
		return nil
	}
	table, err := e.db.GetMonthlyTable(ctx, e.dataRange.Start, e.dataRange.End)
	if err != nil {
		return fmt.Errorf("load monthly table: %w", err)
	}

	currencies, err := e.db.GetCurrencies(ctx)
	if err != nil {
		// No currency map only disables the currency notices.
		e.log.WithError(err).Warn("no ticker currency map, proceeding without")
		currencies = types.CurrencyMap{}
	}

	e.table = table
	e.currencies = currencies
	return nil
}

func (e *Engine) export(report *SweepReport) error {
	if e.reportingConfig == nil || !e.reportingConfig.writeFiles {
		return nil
	}
	paths, err := writeReportFiles(e.reportingConfig.filePath, e.reportingConfig.reportName, report)
	if err != nil {
		return err
	}
	for _, p := range paths {
		e.log.WithField("path", p).Info("report written")
	}
	return nil
}

func (e *Engine) riskFreeRate() decimal.Decimal {
	if e.reportingConfig == nil {
		return decimal.Zero
	}
	return e.reportingConfig.sharpeRiskFreeRate
}

func (e *Engine) progressWriter() io.Writer {
	if e.reportingConfig == nil || !e.reportingConfig.showProgress {
		return io.Discard
	}
	return e.out
}
