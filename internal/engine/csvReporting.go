package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type tallyKind string

const (
	tallyCash     tallyKind = "cash"
	tallyPosition tallyKind = "positions"
)

// writeReportFiles writes the summary and both tallies under dir, named after
// reportName.
func writeReportFiles(dir, reportName string, report *SweepReport) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	write := func(suffix string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", reportName, suffix))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		if err := fn(f); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write("summary", func(w io.Writer) error { return writeSummaryCSV(w, report) }); err != nil {
		return written, err
	}
	for _, kind := range []tallyKind{tallyCash, tallyPosition} {
		if err := write(string(kind), func(w io.Writer) error { return writeTallyCSV(w, report, kind) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

// writeSummaryCSV writes one row per run.
func writeSummaryCSV(w io.Writer, report *SweepReport) error {
	cw := csv.NewWriter(w)

	header := []string{
		"run_id",
		"j",
		"k",
		"ratio",
		"bankrupt",
		"bankrupt_at",
		"final_cash",
		"net_profit",
		"cagr",
		"max_drawdown_pct",
		"sharpe",
		"settlement_misses",
		"error",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, run := range report.Runs {
		record := []string{
			run.ID,
			strconv.Itoa(run.Params.J),
			strconv.Itoa(run.Params.K),
			run.Params.Ratio.String(),
			strconv.FormatBool(run.Bankrupt()),
			"",
			"",
			"",
			"",
			"",
			"",
			strconv.Itoa(run.SettlementMisses),
			"",
		}
		if run.Bankrupt() {
			record[5] = run.BankruptAt.Format(time.DateOnly)
		}
		if run.Failed() {
			record[12] = run.Err.Error()
		} else if i < len(report.Reports) && report.Reports[i] != nil {
			rep := report.Reports[i]
			record[6] = rep.FinalCash.StringFixed(2)
			record[7] = rep.NetProfit.StringFixed(2)
			record[8] = rep.CAGR.StringFixed(6)
			record[9] = rep.MaxDrawdownPercent.StringFixed(6)
			record[10] = rep.SharpeRatio.StringFixed(6)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// writeTallyCSV writes one row per date with a column per completed run and
// the cross-run average last.
func writeTallyCSV(w io.Writer, report *SweepReport, kind tallyKind) error {
	cw := csv.NewWriter(w)

	var runs []*RunResult
	for _, run := range report.Runs {
		if !run.Failed() {
			runs = append(runs, run)
		}
	}

	header := make([]string, 0, len(runs)+2)
	header = append(header, "date")
	for _, run := range runs {
		header = append(header, run.ID)
	}
	header = append(header, "average")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	average := report.AverageCashTally
	if kind == tallyPosition {
		average = report.AveragePositionTally
	}

	for i, date := range report.Dates {
		record := make([]string, 0, len(header))
		record = append(record, date.Format(time.DateOnly))
		for _, run := range runs {
			series := run.cashTally
			if kind == tallyPosition {
				series = run.positionTally
			}
			record = append(record, cell(series, i))
		}
		record = append(record, cell(average, i))
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func cell(series []decimal.Decimal, i int) string {
	if i >= len(series) {
		return ""
	}
	return series[i].StringFixed(2)
}
