package engine

import (
	"fmt"
	"io"
	"math"
	"momentum/types"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Report holds the performance of one run, measured on its cash series.
type Report struct {
	RunID       string
	Params      RunParams
	StartDate   time.Time
	EndDate     time.Time
	TotalMonths int
	Bankrupt    bool

	// Absolute performance
	FinalCash   decimal.Decimal
	NetProfit   decimal.Decimal
	TotalReturn decimal.Decimal
	CAGR        decimal.Decimal

	// Drawdown metrics
	MaxDrawdown        decimal.Decimal
	MaxDrawdownPercent decimal.Decimal
	MaxDrawdownMonths  int

	// Risk-adjusted metrics
	SharpeRatio decimal.Decimal

	Settlements      int
	SettlementMisses int
	Jumps            int
}

func printReport(w io.Writer, report *Report) {
	fmt.Fprintln(w, "===== Momentum Run Report =====")
	fmt.Fprintf(w, "Run:                   %s\n", report.RunID)
	fmt.Fprintf(w, "Parameters:            %s\n", report.Params)
	fmt.Fprintf(w, "Start Date:            %s\n", report.StartDate.Format(time.DateOnly))
	fmt.Fprintf(w, "Total Period:          %d months\n", report.TotalMonths)
	fmt.Fprintf(w, "Bankrupt:              %t\n", report.Bankrupt)

	fmt.Fprintln(w, "\n-- Absolute Performance --")
	fmt.Fprintf(w, "Final Cash:            %s\n", report.FinalCash.StringFixed(2))
	fmt.Fprintf(w, "Net Profit:            %s\n", report.NetProfit.StringFixed(2))
	fmt.Fprintf(w, "Total Return:          %s%%\n", report.TotalReturn.Mul(decimal.NewFromInt(100)).StringFixed(2))
	fmt.Fprintf(w, "CAGR:                  %s%%\n", report.CAGR.Mul(decimal.NewFromInt(100)).StringFixed(2))

	fmt.Fprintln(w, "\n-- Drawdown Metrics --")
	fmt.Fprintf(w, "Max Drawdown:          %s\n", report.MaxDrawdown.StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown %%:        %s\n", report.MaxDrawdownPercent.Mul(decimal.NewFromInt(100)).StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown Months:   %d\n", report.MaxDrawdownMonths)

	fmt.Fprintln(w, "\n-- Risk-Adjusted Metrics --")
	fmt.Fprintf(w, "Sharpe Ratio:          %s\n", report.SharpeRatio.StringFixed(4))

	fmt.Fprintln(w, "\n-- Settlements --")
	fmt.Fprintf(w, "Settled:               %d\n", report.Settlements)
	fmt.Fprintf(w, "Lookup Misses:         %d\n", report.SettlementMisses)
	fmt.Fprintf(w, "Cash Jumps:            %d\n", report.Jumps)

	fmt.Fprintln(w, "===============================")
}

func generateReport(result *RunResult, riskFreeRate decimal.Decimal) *Report {
	views := result.views
	report := &Report{
		RunID:            result.ID,
		Params:           result.Params,
		Bankrupt:         result.Bankrupt(),
		FinalCash:        result.finalCash,
		Settlements:      result.Settlements,
		SettlementMisses: result.SettlementMisses,
		Jumps:            len(result.Jumps),
	}
	if len(views) > 0 {
		report.StartDate = views[0].Time
		report.EndDate = views[len(views)-1].Time
		report.TotalMonths = monthsBetween(report.StartDate, report.EndDate)
	}

	var wg sync.WaitGroup
	wg.Add(4)
	// Done only after the field is written, so Wait publishes every result.
	go func() {
		defer wg.Done()
		report.NetProfit, report.TotalReturn = calcNetProfit(result.Params.StartingCash, result.finalCash)
	}()
	go func() {
		defer wg.Done()
		report.CAGR = calcCAGR(views)
	}()
	go func() {
		defer wg.Done()
		report.MaxDrawdown, report.MaxDrawdownPercent, report.MaxDrawdownMonths = calcDrawdownMetrics(views)
	}()
	go func() {
		defer wg.Done()
		report.SharpeRatio = calcSharpeRatio(views, riskFreeRate)
	}()
	wg.Wait()

	return report
}

func calcNetProfit(startingCash, finalCash decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	net := finalCash.Sub(startingCash)
	if !startingCash.IsPositive() {
		return net, decimal.Zero
	}
	return net, net.Div(startingCash)
}

func calcCAGR(views []types.LedgerView) decimal.Decimal {
	if len(views) < 2 {
		return decimal.Zero
	}

	startView := views[0]
	endView := views[len(views)-1]

	// If starting value is <= 0, CAGR is not well-defined
	if !startView.Cash.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}

	// time difference in years (using 365.25 days to account for leap years)
	duration := endView.Time.Sub(startView.Time)
	if duration <= 0 {
		return decimal.Zero
	}
	years := duration.Hours() / (24.0 * 365.25)

	ratio := endView.Cash.Div(startView.Cash)
	if !ratio.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}

	cagrFloat := math.Pow(ratio.InexactFloat64(), 1.0/years) - 1.0

	return decimal.NewFromFloat(cagrFloat)
}

func calcDrawdownMetrics(views []types.LedgerView) (decimal.Decimal, decimal.Decimal, int) {
	if len(views) == 0 {
		return decimal.Zero, decimal.Zero, 0
	}

	peak := decimal.Zero
	var peakTime time.Time

	maxDD := decimal.Zero
	maxDDPct := decimal.Zero
	maxDDMonths := 0

	for i, view := range views {
		cash := view.Cash

		if i == 0 || cash.GreaterThan(peak) || peak.IsZero() {
			peak = cash
			peakTime = view.Time
		}

		if peak.GreaterThan(decimal.Zero) {
			dd := peak.Sub(cash)

			if dd.GreaterThan(maxDD) {
				maxDD = dd
				maxDDPct = dd.Div(peak)
				maxDDMonths = monthsBetween(peakTime, view.Time)
			}
		}
	}

	return maxDD, maxDDPct, maxDDMonths
}

func calcSharpeRatio(views []types.LedgerView, annualRiskFree decimal.Decimal) decimal.Decimal {
	monthlyReturns := getMonthlyReturns(views)
	if len(monthlyReturns) < 2 {
		// Need at least 2 months to compute stddev
		return decimal.Zero
	}

	// rf_monthly = (1 + rf_annual)^(1/12) - 1
	rfMonthly := math.Pow(1.0+annualRiskFree.InexactFloat64(), 1.0/12.0) - 1.0

	excess := make([]float64, 0, len(monthlyReturns))
	for _, r := range monthlyReturns {
		excess = append(excess, r.InexactFloat64()-rfMonthly)
	}

	var sum float64
	for _, x := range excess {
		sum += x
	}
	meanMonthlyExcess := sum / float64(len(excess))

	// Sample standard deviation of monthly excess returns
	var varianceSum float64
	for _, x := range excess {
		diff := x - meanMonthlyExcess
		varianceSum += diff * diff
	}
	stdMonthly := math.Sqrt(varianceSum / float64(len(excess)-1))
	// Float noise on a constant series is not volatility.
	if stdMonthly < 1e-12 {
		return decimal.Zero
	}

	sharpeAnnual := meanMonthlyExcess / stdMonthly * math.Sqrt(12.0)

	return decimal.NewFromFloat(sharpeAnnual)
}

// getMonthlyReturns returns the cash returns between consecutive month ends.
// Views are not modified.
func getMonthlyReturns(views []types.LedgerView) []decimal.Decimal {
	if len(views) == 0 {
		return nil
	}

	sorted := append([]types.LedgerView(nil), views...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	// Last view of each calendar month
	var monthEnds []decimal.Decimal
	var lastYear int
	var lastMonth time.Month
	for i, view := range sorted {
		y, m, _ := view.Time.Date()
		if i > 0 && y == lastYear && m == lastMonth {
			monthEnds[len(monthEnds)-1] = view.Cash
			continue
		}
		monthEnds = append(monthEnds, view.Cash)
		lastYear, lastMonth = y, m
	}

	if len(monthEnds) < 2 {
		return nil
	}

	returns := make([]decimal.Decimal, 0, len(monthEnds)-1)
	prev := monthEnds[0]
	for _, curr := range monthEnds[1:] {
		if !prev.GreaterThan(decimal.Zero) {
			prev = curr
			continue
		}
		returns = append(returns, curr.Div(prev).Sub(decimal.NewFromInt(1)))
		prev = curr
	}

	return returns
}

func monthsBetween(from, to time.Time) int {
	fy, fm, _ := from.Date()
	ty, tm, _ := to.Date()
	return (ty-fy)*12 + int(tm-fm)
}
