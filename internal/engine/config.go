package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

type SweepConfig struct {
	runs         int
	startingCash decimal.Decimal
	workers      int
	seed         uint64
	space        SearchSpace
}

// NewSweepConfig configures a sweep of runs simulations. A zero seed draws one
// from the clock; workers <= 0 uses one worker per CPU.
func NewSweepConfig(runs int, startingCash decimal.Decimal, workers int, seed uint64, space SearchSpace) *SweepConfig {
	return &SweepConfig{
		runs:         runs,
		startingCash: startingCash,
		workers:      workers,
		seed:         seed,
		space:        space,
	}
}

type MissPolicy string

const (
	// MissPolicyWarn logs a settlement lookup-miss and keeps running.
	MissPolicyWarn MissPolicy = "warn"
	// MissPolicyAbort fails the run on the first lookup-miss.
	MissPolicyAbort MissPolicy = "abort"
)

func (p MissPolicy) Valid() bool {
	return p == MissPolicyWarn || p == MissPolicyAbort
}

type SettlementConfig struct {
	onMissing     MissPolicy
	atMaturity    bool
	jumpThreshold decimal.Decimal
}

// NewSettlementConfig sets how settlements behave. With atMaturity false a
// position is first settled one row after it matures (i > J+K), with true on
// the maturity row itself (i >= J+K).
func NewSettlementConfig(onMissing MissPolicy, atMaturity bool, jumpThreshold decimal.Decimal) *SettlementConfig {
	if !onMissing.Valid() {
		onMissing = MissPolicyWarn
	}
	return &SettlementConfig{
		onMissing:     onMissing,
		atMaturity:    atMaturity,
		jumpThreshold: jumpThreshold,
	}
}

func DefaultSettlementConfig() *SettlementConfig {
	return NewSettlementConfig(MissPolicyWarn, false, decimal.RequireFromString("0.15"))
}

type ReportingConfig struct {
	sharpeRiskFreeRate decimal.Decimal
	writeFiles         bool
	reportName         string
	filePath           string
	showProgress       bool
}

func NewReportingConfig(sharpeRiskFreeRate decimal.Decimal, reportFile bool, reportName string, filePath string, showProgress bool) *ReportingConfig {
	return &ReportingConfig{
		sharpeRiskFreeRate: sharpeRiskFreeRate,
		writeFiles:         reportFile,
		reportName:         reportName,
		filePath:           filePath,
		showProgress:       showProgress,
	}
}

// DataRange limits the rows loaded from the data store. Zero times are unbounded.
type DataRange struct {
	Start time.Time
	End   time.Time
}
