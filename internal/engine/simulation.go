package engine

import (
	"errors"
	"fmt"
	"momentum/internal/metrics"
	"momentum/pkg/logger"
	"momentum/strategies/momentum"
	"momentum/types"
	"time"

	"github.com/shopspring/decimal"
)

type RunState string

const (
	RunStateWarmup   RunState = "WARMUP"
	RunStateActive   RunState = "ACTIVE"
	RunStateBankrupt RunState = "BANKRUPT"
)

// RunResult is the immutable outcome of one simulation run. Err is set when the
// run failed; the series are then whatever was recorded before the failure.
type RunResult struct {
	ID         string
	Params     RunParams
	State      RunState
	BankruptAt time.Time
	Err        error

	Settlements      int
	SettlementMisses int
	Jumps            []Jump

	cashTally     []decimal.Decimal
	positionTally []decimal.Decimal
	views         []types.LedgerView
	finalCash     decimal.Decimal
}

func (r *RunResult) Bankrupt() bool {
	return r.State == RunStateBankrupt
}

func (r *RunResult) Failed() bool {
	return r.Err != nil
}

// CashTally returns the cash after every row, flat after bankruptcy.
func (r *RunResult) CashTally() []decimal.Decimal {
	return append([]decimal.Decimal(nil), r.cashTally...)
}

func (r *RunResult) PositionTally() []decimal.Decimal {
	return append([]decimal.Decimal(nil), r.positionTally...)
}

func (r *RunResult) Views() []types.LedgerView {
	return append([]types.LedgerView(nil), r.views...)
}

func (r *RunResult) FinalCash() decimal.Decimal {
	return r.finalCash
}

func (r *RunResult) outcome() string {
	switch {
	case r.Failed():
		return metrics.OutcomeFailed
	case r.Bankrupt():
		return metrics.OutcomeBankrupt
	default:
		return metrics.OutcomeCompleted
	}
}

// simulation runs the J/K strategy over a monthly table, one row per month.
type simulation struct {
	id         string
	params     RunParams
	ranker     Ranker
	ledger     *ledger
	settlement *SettlementConfig
	log        *logger.Logger

	state     RunState
	bankrupt  time.Time
	warned    map[string]bool
	settled   int
	misses    int
	jumps     []Jump
	finalized bool
}

func newSimulation(id string, params RunParams, ranker Ranker, settlement *SettlementConfig, log *logger.Logger) *simulation {
	return &simulation{
		id:         id,
		params:     params,
		ranker:     ranker,
		ledger:     newLedger(params.StartingCash, params.Ratio, settlement.jumpThreshold),
		settlement: settlement,
		log:        log,
		state:      RunStateWarmup,
		warned:     make(map[string]bool),
	}
}

// run processes every row in order and stops early on bankruptcy. A run is
// executed once.
func (s *simulation) run(table *types.MonthlyTable, currencies types.CurrencyMap) error {
	if s.finalized {
		return fmt.Errorf("run %s already finished", s.id)
	}
	defer func() { s.finalized = true }()

	j, k := s.params.J, s.params.K
	for i := range table.Rows {
		row := &table.Rows[i]

		if i >= j {
			s.state = RunStateActive
			ranking := s.ranker.Evaluate(table, i, currencies)
			s.logRanking(row.Date, ranking)
			if len(ranking.Securities) > 0 {
				winners, losers := s.ranker.SplitDeciles(ranking.Securities)
				if err := s.ledger.createPosition(winners, losers, row.Date); err != nil {
					return fmt.Errorf("form position %s: %w", types.DateKey(row.Date), err)
				}
				metrics.PositionsFormed.Inc()
			}
		}

		if s.settleDue(i) {
			if err := s.settle(row, k); err != nil {
				return err
			}
		}

		s.ledger.updateTrackers(row)

		if s.ledger.getCash().IsNegative() {
			s.state = RunStateBankrupt
			s.bankrupt = row.Date
			s.ledger.fillCashTracker(table.Len())
			s.ledger.fillPositionTracker(table.Len())
			s.ledger.fillViews(table.Dates())
			s.log.WithField("date", types.DateKey(row.Date)).
				Infof("bankrupt with cash %s", s.ledger.getCash().StringFixed(2))
			return nil
		}
	}
	return nil
}

func (s *simulation) settleDue(i int) bool {
	due := s.params.J + s.params.K
	if s.settlement.atMaturity {
		return i >= due
	}
	return i > due
}

func (s *simulation) settle(row *types.Row, k int) error {
	report, err := s.ledger.settlePosition(row.Date, row, k)
	if err != nil {
		if errors.Is(err, ErrPositionNotFound) && s.settlement.onMissing == MissPolicyWarn {
			s.misses++
			metrics.SettlementMisses.Inc()
			s.log.WithError(err).Warn("settlement skipped")
			return nil
		}
		return err
	}

	s.settled++
	if len(report.StalePrices) > 0 {
		s.log.WithField("tickers", report.StalePrices).
			Warnf("settled %s at formation prices", types.DateKey(report.FormedAt))
	}
	for _, jump := range report.Jumps {
		s.log.WithFields(map[string]interface{}{
			"ticker":    jump.Ticker,
			"direction": jump.Direction,
			"formation": jump.Formation.String(),
			"current":   jump.Current.String(),
			"shares":    jump.Shares.String(),
		}).Debugf("cash jumped %s%%", jump.Change.Mul(decimal.NewFromInt(100)).StringFixed(1))
	}
	s.jumps = append(s.jumps, report.Jumps...)
	return nil
}

// logRanking is the only place ranking diagnostics are emitted.
func (s *simulation) logRanking(date time.Time, ranking momentum.Ranking) {
	for _, skip := range ranking.Skips {
		metrics.SkippedTickers.WithLabelValues(string(skip.Reason)).Inc()
		if s.log.Enabled("debug") {
			l := s.log.WithFields(map[string]interface{}{
				"date":   types.DateKey(date),
				"ticker": skip.Ticker,
				"reason": string(skip.Reason),
			})
			if skip.Err != nil {
				l = l.WithError(skip.Err)
			}
			l.Debug("ticker skipped")
		}
	}
	for _, notice := range ranking.Currencies {
		if s.warned[notice.Ticker] {
			continue
		}
		s.warned[notice.Ticker] = true
		currency := notice.Currency
		if currency == "" {
			currency = "unknown"
		}
		s.log.WithField("ticker", notice.Ticker).
			Warnf("prices quoted in %s, not %s", currency, types.ReferenceCurrency)
	}
}

func (s *simulation) result(err error) *RunResult {
	return &RunResult{
		ID:               s.id,
		Params:           s.params,
		State:            s.state,
		BankruptAt:       s.bankrupt,
		Err:              err,
		Settlements:      s.settled,
		SettlementMisses: s.misses,
		Jumps:            s.jumps,
		cashTally:        s.ledger.cashHistory,
		positionTally:    s.ledger.positionHistory,
		views:            s.ledger.views,
		finalCash:        s.ledger.getCash(),
	}
}
