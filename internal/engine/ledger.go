package engine

import (
	"errors"
	"fmt"
	"momentum/types"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAllocation = errors.New("cash per stock must be positive")
	ErrPositionNotFound      = errors.New("no position formed at settlement target date")
	ErrAlreadySettled        = errors.New("position already settled")
)

// Jump is a single settlement leg that moved cash by more than the configured
// threshold, relative to the cash before the leg.
type Jump struct {
	Ticker    string
	Direction types.Direction
	Formation decimal.Decimal
	Current   decimal.Decimal
	Shares    decimal.Decimal
	Change    decimal.Decimal
}

// SettlementReport describes one settled long/short pair.
type SettlementReport struct {
	FormedAt   time.Time
	SettledAt  time.Time
	CashBefore decimal.Decimal
	CashAfter  decimal.Decimal
	// Tickers without a price at settlement, closed at their formation price.
	StalePrices []string
	Jumps       []Jump
}

// ledger owns the cash and the position book of a single simulation run. Books
// are keyed by formation date, one long and one short position per date.
type ledger struct {
	cash          decimal.Decimal
	ratio         decimal.Decimal
	jumpThreshold decimal.Decimal

	longBook  map[string]*types.Position
	shortBook map[string]*types.Position
	settled   map[string]bool

	cashHistory     []decimal.Decimal
	positionHistory []decimal.Decimal
	views           []types.LedgerView
}

func newLedger(cash, ratio, jumpThreshold decimal.Decimal) *ledger {
	return &ledger{
		cash:          cash,
		ratio:         ratio,
		jumpThreshold: jumpThreshold,
		longBook:      make(map[string]*types.Position),
		shortBook:     make(map[string]*types.Position),
		settled:       make(map[string]bool),
	}
}

// createPosition longs the winners and shorts the losers on date. The shorter
// list is padded so both sides share one cash-per-stock figure, and padded
// slots allocate nothing. When there is nothing to invest the date still gets
// an empty long and short position.
func (l *ledger) createPosition(winners, losers []types.Security, date time.Time) error {
	if len(winners) == 0 && len(losers) == 0 {
		return nil
	}
	padded := max(len(winners), len(losers))
	long := types.NewPosition(date, types.DirectionLong)
	short := types.NewPosition(date, types.DirectionShort)

	budget := l.cash.Mul(l.ratio)
	if budget.IsPositive() {
		cashPerStock := budget.Div(decimal.NewFromInt(int64(2 * padded)))
		for i := 0; i < padded; i++ {
			if i < len(losers) {
				s, err := l.allocate(losers[i], cashPerStock, types.DirectionShort)
				if err != nil {
					return err
				}
				short.Add(s)
			}
			if i < len(winners) {
				s, err := l.allocate(winners[i], cashPerStock, types.DirectionLong)
				if err != nil {
					return err
				}
				long.Add(s)
			}
		}
	}

	key := types.DateKey(date)
	l.longBook[key] = long
	l.shortBook[key] = short
	return nil
}

// allocate buys (long) or sells short as many whole shares as cashPerStock
// covers. The leftover stays in cash.
func (l *ledger) allocate(stock types.Security, cashPerStock decimal.Decimal, direction types.Direction) (types.Security, error) {
	if !cashPerStock.IsPositive() {
		return types.Security{}, fmt.Errorf("%s: %s: %w", stock.Ticker, cashPerStock, ErrNonPositiveAllocation)
	}
	if !stock.Price.IsPositive() {
		return types.Security{}, fmt.Errorf("%s: %s: %w", stock.Ticker, stock.Price, types.ErrNonPositivePrice)
	}

	shares := cashPerStock.Div(stock.Price).Floor()
	spent := shares.Mul(stock.Price)

	switch direction {
	case types.DirectionLong:
		l.cash = l.cash.Sub(spent)
	case types.DirectionShort:
		l.cash = l.cash.Add(spent)
	default:
		return types.Security{}, fmt.Errorf("allocate %s: unknown direction %q", stock.Ticker, direction)
	}
	return stock.Allocated(shares), nil
}

// settlePosition closes the pair formed k calendar months before current:
// shorts are bought back and longs sold at the prices in row.
func (l *ledger) settlePosition(current time.Time, row *types.Row, k int) (SettlementReport, error) {
	target := types.AddMonths(current, -k)
	key := types.DateKey(target)
	report := SettlementReport{
		FormedAt:   target,
		SettledAt:  current,
		CashBefore: l.cash,
	}

	long, okLong := l.longBook[key]
	short, okShort := l.shortBook[key]
	if !okLong || !okShort {
		return report, fmt.Errorf("settle %s: formed %s: %w",
			types.DateKey(current), key, ErrPositionNotFound)
	}
	if l.settled[key] {
		return report, fmt.Errorf("settle %s: formed %s: %w",
			types.DateKey(current), key, ErrAlreadySettled)
	}

	padded := max(len(long.Members), len(short.Members))
	for i := 0; i < padded; i++ {
		if i < len(short.Members) {
			l.settleLeg(short.Members[i], types.DirectionShort, row, &report)
		}
		if i < len(long.Members) {
			l.settleLeg(long.Members[i], types.DirectionLong, row, &report)
		}
	}

	l.settled[key] = true
	report.CashAfter = l.cash
	return report, nil
}

func (l *ledger) settleLeg(m types.Security, direction types.Direction, row *types.Row, report *SettlementReport) {
	price, ok := row.Price(m.Ticker)
	if !ok {
		price = m.Price
		report.StalePrices = append(report.StalePrices, m.Ticker)
	}

	before := l.cash
	amount := price.Mul(m.Shares)
	if direction == types.DirectionShort {
		l.cash = l.cash.Sub(amount)
	} else {
		l.cash = l.cash.Add(amount)
	}

	if before.IsZero() || !l.jumpThreshold.IsPositive() {
		return
	}
	change := l.cash.Sub(before).Div(before)
	if change.Abs().GreaterThan(l.jumpThreshold) {
		report.Jumps = append(report.Jumps, Jump{
			Ticker:    m.Ticker,
			Direction: direction,
			Formation: m.Price,
			Current:   price,
			Shares:    m.Shares,
			Change:    change,
		})
	}
}

// updateTrackers records cash and the marked-to-market value of every position
// ever formed, longs minus shorts.
func (l *ledger) updateTrackers(row *types.Row) {
	value := decimal.Zero
	openLong, openShort := 0, 0
	for key, p := range l.longBook {
		value = value.Add(p.Value(row))
		if !l.settled[key] {
			openLong++
		}
	}
	for key, p := range l.shortBook {
		value = value.Sub(p.Value(row))
		if !l.settled[key] {
			openShort++
		}
	}

	l.cashHistory = append(l.cashHistory, l.cash)
	l.positionHistory = append(l.positionHistory, value)
	l.views = append(l.views, types.LedgerView{
		Time:          row.Date,
		Cash:          l.cash,
		PositionValue: value,
		OpenLong:      openLong,
		OpenShort:     openShort,
	})
}

// fillCashTracker pads the cash history with the current cash up to n entries.
func (l *ledger) fillCashTracker(n int) {
	for len(l.cashHistory) < n {
		l.cashHistory = append(l.cashHistory, l.cash)
	}
}

// fillPositionTracker pads the position history with its last value up to n entries.
func (l *ledger) fillPositionTracker(n int) {
	last := decimal.Zero
	if len(l.positionHistory) > 0 {
		last = l.positionHistory[len(l.positionHistory)-1]
	}
	for len(l.positionHistory) < n {
		l.positionHistory = append(l.positionHistory, last)
	}
}

// fillViews pads the views so there is one per date.
func (l *ledger) fillViews(dates []time.Time) {
	if len(l.views) == 0 {
		return
	}
	last := l.views[len(l.views)-1]
	for len(l.views) < len(dates) {
		last.Time = dates[len(l.views)]
		l.views = append(l.views, last)
	}
}

func (l *ledger) getCash() decimal.Decimal {
	return l.cash
}
