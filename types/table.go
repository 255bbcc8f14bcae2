package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one month of the table. A ticker absent from a map, or present with
// Valid=false, has no data for that month.
type Row struct {
	Date    time.Time
	Prices  map[string]decimal.NullDecimal
	Returns map[string]decimal.NullDecimal
}

func NewRow(date time.Time) Row {
	return Row{
		Date:    date,
		Prices:  make(map[string]decimal.NullDecimal),
		Returns: make(map[string]decimal.NullDecimal),
	}
}

func (r *Row) Price(ticker string) (decimal.Decimal, bool) {
	p, ok := r.Prices[ticker]
	if !ok || !p.Valid {
		return decimal.Zero, false
	}
	return p.Decimal, true
}

func (r *Row) Return(ticker string) (decimal.Decimal, bool) {
	v, ok := r.Returns[ticker]
	if !ok || !v.Valid {
		return decimal.Zero, false
	}
	return v.Decimal, true
}

// MonthlyTable holds adjusted closes and monthly returns, rows ascending by date.
// Tickers keeps the column order of the source, which is also the order ties
// are broken in when ranking.
type MonthlyTable struct {
	Tickers []string
	Rows    []Row
}

func (t *MonthlyTable) Len() int {
	return len(t.Rows)
}

func (t *MonthlyTable) Dates() []time.Time {
	dates := make([]time.Time, len(t.Rows))
	for i, r := range t.Rows {
		dates[i] = r.Date
	}
	return dates
}
