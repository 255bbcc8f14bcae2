package momentum

import (
	"momentum/types"
	"sort"

	"github.com/shopspring/decimal"
)

type SkipReason string

const (
	SkipMissingReturn   SkipReason = "MISSING_RETURN"
	SkipMissingPrice    SkipReason = "MISSING_PRICE"
	SkipInvalidSecurity SkipReason = "INVALID_SECURITY"
)

// Skip records a ticker left out of one month's ranking.
type Skip struct {
	Ticker string
	Reason SkipReason
	Err    error
}

// CurrencyNotice flags a ticker that is not quoted in the reference currency.
// Currency is empty when the ticker is missing from the currency map.
type CurrencyNotice struct {
	Ticker   string
	Currency string
}

// Ranking is the outcome of evaluating one month. Securities are sorted
// ascending by trailing return.
type Ranking struct {
	Securities []types.Security
	Skips      []Skip
	Currencies []CurrencyNotice
}

// Ranker implements the J-month look-back of the Jegadeesh & Titman strategy:
// at month t every ticker is ranked by its mean monthly return over [t-J, t).
type Ranker struct {
	j int
}

func NewRanker(j int) *Ranker {
	return &Ranker{j: j}
}

func (r *Ranker) J() int {
	return r.j
}

func (r *Ranker) Rank(table *types.MonthlyTable, idx int, currencies types.CurrencyMap) []types.Security {
	return r.Evaluate(table, idx, currencies).Securities
}

// Evaluate ranks the tickers of table at row idx. It never logs; callers decide
// what to do with the skips and notices.
func (r *Ranker) Evaluate(table *types.MonthlyTable, idx int, currencies types.CurrencyMap) Ranking {
	var ranking Ranking
	if table == nil || idx < 0 || idx >= len(table.Rows) {
		return ranking
	}
	current := &table.Rows[idx]
	window := r.window(table, idx)

	for _, ticker := range table.Tickers {
		if len(currencies) > 0 {
			if cur, ok := currencies.Lookup(ticker); !ok || cur != types.ReferenceCurrency {
				ranking.Currencies = append(ranking.Currencies, CurrencyNotice{Ticker: ticker, Currency: cur})
			}
		}

		avg, ok := trailingReturn(window, ticker)
		if !ok {
			ranking.Skips = append(ranking.Skips, Skip{Ticker: ticker, Reason: SkipMissingReturn})
			continue
		}
		price, ok := current.Price(ticker)
		if !ok {
			ranking.Skips = append(ranking.Skips, Skip{Ticker: ticker, Reason: SkipMissingPrice})
			continue
		}
		sec, err := types.NewSecurity(ticker, avg, price)
		if err != nil {
			ranking.Skips = append(ranking.Skips, Skip{Ticker: ticker, Reason: SkipInvalidSecurity, Err: err})
			continue
		}
		ranking.Securities = append(ranking.Securities, *sec)
	}

	sort.SliceStable(ranking.Securities, func(i, j int) bool {
		return types.ByTrailingReturn(ranking.Securities[i], ranking.Securities[j])
	})
	return ranking
}

// window returns the rows dated in [t - J months, t) where t is the date of row idx.
// The row at t only supplies the current price, never its own signal.
func (r *Ranker) window(table *types.MonthlyTable, idx int) []types.Row {
	t := table.Rows[idx].Date
	start := types.AddMonths(t, -r.j)
	if !start.Before(t) {
		return nil
	}
	lo := idx
	for lo > 0 {
		d := table.Rows[lo-1].Date
		if d.Before(start) {
			break
		}
		lo--
	}
	hi := idx
	for hi > lo && !table.Rows[hi-1].Date.Before(t) {
		hi--
	}
	return table.Rows[lo:hi]
}

// trailingReturn is the arithmetic mean of ticker's returns over window. Any gap
// in the window, or an empty window, leaves it undefined.
func trailingReturn(window []types.Row, ticker string) (decimal.Decimal, bool) {
	if len(window) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for i := range window {
		v, ok := window[i].Return(ticker)
		if !ok {
			return decimal.Zero, false
		}
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(window)))), true
}
