package repository

import (
	"context"
	"errors"
	"momentum/types"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetMonthlyTable loads monthly adjusted closes and returns between start and
// end inclusive. A zero time leaves that side unbounded.
func (db *Database) GetMonthlyTable(ctx context.Context, start, end time.Time) (*types.MonthlyTable, error) {
	args := listMonthlyPricesParams{}
	if !start.IsZero() {
		args.Starttime = &start
	}
	if !end.IsZero() {
		args.Endtime = &end
	}
	rows, err := db.prices.ListMonthlyPrices(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoMonthlyPrices
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoMonthlyPrices
	}
	return pivotMonthlyPrices(rows)
}

// pivotMonthlyPrices turns long (ticker, month) rows into one table row per month.
// Tickers keep the order they first appear in.
func pivotMonthlyPrices(daos []monthlyPriceRow) (*types.MonthlyTable, error) {
	table := &types.MonthlyTable{}
	seen := make(map[string]bool)
	byMonth := make(map[string]int)

	for _, dao := range daos {
		if !seen[dao.Ticker] {
			seen[dao.Ticker] = true
			table.Tickers = append(table.Tickers, dao.Ticker)
		}
		key := types.DateKey(dao.Month)
		idx, ok := byMonth[key]
		if !ok {
			if n := len(table.Rows); n > 0 && !table.Rows[n-1].Date.Before(dao.Month) {
				return nil, ErrUnsortedTable
			}
			table.Rows = append(table.Rows, types.NewRow(dao.Month.UTC()))
			idx = len(table.Rows) - 1
			byMonth[key] = idx
		}
		table.Rows[idx].Prices[dao.Ticker] = dao.AdjClose
		table.Rows[idx].Returns[dao.Ticker] = dao.MonthlyReturn
	}
	return table, nil
}
