package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type assetRow struct {
	ID         int32
	Ticker     string
	Name       string
	Type       string
	Currency   *string
	CreatedAt  *time.Time
	ModifiedAt *time.Time
}

type monthlyPriceRow struct {
	Ticker        string
	Month         time.Time
	AdjClose      decimal.NullDecimal
	MonthlyReturn decimal.NullDecimal
}

type listMonthlyPricesParams struct {
	Starttime *time.Time
	Endtime   *time.Time
}

type queries struct {
	pool *pgxpool.Pool
}

const getAssetByTicker = `SELECT id, ticker, name, type, currency, created_at, modified_at
FROM assets
WHERE ticker = $1`

func (q *queries) GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error) {
	var a assetRow
	err := q.pool.QueryRow(ctx, getAssetByTicker, ticker).
		Scan(&a.ID, &a.Ticker, &a.Name, &a.Type, &a.Currency, &a.CreatedAt, &a.ModifiedAt)
	return a, err
}

const listAssets = `SELECT id, ticker, name, type, currency, created_at, modified_at
FROM assets
ORDER BY ticker`

func (q *queries) ListAssets(ctx context.Context) ([]assetRow, error) {
	rows, err := q.pool.Query(ctx, listAssets)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (assetRow, error) {
		var a assetRow
		err := row.Scan(&a.ID, &a.Ticker, &a.Name, &a.Type, &a.Currency, &a.CreatedAt, &a.ModifiedAt)
		return a, err
	})
}

const listMonthlyPrices = `SELECT ticker, month, adj_close, monthly_return
FROM monthly_prices
WHERE ($1::date IS NULL OR month >= $1::date)
  AND ($2::date IS NULL OR month <= $2::date)
ORDER BY month, ticker`

func (q *queries) ListMonthlyPrices(ctx context.Context, arg listMonthlyPricesParams) ([]monthlyPriceRow, error) {
	rows, err := q.pool.Query(ctx, listMonthlyPrices, arg.Starttime, arg.Endtime)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (monthlyPriceRow, error) {
		var p monthlyPriceRow
		err := row.Scan(&p.Ticker, &p.Month, &p.AdjClose, &p.MonthlyReturn)
		return p, err
	})
}
