package repository

import (
	"context"
	"momentum/types"
	"time"
)

// FileStore serves the price table and currency map from local files.
type FileStore struct {
	pricesFile   string
	currencyFile string
	dateLayout   string
}

func NewFileStore(pricesFile, currencyFile, dateLayout string) *FileStore {
	return &FileStore{
		pricesFile:   pricesFile,
		currencyFile: currencyFile,
		dateLayout:   dateLayout,
	}
}

// GetMonthlyTable reads the prices file and keeps the rows between start and
// end inclusive. A zero time leaves that side unbounded.
func (s *FileStore) GetMonthlyTable(ctx context.Context, start, end time.Time) (*types.MonthlyTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := LoadMonthlyTableCSV(s.pricesFile, s.dateLayout)
	if err != nil {
		return nil, err
	}
	return filterRows(table, start, end)
}

func (s *FileStore) GetCurrencies(ctx context.Context) (types.CurrencyMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.currencyFile == "" {
		return types.CurrencyMap{}, ErrCurrencyMapUnavailable
	}
	return LoadCurrencyMap(s.currencyFile)
}

func (s *FileStore) Close() {}

func filterRows(table *types.MonthlyTable, start, end time.Time) (*types.MonthlyTable, error) {
	if start.IsZero() && end.IsZero() {
		return table, nil
	}
	filtered := &types.MonthlyTable{Tickers: table.Tickers}
	for _, row := range table.Rows {
		if !start.IsZero() && row.Date.Before(start) {
			continue
		}
		if !end.IsZero() && row.Date.After(end) {
			continue
		}
		filtered.Rows = append(filtered.Rows, row)
	}
	if len(filtered.Rows) == 0 {
		return nil, ErrNoMonthlyPrices
	}
	return filtered, nil
}
