package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMonthlyTableCSV(t *testing.T) {
	table, err := LoadMonthlyTableCSV("testdata/dummy_data.csv", time.DateOnly)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, table.Tickers)
	require.Equal(t, 6, table.Len())
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), table.Rows[0].Date)

	_, ok := table.Rows[0].Return("A")
	assert.False(t, ok, "first row has no returns")

	r, ok := table.Rows[1].Return("E")
	require.True(t, ok)
	assert.Equal(t, "0.035", r.String())

	p, ok := table.Rows[2].Price("D")
	require.True(t, ok)
	assert.Equal(t, "109.18", p.String())

	_, ok = table.Rows[5].Price("A")
	assert.False(t, ok, "last row has no prices")
}

func TestReadMonthlyTable(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		layout  string
		wantErr error
		rows    int
		tickers []string
	}{
		{
			name:    "pandas index column is ignored",
			input:   ",Date,X,XReturns\n0,2020-01-31,1,\n1,2020-02-29,2,1.0\n",
			layout:  time.DateOnly,
			rows:    2,
			tickers: []string{"X"},
		},
		{
			name:    "datetime layout falls back",
			input:   "Date,X,XReturns\n2020-01-31 00:00:00,1,NaN\n",
			layout:  time.DateOnly,
			rows:    1,
			tickers: []string{"X"},
		},
		{
			name:    "price column without returns is not a ticker",
			input:   "Date,X,Y,XReturns\n2020-01-31,1,3,\n",
			rows:    1,
			tickers: []string{"X"},
		},
		{
			name:    "returns without price",
			input:   "Date,X,XReturns,YReturns\n2020-01-31,1,,\n",
			wantErr: ErrMissingPriceColumn,
		},
		{
			name:    "no date column",
			input:   "When,X,XReturns\n2020-01-31,1,\n",
			wantErr: ErrMissingDateColumn,
		},
		{
			name:    "descending dates",
			input:   "Date,X,XReturns\n2020-02-29,1,\n2020-01-31,1,\n",
			wantErr: ErrUnsortedTable,
		},
		{
			name:    "duplicate dates",
			input:   "Date,X,XReturns\n2020-01-31,1,\n2020-01-31,1,\n",
			wantErr: ErrUnsortedTable,
		},
		{
			name:    "header only",
			input:   "Date,X,XReturns\n",
			wantErr: ErrNoMonthlyPrices,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrNoMonthlyPrices,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadMonthlyTable(strings.NewReader(tt.input), tt.layout)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows, got.Len())
			assert.Equal(t, tt.tickers, got.Tickers)
		})
	}
}

func TestReadMonthlyTableDayFirstDates(t *testing.T) {
	input := "Date,X,XReturns\n01/01/2020,1,\n01/02/2020,2,1.0\n31/03/2020,3,0.5\n"
	for _, layout := range []string{"", time.DateOnly} {
		t.Run("layout="+layout, func(t *testing.T) {
			table, err := ReadMonthlyTable(strings.NewReader(input), layout)
			require.NoError(t, err)
			assert.Equal(t, []time.Time{
				time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC),
			}, table.Dates())
		})
	}
}

func TestReadMonthlyTableBadNumber(t *testing.T) {
	_, err := ReadMonthlyTable(strings.NewReader("Date,X,XReturns\n2020-01-31,abc,\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestFileStore_GetMonthlyTable(t *testing.T) {
	store := NewFileStore("testdata/dummy_data.csv", "testdata/code_to_currency.json", time.DateOnly)

	table, err := store.GetMonthlyTable(context.Background(),
		time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	_, err = store.GetMonthlyTable(context.Background(), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	assert.ErrorIs(t, err, ErrNoMonthlyPrices)

	_, err = NewFileStore("testdata/missing.csv", "", "").GetMonthlyTable(context.Background(), time.Time{}, time.Time{})
	assert.Error(t, err)
}
