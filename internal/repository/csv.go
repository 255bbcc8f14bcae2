package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"momentum/types"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const returnsSuffix = "Returns"

// Layouts tried, in order, after the configured one.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"02/01/2006", // day first
}

// LoadMonthlyTableCSV opens path and reads it with ReadMonthlyTable.
func LoadMonthlyTableCSV(path, layout string) (*types.MonthlyTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := ReadMonthlyTable(f, layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ReadMonthlyTable reads the wide price table: a Date column, one adjusted
// close column per ticker and one "<ticker>Returns" column per ticker. The
// ticker set and its order are taken from the Returns columns. Empty and NaN
// cells are missing values. Other columns, such as a pandas index, are ignored.
func ReadMonthlyTable(r io.Reader, layout string) (*types.MonthlyTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoMonthlyPrices
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateCol := -1
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		columns[name] = i
		if strings.EqualFold(name, "date") && dateCol < 0 {
			dateCol = i
		}
	}
	if dateCol < 0 {
		return nil, ErrMissingDateColumn
	}

	table := &types.MonthlyTable{}
	priceCols := make(map[string]int)
	returnCols := make(map[string]int)
	for i, name := range header {
		name = strings.TrimSpace(name)
		ticker, ok := strings.CutSuffix(name, returnsSuffix)
		if !ok || ticker == "" {
			continue
		}
		p, ok := columns[ticker]
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrMissingPriceColumn)
		}
		table.Tickers = append(table.Tickers, ticker)
		priceCols[ticker] = p
		returnCols[ticker] = i
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseDate(record[dateCol], layout)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if n := len(table.Rows); n > 0 && !table.Rows[n-1].Date.Before(date) {
			return nil, fmt.Errorf("line %d: %s: %w", line, record[dateCol], ErrUnsortedTable)
		}

		row := types.NewRow(date)
		for _, ticker := range table.Tickers {
			if row.Prices[ticker], err = parseCell(record[priceCols[ticker]]); err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, ticker, err)
			}
			if row.Returns[ticker], err = parseCell(record[returnCols[ticker]]); err != nil {
				return nil, fmt.Errorf("line %d column %s%s: %w", line, ticker, returnsSuffix, err)
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, ErrNoMonthlyPrices
	}
	return table, nil
}

func parseDate(value, layout string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if layout != "" {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

func parseCell(value string) (decimal.NullDecimal, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "nan", "null", "none", "inf", "-inf":
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
