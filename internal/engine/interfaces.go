package engine

import (
	"context"
	"momentum/strategies/momentum"
	"momentum/types"
	"time"
)

type dataStore interface {
	GetMonthlyTable(ctx context.Context, start, end time.Time) (*types.MonthlyTable, error)
	GetCurrencies(ctx context.Context) (types.CurrencyMap, error)
}

// Ranker ranks the table at one row and splits a ranking into winners and losers.
type Ranker interface {
	J() int
	Evaluate(table *types.MonthlyTable, idx int, currencies types.CurrencyMap) momentum.Ranking
	SplitDeciles(ranked []types.Security) (winners, losers []types.Security)
}

// RankerFactory builds the ranker for a look-back of j months. Every run gets
// its own ranker.
type RankerFactory func(j int) Ranker
