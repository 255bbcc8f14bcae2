package repository

import (
	"context"
	"errors"
	"fmt"
	"momentum/types"

	"github.com/jackc/pgx/v5"
)

// GetAssetByTicker retrieves a types.Asset by its ticker.
func (db *Database) GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error) {
	asset, err := db.assets.GetAssetByTicker(ctx, ticker)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticker %s %w", ticker, ErrAssetNotFound)
		}
		return nil, err
	}
	a := convertAsset(asset)
	return &a, nil
}

// GetCurrencies builds the ticker to currency map from the assets table.
func (db *Database) GetCurrencies(ctx context.Context) (types.CurrencyMap, error) {
	rows, err := db.assets.ListAssets(ctx)
	if err != nil {
		return types.CurrencyMap{}, fmt.Errorf("%w: %w", ErrCurrencyMapUnavailable, err)
	}
	assets := make([]types.Asset, 0, len(rows))
	for _, r := range rows {
		assets = append(assets, convertAsset(r))
	}
	return types.NewCurrencyMap(assets), nil
}

func convertAsset(dao assetRow) types.Asset {
	a := types.Asset{
		Id:     int(dao.ID),
		Ticker: dao.Ticker,
		Name:   dao.Name,
		Type:   types.AssetType(dao.Type),
	}
	if dao.Currency != nil {
		a.Currency = *dao.Currency
	}
	if dao.CreatedAt != nil {
		a.CreatedAt = *dao.CreatedAt
	}
	if dao.ModifiedAt != nil {
		a.ModifiedAt = *dao.ModifiedAt
	}
	return a
}
