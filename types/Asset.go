package types

import (
	"time"
)

type AssetType string

const (
	AssetTypeStock AssetType = "STOCK"
	AssetTypeEtf   AssetType = "ETF"
)

const ReferenceCurrency = "USD"

type Asset struct {
	Id         int       `json:"id"`
	Ticker     string    `json:"ticker"`
	Name       string    `json:"name"`
	Type       AssetType `json:"type"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// CurrencyMap maps a ticker to the currency its prices are quoted in.
type CurrencyMap map[string]string

func NewCurrencyMap(assets []Asset) CurrencyMap {
	m := make(CurrencyMap, len(assets))
	for _, a := range assets {
		if a.Currency == "" {
			continue
		}
		m[a.Ticker] = a.Currency
	}
	return m
}

// Lookup returns the currency of ticker and whether it is known.
func (c CurrencyMap) Lookup(ticker string) (string, bool) {
	cur, ok := c[ticker]
	return cur, ok
}
