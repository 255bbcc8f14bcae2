package types

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyTicker      = errors.New("empty ticker")
	ErrNonPositivePrice = errors.New("price must be positive")
)

// Security is the state of one ticker at a ranking date. Shares stays zero until
// the security is allocated into a Position.
type Security struct {
	Ticker         string          `json:"ticker"`
	TrailingReturn decimal.Decimal `json:"trailingReturn"`
	Price          decimal.Decimal `json:"price"`
	Shares         decimal.Decimal `json:"shares"`
}

func NewSecurity(ticker string, trailingReturn, price decimal.Decimal) (*Security, error) {
	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("security %s price %s: %w", ticker, price, ErrNonPositivePrice)
	}
	return &Security{
		Ticker:         ticker,
		TrailingReturn: trailingReturn,
		Price:          price,
	}, nil
}

// ByTrailingReturn orders securities ascending by trailing return. Use it with a
// stable sort so equal returns keep their insertion order.
func ByTrailingReturn(a, b Security) bool {
	return a.TrailingReturn.LessThan(b.TrailingReturn)
}

// Allocated returns a copy of s holding the given share count.
func (s Security) Allocated(shares decimal.Decimal) Security {
	s.Shares = shares
	return s
}

func (s Security) String() string {
	return s.Ticker
}
