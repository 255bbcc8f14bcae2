package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the group of securities longed or shorted on one formation date.
// Members are appended while the position is being formed and never touched after.
type Position struct {
	FormedAt  time.Time
	Direction Direction
	Members   []Security
}

func NewPosition(formedAt time.Time, direction Direction) *Position {
	return &Position{
		FormedAt:  formedAt,
		Direction: direction,
	}
}

func (p *Position) Add(s Security) {
	p.Members = append(p.Members, s)
}

// Value marks the position to market against row. Long positions are worth
// price*shares, short positions their unrealized profit (entry-current)*shares.
// A member without a current price is valued at its formation price.
func (p *Position) Value(row *Row) decimal.Decimal {
	total := decimal.Zero
	for _, m := range p.Members {
		current, ok := row.Price(m.Ticker)
		if !ok {
			current = m.Price
		}
		switch p.Direction {
		case DirectionLong:
			total = total.Add(current.Mul(m.Shares))
		case DirectionShort:
			total = total.Add(m.Price.Sub(current).Mul(m.Shares))
		}
	}
	return total
}

func (p *Position) Tickers() []string {
	out := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		out = append(out, m.Ticker)
	}
	return out
}
