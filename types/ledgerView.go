package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerView is the state of a ledger after one monthly tracker update.
type LedgerView struct {
	Time          time.Time
	Cash          decimal.Decimal
	PositionValue decimal.Decimal
	OpenLong      int
	OpenShort     int
}
