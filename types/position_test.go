package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPosition_Value(t *testing.T) {
	row := NewRow(date(2020, 2, 1))
	row.Prices["WIN"] = decimal.NewNullDecimal(decimal.NewFromInt(120))
	row.Prices["LOS"] = decimal.NewNullDecimal(decimal.NewFromInt(40))

	long := NewPosition(date(2020, 1, 1), DirectionLong)
	long.Add(mustSecurity(t, "WIN", "0.1", "100").Allocated(decimal.NewFromInt(25)))

	short := NewPosition(date(2020, 1, 1), DirectionShort)
	short.Add(mustSecurity(t, "LOS", "-0.1", "50").Allocated(decimal.NewFromInt(50)))

	if got := long.Value(&row); !got.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("long value = %s, want 3000", got)
	}
	// (50 - 40) * 50
	if got := short.Value(&row); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("short value = %s, want 500", got)
	}
}

func TestPosition_ValueMissingPriceUsesFormationPrice(t *testing.T) {
	row := NewRow(date(2020, 2, 1))
	row.Prices["WIN"] = decimal.NullDecimal{}

	long := NewPosition(date(2020, 1, 1), DirectionLong)
	long.Add(mustSecurity(t, "WIN", "0.1", "100").Allocated(decimal.NewFromInt(2)))
	short := NewPosition(date(2020, 1, 1), DirectionShort)
	short.Add(mustSecurity(t, "GONE", "0.1", "100").Allocated(decimal.NewFromInt(2)))

	if got := long.Value(&row); !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("long value = %s, want 200", got)
	}
	if got := short.Value(&row); !got.IsZero() {
		t.Errorf("short value = %s, want 0", got)
	}
}
