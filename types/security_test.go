package types

import (
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewSecurity(t *testing.T) {
	tests := []struct {
		name    string
		ticker  string
		ret     string
		price   string
		wantErr error
	}{
		{"valid", "TEST", "0.01", "1", nil},
		{"negative return is fine", "TEST", "-0.5", "10", nil},
		{"empty ticker", "", "0.01", "1", ErrEmptyTicker},
		{"zero price", "TEST", "0", "0", ErrNonPositivePrice},
		{"negative price", "TEST", "0", "-1", ErrNonPositivePrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSecurity(tt.ticker, decimal.RequireFromString(tt.ret), decimal.RequireFromString(tt.price))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewSecurity() error = %v, want %v", err, tt.wantErr)
				}
				if s != nil {
					t.Fatalf("NewSecurity() = %v, want nil", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSecurity() unexpected error %v", err)
			}
			if s.Ticker != tt.ticker || !s.Shares.IsZero() {
				t.Errorf("NewSecurity() = %+v", s)
			}
		})
	}
}

func TestByTrailingReturn_Sorted(t *testing.T) {
	high := mustSecurity(t, "high", "10", "10")
	med := mustSecurity(t, "med", "5", "5")
	low := mustSecurity(t, "low", "1", "1")
	stocks := []Security{high, med, low}

	sort.SliceStable(stocks, func(i, j int) bool { return ByTrailingReturn(stocks[i], stocks[j]) })
	if got := tickers(stocks); got != "low,med,high" {
		t.Errorf("sorted = %s, want low,med,high", got)
	}
}

func TestByTrailingReturn_StableOnTies(t *testing.T) {
	stocks := []Security{
		mustSecurity(t, "equal1", "7", "7"),
		mustSecurity(t, "equal2", "7", "7"),
		mustSecurity(t, "below", "6", "7"),
		mustSecurity(t, "equal3", "7", "7"),
	}
	sort.SliceStable(stocks, func(i, j int) bool { return ByTrailingReturn(stocks[i], stocks[j]) })
	if got := tickers(stocks); got != "below,equal1,equal2,equal3" {
		t.Errorf("sorted = %s, want below,equal1,equal2,equal3", got)
	}
}

func TestSecurity_AllocatedCopies(t *testing.T) {
	s := mustSecurity(t, "A", "0.1", "50")
	a := s.Allocated(decimal.NewFromInt(3))
	if !s.Shares.IsZero() {
		t.Errorf("original shares mutated: %s", s.Shares)
	}
	if !a.Shares.Equal(decimal.NewFromInt(3)) {
		t.Errorf("allocated shares = %s, want 3", a.Shares)
	}
}

func mustSecurity(t *testing.T, ticker, ret, price string) Security {
	t.Helper()
	s, err := NewSecurity(ticker, decimal.RequireFromString(ret), decimal.RequireFromString(price))
	if err != nil {
		t.Fatalf("NewSecurity(%s): %v", ticker, err)
	}
	return *s
}

func tickers(stocks []Security) string {
	out := ""
	for i, s := range stocks {
		if i > 0 {
			out += ","
		}
		out += s.Ticker
	}
	return out
}
