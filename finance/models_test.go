package finance

import (
	"testing"
	"time"

	"github.com/xraph/storefront/types"
)

func entry(t Type, method string, qty int, total int64) *Entry {
	e := NewEntry(t, "account", qty, types.USD(0), types.USD(total))
	e.PaymentMethod = method
	return e
}

func TestNewEntry(t *testing.T) {
	e := NewEntry(TypeIncome, "account", 3, types.USD(800), types.USD(2400))
	if e.ID.Prefix() != "fin" {
		t.Errorf("expected fin prefix, got %q", e.ID.Prefix())
	}
	if e.Date.IsZero() {
		t.Error("expected non-zero date")
	}
	if !e.Type.Valid() {
		t.Error("income should be a valid type")
	}
}

func TestTypeValid(t *testing.T) {
	tests := []struct {
		typ   Type
		valid bool
	}{
		{TypeIncome, true},
		{TypeExpense, true},
		{TypeWithdraw, true},
		{Type("refund"), false},
		{Type(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.Valid(); got != tt.valid {
				t.Errorf("Valid: got %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestBuildReport(t *testing.T) {
	entries := []*Entry{
		entry(TypeIncome, "btc", 3, 2400),
		entry(TypeIncome, "btc", 5, 4000),
		entry(TypeIncome, "paypal", 1, 1000),
		entry(TypeExpense, "btc", 0, 1500),
		entry(TypeExpense, "bank", 0, 500),
		entry(TypeWithdraw, "", 0, 3000),
	}

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	r := BuildReport(entries, start, end, "usd")

	if !r.Revenue.Equal(types.USD(7400)) {
		t.Errorf("Revenue: got %v, want %v", r.Revenue, types.USD(7400))
	}
	if !r.Expenses.Equal(types.USD(2000)) {
		t.Errorf("Expenses: got %v, want %v", r.Expenses, types.USD(2000))
	}
	if !r.Withdrawals.Equal(types.USD(3000)) {
		t.Errorf("Withdrawals: got %v, want %v", r.Withdrawals, types.USD(3000))
	}
	if !r.Profit.Equal(types.USD(5400)) {
		t.Errorf("Profit: got %v, want %v", r.Profit, types.USD(5400))
	}
	if r.ItemsSold != 9 {
		t.Errorf("ItemsSold: got %d, want 9", r.ItemsSold)
	}

	if got := r.RevenueByMethod["btc"]; !got.Equal(types.USD(6400)) {
		t.Errorf("btc revenue: got %v, want %v", got, types.USD(6400))
	}
	if got := r.ProfitByMethod["btc"]; !got.Equal(types.USD(4900)) {
		t.Errorf("btc profit: got %v, want %v", got, types.USD(4900))
	}
	if got := r.ProfitByMethod["paypal"]; !got.Equal(types.USD(1000)) {
		t.Errorf("paypal profit: got %v, want %v", got, types.USD(1000))
	}
	// Expense-only method shows a negative profit.
	if got := r.ProfitByMethod["bank"]; !got.Equal(types.USD(-500)) {
		t.Errorf("bank profit: got %v, want %v", got, types.USD(-500))
	}
}

func TestMargin(t *testing.T) {
	entries := []*Entry{
		entry(TypeIncome, "btc", 1, 3000),
		entry(TypeExpense, "btc", 0, 2000),
	}
	r := BuildReport(entries, time.Time{}, time.Time{}, "usd")

	margin, ok := r.Margin()
	if !ok {
		t.Fatal("expected margin to be present")
	}
	if margin != 50 {
		t.Errorf("Margin: got %v, want 50", margin)
	}
}

func TestMarginAbsentWithoutExpenses(t *testing.T) {
	entries := []*Entry{
		entry(TypeIncome, "btc", 1, 3000),
	}
	r := BuildReport(entries, time.Time{}, time.Time{}, "usd")

	if _, ok := r.Margin(); ok {
		t.Error("expected margin to be absent with zero expenses")
	}
}

func TestBuildReportEmpty(t *testing.T) {
	r := BuildReport(nil, time.Time{}, time.Time{}, "usd")
	if !r.Revenue.IsZero() || !r.Expenses.IsZero() || !r.Profit.IsZero() {
		t.Error("empty report should be all zero")
	}
	if r.ItemsSold != 0 {
		t.Errorf("ItemsSold: got %d, want 0", r.ItemsSold)
	}
	if _, ok := r.Margin(); ok {
		t.Error("empty report should have no margin")
	}
}
