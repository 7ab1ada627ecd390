package client

import (
	"testing"
	"time"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

func sampleRecord() *Record {
	r := NewRecord(id.MustParseClientID("42"))
	now := time.Now().UTC()
	r.Purchases = []Purchase{
		{Quantity: 3, UnitPrice: types.USD(800), Total: types.USD(2400), Date: now},
		{Quantity: 1, UnitPrice: types.USD(1000), Total: types.USD(1000), Date: now},
	}
	r.Replacements = []Replacement{
		{Quantity: 2, Date: now},
	}
	r.ServicePurchases = []ServicePurchase{
		{Service: "setup", Total: types.USD(500), Date: now},
	}
	return r
}

func TestTotalItems(t *testing.T) {
	r := sampleRecord()
	if got := r.TotalItems(); got != 4 {
		t.Errorf("TotalItems: got %d, want 4", got)
	}
}

func TestTotalReplacements(t *testing.T) {
	r := sampleRecord()
	if got := r.TotalReplacements(); got != 2 {
		t.Errorf("TotalReplacements: got %d, want 2", got)
	}
}

func TestRevenue(t *testing.T) {
	r := sampleRecord()
	want := types.USD(3900) // 2400 + 1000 item revenue + 500 service
	if got := r.Revenue(); !got.Equal(want) {
		t.Errorf("Revenue: got %v, want %v", got, want)
	}
}

func TestRevenueEmpty(t *testing.T) {
	r := NewRecord(id.MustParseClientID("42"))
	got := r.Revenue()
	if !got.IsZero() {
		t.Errorf("Revenue of empty record: got %v, want zero", got)
	}
	// No history means no currency to report either.
	if got.Currency != "" {
		t.Errorf("Revenue of empty record: got currency %q, want none", got.Currency)
	}
}

func TestAveragePrice(t *testing.T) {
	r := sampleRecord()
	got, ok := r.AveragePrice()
	if !ok {
		t.Fatal("expected ok=true with purchases present")
	}
	want := types.USD(850) // 3400 spent on 4 items
	if !got.Equal(want) {
		t.Errorf("AveragePrice: got %v, want %v", got, want)
	}
}

func TestAveragePriceNoPurchases(t *testing.T) {
	r := NewRecord(id.MustParseClientID("42"))
	if _, ok := r.AveragePrice(); ok {
		t.Error("expected ok=false with no purchases")
	}

	// Service purchases alone don't count toward item averages.
	r.ServicePurchases = []ServicePurchase{{Service: "setup", Total: types.USD(500)}}
	if _, ok := r.AveragePrice(); ok {
		t.Error("expected ok=false with only service purchases")
	}
}
