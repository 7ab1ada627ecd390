package client

import (
	"time"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

// Purchase is one completed item purchase in a client's history.
type Purchase struct {
	Quantity      int         `json:"quantity"`
	UnitPrice     types.Money `json:"unit_price"`
	Total         types.Money `json:"total"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	ItemIDs       []string    `json:"item_ids,omitempty"`
	Date          time.Time   `json:"date"`
}

// Replacement is a batch of items handed out to replace bad ones.
type Replacement struct {
	Quantity int       `json:"quantity"`
	ItemIDs  []string  `json:"item_ids,omitempty"`
	Date     time.Time `json:"date"`
}

// ServicePurchase is a non-inventory sale (custom work, add-ons).
type ServicePurchase struct {
	Service string      `json:"service"`
	Total   types.Money `json:"total"`
	Date    time.Time   `json:"date"`
}

// Record is a client's full purchase history. Records are created
// lazily on first purchase or replacement. Aggregates are folds over
// the history; nothing is cached, so the lists are the source of truth.
type Record struct {
	ClientID         id.ClientID       `json:"client_id"`
	RegisteredAt     time.Time         `json:"registered_at"`
	Level            int               `json:"level"`
	Purchases        []Purchase        `json:"purchases"`
	Replacements     []Replacement     `json:"replacements"`
	ServicePurchases []ServicePurchase `json:"service_purchases"`
	LegitChecks      int               `json:"legit_checks"`
}

// NewRecord creates an empty record registered now.
func NewRecord(clientID id.ClientID) *Record {
	return &Record{
		ClientID:     clientID,
		RegisteredAt: time.Now().UTC(),
	}
}

// TotalItems returns the number of items ever purchased.
func (r *Record) TotalItems() int {
	n := 0
	for _, p := range r.Purchases {
		n += p.Quantity
	}
	return n
}

// TotalReplacements returns the number of items ever replaced.
func (r *Record) TotalReplacements() int {
	n := 0
	for _, rep := range r.Replacements {
		n += rep.Quantity
	}
	return n
}

// Revenue returns the total amount the client has paid, item purchases
// and service purchases combined.
func (r *Record) Revenue() types.Money {
	var total types.Money
	seeded := false
	for _, p := range r.Purchases {
		if !seeded {
			total = p.Total
			seeded = true
			continue
		}
		total = total.Add(p.Total)
	}
	for _, sp := range r.ServicePurchases {
		if !seeded {
			total = sp.Total
			seeded = true
			continue
		}
		total = total.Add(sp.Total)
	}
	if !seeded {
		return types.Money{}
	}
	return total
}

// AveragePrice returns the average unit price across all item
// purchases. ok is false when the client has no purchases.
func (r *Record) AveragePrice() (types.Money, bool) {
	items := r.TotalItems()
	if items == 0 {
		return types.Money{}, false
	}

	var spent types.Money
	for i, p := range r.Purchases {
		if i == 0 {
			spent = p.Total
			continue
		}
		spent = spent.Add(p.Total)
	}
	return spent.Divide(int64(items)), true
}
