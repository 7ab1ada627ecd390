package inventory

import (
	"github.com/xraph/storefront/types"
)

type Status string

const (
	StatusAvailable  Status = "available"  // in stock, sellable
	StatusSold       Status = "sold"       // allocated to a purchase
	StatusBad        Status = "bad"        // reported broken, not sellable
	StatusUncartable Status = "uncartable" // held back from sale
)

// Valid reports whether s is one of the known item statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusSold, StatusBad, StatusUncartable:
		return true
	}
	return false
}

// Sellable reports whether an item in this status can be allocated.
func (s Status) Sellable() bool {
	return s == StatusAvailable
}

// Item is a single-use credential in the pool. The credential payload
// itself is the identifier; status is the only mutable field.
type Item struct {
	types.Entity
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// New creates an Item with fresh timestamps.
func New(itemID string, status Status) *Item {
	return &Item{
		Entity: types.NewEntity(),
		ID:     itemID,
		Status: status,
	}
}

type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
