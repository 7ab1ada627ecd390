package pricing

import (
	"errors"
	"sort"

	"github.com/xraph/storefront/types"
)

// ErrUnpriced is returned by PriceFor when no tier covers the quantity.
var ErrUnpriced = errors.New("pricing: no tier covers quantity")

// Tier is one step of the volume pricing table. A tier applies to any
// quantity at or above its Step, up to the next tier's Step. The top
// tier is open-ended.
type Tier struct {
	types.Entity
	Step      int         `json:"step"`
	UnitPrice types.Money `json:"unit_price"`
}

// Table is a pricing table ordered by ascending Step.
type Table []Tier

// Sorted returns a copy of the table ordered by ascending Step.
func (t Table) Sorted() Table {
	out := make(Table, len(t))
	copy(out, t)
	sort.Slice(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out
}

// UnitPriceFor resolves the unit price for a quantity: the tier with
// the greatest Step not exceeding qty wins. Quantities below the
// smallest Step are unpriced.
func (t Table) UnitPriceFor(qty int) (types.Money, error) {
	if qty <= 0 {
		return types.Money{}, ErrUnpriced
	}

	sorted := t.Sorted()
	found := false
	var price types.Money
	for _, tier := range sorted {
		if tier.Step > qty {
			break
		}
		price = tier.UnitPrice
		found = true
	}

	if !found {
		return types.Money{}, ErrUnpriced
	}
	return price, nil
}

// TotalFor resolves the unit price for qty and multiplies it out.
func (t Table) TotalFor(qty int) (types.Money, error) {
	unit, err := t.UnitPriceFor(qty)
	if err != nil {
		return types.Money{}, err
	}
	return unit.Multiply(int64(qty)), nil
}
