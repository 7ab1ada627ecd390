package finance

import (
	"time"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeWithdraw Type = "withdraw"
)

// Valid reports whether t is one of the known entry types.
func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeWithdraw:
		return true
	}
	return false
}

// Entry is one immutable statement in the append-only finance ledger.
type Entry struct {
	types.Entity
	ID            id.EntryID  `json:"id"`
	Type          Type        `json:"type"`
	Product       string      `json:"product"`
	Quantity      int         `json:"quantity"`
	UnitPrice     types.Money `json:"unit_price"`
	Total         types.Money `json:"total"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	ClientID      id.ClientID `json:"client_id,omitempty"`
	Date          time.Time   `json:"date"`
}

// NewEntry creates an entry with a fresh ID, dated now.
func NewEntry(t Type, product string, qty int, unitPrice, total types.Money) *Entry {
	return &Entry{
		Entity:    types.NewEntity(),
		ID:        id.NewEntryID(),
		Type:      t,
		Product:   product,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Total:     total,
		Date:      time.Now().UTC(),
	}
}

// Report is a dashboard fold over a date range of ledger entries.
type Report struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Revenue     types.Money `json:"revenue"`
	Expenses    types.Money `json:"expenses"`
	Withdrawals types.Money `json:"withdrawals"`
	Profit      types.Money `json:"profit"`
	ItemsSold   int         `json:"items_sold"`

	RevenueByMethod map[string]types.Money `json:"revenue_by_method"`
	ExpenseByMethod map[string]types.Money `json:"expense_by_method"`
	ProfitByMethod  map[string]types.Money `json:"profit_by_method"`
}

// BuildReport folds entries into a Report. All totals start at zero in
// the given currency; every entry must share it.
func BuildReport(entries []*Entry, start, end time.Time, currency string) *Report {
	r := &Report{
		Start:           start,
		End:             end,
		Revenue:         types.Zero(currency),
		Expenses:        types.Zero(currency),
		Withdrawals:     types.Zero(currency),
		Profit:          types.Zero(currency),
		RevenueByMethod: make(map[string]types.Money),
		ExpenseByMethod: make(map[string]types.Money),
		ProfitByMethod:  make(map[string]types.Money),
	}

	for _, e := range entries {
		method := e.PaymentMethod
		if method == "" {
			method = "unspecified"
		}

		switch e.Type {
		case TypeIncome:
			r.Revenue = r.Revenue.Add(e.Total)
			r.ItemsSold += e.Quantity
			r.RevenueByMethod[method] = addTo(r.RevenueByMethod[method], e.Total, currency)
		case TypeExpense:
			r.Expenses = r.Expenses.Add(e.Total)
			r.ExpenseByMethod[method] = addTo(r.ExpenseByMethod[method], e.Total, currency)
		case TypeWithdraw:
			r.Withdrawals = r.Withdrawals.Add(e.Total)
		}
	}

	r.Profit = r.Revenue.Subtract(r.Expenses)
	for method, rev := range r.RevenueByMethod {
		exp := r.ExpenseByMethod[method]
		if exp.Currency == "" {
			exp = types.Zero(currency)
		}
		r.ProfitByMethod[method] = rev.Subtract(exp)
	}
	for method, exp := range r.ExpenseByMethod {
		if _, seen := r.RevenueByMethod[method]; seen {
			continue
		}
		r.ProfitByMethod[method] = exp.Negate()
	}

	return r
}

func addTo(acc, v types.Money, currency string) types.Money {
	if acc.Currency == "" {
		acc = types.Zero(currency)
	}
	return acc.Add(v)
}

// Margin returns profit as a percentage of expenses. ok is false when
// there are no expenses: the ratio has no meaning then, and callers
// must render it as absent rather than a sentinel.
func (r *Report) Margin() (float64, bool) {
	if r.Expenses.IsZero() {
		return 0, false
	}
	return float64(r.Profit.Amount) / float64(r.Expenses.Amount) * 100, true
}
