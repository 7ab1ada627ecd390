package finance

import (
	"context"
	"time"
)

// Store is the finance ledger slice of the storage interface.
// The ledger is append-only; there are no update or delete methods.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	ListRange(ctx context.Context, start, end time.Time) ([]*Entry, error)
}
