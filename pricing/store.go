package pricing

import (
	"context"
)

// Store is the pricing slice of the storage interface.
type Store interface {
	UpsertTier(ctx context.Context, t *Tier) error
	RemoveTier(ctx context.Context, step int) error
	ListTiers(ctx context.Context) (Table, error)
}
