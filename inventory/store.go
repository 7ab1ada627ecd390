package inventory

import (
	"context"
)

// Store is the inventory slice of the storage interface.
//
// Allocate is the hot path: it must claim exactly n available items in
// one atomic step. Concurrent callers receive pairwise-disjoint sets,
// and a caller that cannot be given n items receives none.
type Store interface {
	Upsert(ctx context.Context, item *Item) error
	Get(ctx context.Context, itemID string) (*Item, error)
	List(ctx context.Context, opts ListOpts) ([]*Item, error)
	SetStatus(ctx context.Context, itemID string, status Status) error
	Allocate(ctx context.Context, n int) ([]*Item, error)
	CountAvailable(ctx context.Context) (int, error)
	Scrap(ctx context.Context, itemID string) error
	ListScrapped(ctx context.Context) ([]*Item, error)
}
