package client

import (
	"context"

	"github.com/xraph/storefront/id"
)

// Store is the client history slice of the storage interface.
// Append methods create the record on first write.
type Store interface {
	Get(ctx context.Context, clientID id.ClientID) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	AppendPurchase(ctx context.Context, clientID id.ClientID, p Purchase) error
	AppendReplacement(ctx context.Context, clientID id.ClientID, r Replacement) error
	AppendServicePurchase(ctx context.Context, clientID id.ClientID, sp ServicePurchase) error
	IncrementLegitChecks(ctx context.Context, clientID id.ClientID, delta int) error
	IncrementLevel(ctx context.Context, clientID id.ClientID, delta int) error
}
