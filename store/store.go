package store

import (
	"context"
	"time"

	"github.com/xraph/storefront/client"
	"github.com/xraph/storefront/finance"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/inventory"
	"github.com/xraph/storefront/pricing"
	"github.com/xraph/storefront/session"
)

// Store is the unified storage interface for all Storefront entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
//
// Three methods carry the engine's concurrency contract and every
// driver must honor it:
//
//   - AllocateItems claims n available items atomically: concurrent
//     callers get pairwise-disjoint sets, and a shortfall claims none.
//   - CreateSession atomically rejects a second pending session for
//     the same client.
//   - CompleteSession and ReopenSession are conditional status flips
//     reporting whether they matched, so one concurrent caller wins.
type Store interface {
	// Inventory methods
	UpsertItem(ctx context.Context, item *inventory.Item) error
	GetItem(ctx context.Context, itemID string) (*inventory.Item, error)
	ListItems(ctx context.Context, opts inventory.ListOpts) ([]*inventory.Item, error)
	SetItemStatus(ctx context.Context, itemID string, status inventory.Status) error
	AllocateItems(ctx context.Context, n int) ([]*inventory.Item, error)
	CountAvailable(ctx context.Context) (int, error)
	ScrapItem(ctx context.Context, itemID string) error
	ListScrappedItems(ctx context.Context) ([]*inventory.Item, error)

	// Pricing methods
	UpsertTier(ctx context.Context, t *pricing.Tier) error
	RemoveTier(ctx context.Context, step int) error
	ListTiers(ctx context.Context) (pricing.Table, error)

	// Session methods
	CreateSession(ctx context.Context, s *session.Session) error
	GetSession(ctx context.Context, sessionID id.SessionID) (*session.Session, error)
	GetPendingSessionByClient(ctx context.Context, clientID id.ClientID) (*session.Session, error)
	UpdateSession(ctx context.Context, s *session.Session) error
	CompleteSession(ctx context.Context, sessionID id.SessionID) (bool, error)
	ReopenSession(ctx context.Context, sessionID id.SessionID) (bool, error)
	CancelSession(ctx context.Context, sessionID id.SessionID) error
	ListPendingSessionsBefore(ctx context.Context, cutoff time.Time) ([]*session.Session, error)

	// Client methods
	GetClient(ctx context.Context, clientID id.ClientID) (*client.Record, error)
	ListClients(ctx context.Context) ([]*client.Record, error)
	AppendPurchase(ctx context.Context, clientID id.ClientID, p client.Purchase) error
	AppendReplacement(ctx context.Context, clientID id.ClientID, r client.Replacement) error
	AppendServicePurchase(ctx context.Context, clientID id.ClientID, sp client.ServicePurchase) error
	IncrementLegitChecks(ctx context.Context, clientID id.ClientID, delta int) error
	IncrementLevel(ctx context.Context, clientID id.ClientID, delta int) error

	// Finance methods
	AppendEntry(ctx context.Context, e *finance.Entry) error
	ListEntriesRange(ctx context.Context, start, end time.Time) ([]*finance.Entry, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
