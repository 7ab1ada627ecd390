// Package plugin provides an extensible plugin system for Storefront.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Session lifecycle hooks
// ──────────────────────────────────────────────────

// OnSessionCreated is called when a new checkout session is opened.
type OnSessionCreated interface {
	Plugin
	OnSessionCreated(ctx context.Context, sess interface{}) error
}

// OnSessionCompleted is called when a checkout session completes.
type OnSessionCompleted interface {
	Plugin
	OnSessionCompleted(ctx context.Context, sess interface{}) error
}

// OnSessionCanceled is called when a checkout session is canceled.
type OnSessionCanceled interface {
	Plugin
	OnSessionCanceled(ctx context.Context, sess interface{}) error
}

// OnSessionExpired is called when the sweeper cancels a stale session.
type OnSessionExpired interface {
	Plugin
	OnSessionExpired(ctx context.Context, sess interface{}) error
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentVerified is called when a deposit is matched against a session.
type OnPaymentVerified interface {
	Plugin
	OnPaymentVerified(ctx context.Context, sess, deposit interface{}) error
}

// OnPaymentRejected is called when payment verification fails.
type OnPaymentRejected interface {
	Plugin
	OnPaymentRejected(ctx context.Context, sess interface{}, err error) error
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnAllocationFailed is called when the pool cannot cover a paid session.
type OnAllocationFailed interface {
	Plugin
	OnAllocationFailed(ctx context.Context, sess interface{}, want int) error
}

// OnFulfillment is called when items are handed to a client.
type OnFulfillment interface {
	Plugin
	OnFulfillment(ctx context.Context, clientID string, items []interface{}) error
}

// OnReplacement is called when replacement items are issued.
type OnReplacement interface {
	Plugin
	OnReplacement(ctx context.Context, clientID string, items []interface{}) error
}

// OnItemsImported is called after a batch of items lands in the pool.
type OnItemsImported interface {
	Plugin
	OnItemsImported(ctx context.Context, count int) error
}

// ──────────────────────────────────────────────────
// Pricing and finance hooks
// ──────────────────────────────────────────────────

// OnTierChanged is called when a price tier is set or removed.
type OnTierChanged interface {
	Plugin
	OnTierChanged(ctx context.Context, step int) error
}

// OnEntryAppended is called when a finance ledger entry is recorded.
type OnEntryAppended interface {
	Plugin
	OnEntryAppended(ctx context.Context, entry interface{}) error
}

// ──────────────────────────────────────────────────
// Verifier providers
// ──────────────────────────────────────────────────

// VerifierPlugin provides a deposit verifier implementation.
type VerifierPlugin interface {
	Plugin
	Verifier() interface{} // Returns verifier.Verifier
}
