// Package storefront provides a checkout and inventory allocation engine for Go applications.
//
// Storefront is designed as a library, not a service. Import it directly into your
// Go application and wire it to whatever frontend you run. It provides:
//
//   - A finite pool of single-use inventory items with atomic allocation
//   - Volume-tiered pricing with quotes fixed at session creation
//   - Checkout sessions with a bounded payment window
//   - Deposit verification against an exchange ledger (Binance built-in)
//   - Per-client purchase and replacement history
//   - An append-only finance ledger with dashboard reports
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/storefront"
//	    "github.com/xraph/storefront/store/memory"
//	    "github.com/xraph/storefront/verifier/binance"
//	)
//
//	eng := storefront.New(memory.New(),
//	    storefront.WithVerifier(binance.New(apiKey, apiSecret)),
//	)
//
//	// Start the engine (migrates the store, begins background workers)
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// # Core Concepts
//
// Price tiers map order size to unit price. A tier applies from its step
// up to the next tier's step:
//
//	eng.SetTier(ctx, 1, storefront.USD(1000))  // 1-4 items: $10.00 each
//	eng.SetTier(ctx, 5, storefront.USD(800))   // 5-19 items: $8.00 each
//	eng.SetTier(ctx, 20, storefront.USD(600))  // 20+ items: $6.00 each
//
// Checkout sessions fix the quote at creation. At most one pending
// session exists per client:
//
//	sess, err := eng.CreateSession(ctx, clientID, 3)
//	// sess.QuotedTotal is $30.00 and will not change
//
// Once the client supplies payment details, verification settles the
// session atomically: the deposit is checked against the exchange
// ledger, the session flips to completed exactly once, and items are
// allocated so that no item is ever sold twice:
//
//	eng.SetCoin(ctx, sess.ID, "usdt")
//	items, err := eng.VerifyAndComplete(ctx, sess.ID, txid)
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type represents amounts in the smallest currency
// unit (cents for USD, pence for GBP, hundredths for USDT).
//
// # Integration
//
// Storefront integrates with the Forgery ecosystem:
//
//   - Forge: extension adapter with YAML config and DI registration
//   - Grove: MongoDB, PostgreSQL, and SQLite store backends
//   - Chronicle: audit trail bridge via the audit_hook package
//
// # TypeID
//
// Generated entities use TypeID for globally unique, type-safe identifiers:
//
//	chk_01h2xcejqtf2nbrexx3vqjhp41  // Checkout session ID
//	fin_01h455vb4pex5vsknk084sn02q  // Finance entry ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities. Client identifiers are
// not generated; they are validated external snowflakes (see id.ClientID).
package storefront
