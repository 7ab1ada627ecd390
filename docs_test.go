package storefront_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/inventory"
	"github.com/xraph/storefront/store/memory"
	"github.com/xraph/storefront/types"
	"github.com/xraph/storefront/verifier"
)

// staticVerifier answers every lookup with the same deposit.
type staticVerifier struct {
	deposit *verifier.Deposit
}

func (v *staticVerifier) DepositByTxID(_ context.Context, _, _ string) (*verifier.Deposit, error) {
	return v.deposit, nil
}

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Initialize the engine
		eng := storefront.New(store,
			storefront.WithLogger(slog.Default()),
			storefront.WithSessionTTL(15*time.Minute),
			storefront.WithVerifier(&staticVerifier{deposit: &verifier.Deposit{
				TxID:       "0xabc",
				Asset:      "usdt",
				Amount:     types.USDT(3000),
				ReceivedAt: time.Now().Add(time.Minute),
			}}),
		)

		// Start the engine
		ctx := context.Background()
		if err := eng.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer eng.Stop()

		// Configure the pricing table
		eng.SetTier(ctx, 1, types.USDT(1000)) // 1-4 items: 10.00 each
		eng.SetTier(ctx, 5, types.USDT(800))  // 5+ items: 8.00 each

		// Stock the pool
		for _, itemID := range []string{"cred-1", "cred-2", "cred-3"} {
			if err := eng.ImportItem(ctx, itemID, inventory.StatusAvailable); err != nil {
				t.Fatal(err)
			}
		}

		// Open a checkout session; the quote is fixed at creation
		clientID := id.MustParseClientID("123456789")
		sess, err := eng.CreateSession(ctx, clientID, 3)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("Quoted total: %s\n", sess.QuotedTotal.String())

		// Supply payment details and settle
		if _, err := eng.SetCoin(ctx, sess.ID, "usdt"); err != nil {
			t.Fatal(err)
		}
		if _, err := eng.SetTxID(ctx, sess.ID, "0xabc"); err != nil {
			t.Fatal(err)
		}

		items, err := eng.VerifyAndComplete(ctx, sess.ID, "")
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("Allocated %d items\n", len(items))
	})

	// Test Money type examples
	t.Run("MoneyExamples", func(t *testing.T) {
		// Constructors
		_ = types.USD(4900)   // $49.00
		_ = types.USDT(2500)  // 25.00 USDT
		_ = types.Zero("usd") // $0.00

		// Arithmetic
		m1 := types.USD(100)
		m2 := types.USD(200)
		_ = m1.Add(m2)     // $3.00
		_ = m1.Multiply(3) // $3.00
		_ = m1.Divide(2)   // $0.50

		// Comparison
		if m1.LessThan(m2) {
			// m1 is less than m2
		}

		// Formatting
		_ = m1.String()      // "$1.00"
		_ = m1.FormatMajor() // "1.00"
	})
}
