package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/client"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/inventory"
	"github.com/xraph/storefront/pricing"
	"github.com/xraph/storefront/session"
	"github.com/xraph/storefront/types"
)

func seedItems(t *testing.T, s *Store, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		item := inventory.New(fmt.Sprintf("acct-%03d", i), inventory.StatusAvailable)
		if err := s.UpsertItem(ctx, item); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
}

func TestAllocateItems(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedItems(t, s, 5)

	claimed, err := s.AllocateItems(ctx, 3)
	if err != nil {
		t.Fatalf("AllocateItems: %v", err)
	}
	if len(claimed) != 3 {
		t.Fatalf("claimed %d items, want 3", len(claimed))
	}
	for _, item := range claimed {
		if item.Status != inventory.StatusSold {
			t.Errorf("item %s: status %q, want sold", item.ID, item.Status)
		}
	}

	n, err := s.CountAvailable(ctx)
	if err != nil {
		t.Fatalf("CountAvailable: %v", err)
	}
	if n != 2 {
		t.Errorf("available: got %d, want 2", n)
	}
}

func TestAllocateItemsAllOrNothing(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedItems(t, s, 5)

	// Drain the pool.
	if _, err := s.AllocateItems(ctx, 5); err != nil {
		t.Fatalf("AllocateItems(5): %v", err)
	}

	// One more item cannot be allocated, and nothing changes.
	_, err := s.AllocateItems(ctx, 1)
	if !errors.Is(err, storefront.ErrInsufficientInventory) {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}

	// A partial pool also claims nothing on shortfall.
	s2 := New()
	seedItems(t, s2, 2)
	if _, err := s2.AllocateItems(ctx, 3); !errors.Is(err, storefront.ErrInsufficientInventory) {
		t.Fatalf("expected ErrInsufficientInventory, got %v", err)
	}
	n, _ := s2.CountAvailable(ctx)
	if n != 2 {
		t.Errorf("shortfall must not claim items: available %d, want 2", n)
	}
}

func TestAllocateItemsConcurrentDisjoint(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedItems(t, s, 100)

	const workers = 20
	const each = 5

	var wg sync.WaitGroup
	results := make([][]*inventory.Item, workers)
	errs := make([]error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			results[w], errs[w] = s.AllocateItems(ctx, each)
		}(w)
	}
	wg.Wait()

	seen := make(map[string]int)
	for w := 0; w < workers; w++ {
		if errs[w] != nil {
			t.Fatalf("worker %d: %v", w, errs[w])
		}
		for _, item := range results[w] {
			seen[item.ID]++
		}
	}

	if len(seen) != workers*each {
		t.Errorf("claimed %d distinct items, want %d", len(seen), workers*each)
	}
	for itemID, count := range seen {
		if count != 1 {
			t.Errorf("item %s claimed %d times", itemID, count)
		}
	}

	n, _ := s.CountAvailable(ctx)
	if n != 0 {
		t.Errorf("available after drain: got %d, want 0", n)
	}
}

func TestCreateSessionRejectsDuplicatePending(t *testing.T) {
	s := New()
	ctx := context.Background()
	clientID := id.MustParseClientID("42")

	first := session.New(clientID, 3, types.USD(2400))
	if err := s.CreateSession(ctx, first); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	second := session.New(clientID, 1, types.USD(1000))
	if err := s.CreateSession(ctx, second); !errors.Is(err, storefront.ErrDuplicateSession) {
		t.Fatalf("expected ErrDuplicateSession, got %v", err)
	}

	// A different client is unaffected.
	other := session.New(id.MustParseClientID("43"), 1, types.USD(1000))
	if err := s.CreateSession(ctx, other); err != nil {
		t.Fatalf("CreateSession(other): %v", err)
	}

	// Once completed, the client may open a new session.
	if _, err := s.CompleteSession(ctx, first.ID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	third := session.New(clientID, 1, types.USD(1000))
	if err := s.CreateSession(ctx, third); err != nil {
		t.Fatalf("CreateSession after completion: %v", err)
	}
}

func TestCompleteSessionExactlyOnce(t *testing.T) {
	s := New()
	ctx := context.Background()

	sess := session.New(id.MustParseClientID("42"), 1, types.USD(1000))
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	const racers = 10
	var wg sync.WaitGroup
	wins := make([]bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i], _ = s.CompleteSession(ctx, sess.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("%d racers won the completion flip, want exactly 1", winners)
	}
}

func TestReopenSession(t *testing.T) {
	s := New()
	ctx := context.Background()

	sess := session.New(id.MustParseClientID("42"), 1, types.USD(1000))
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	// Reopening a pending session does not match.
	matched, err := s.ReopenSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ReopenSession: %v", err)
	}
	if matched {
		t.Error("reopen of pending session should not match")
	}

	if _, err := s.CompleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	matched, err = s.ReopenSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ReopenSession: %v", err)
	}
	if !matched {
		t.Error("reopen of completed session should match")
	}

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != session.StatusPending {
		t.Errorf("status after reopen: got %q, want pending", got.Status)
	}
}

func TestCancelSession(t *testing.T) {
	s := New()
	ctx := context.Background()
	clientID := id.MustParseClientID("42")

	sess := session.New(clientID, 1, types.USD(1000))
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.CancelSession(ctx, sess.ID); err != nil {
		t.Fatalf("CancelSession: %v", err)
	}

	if _, err := s.GetPendingSessionByClient(ctx, clientID); !errors.Is(err, storefront.ErrSessionNotFound) {
		t.Errorf("expected no pending session after cancel, got %v", err)
	}
}

func TestListPendingSessionsBefore(t *testing.T) {
	s := New()
	ctx := context.Background()

	old := session.New(id.MustParseClientID("1"), 1, types.USD(1000))
	old.CreatedAt = time.Now().Add(-time.Hour)
	if err := s.CreateSession(ctx, old); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	fresh := session.New(id.MustParseClientID("2"), 1, types.USD(1000))
	if err := s.CreateSession(ctx, fresh); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	expired, err := s.ListPendingSessionsBefore(ctx, time.Now().Add(-15*time.Minute))
	if err != nil {
		t.Fatalf("ListPendingSessionsBefore: %v", err)
	}
	if len(expired) != 1 || expired[0].ID.String() != old.ID.String() {
		t.Errorf("expected only the old session, got %d", len(expired))
	}
}

func TestScrapItem(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedItems(t, s, 1)

	if err := s.ScrapItem(ctx, "acct-000"); err != nil {
		t.Fatalf("ScrapItem: %v", err)
	}
	if _, err := s.GetItem(ctx, "acct-000"); !errors.Is(err, storefront.ErrItemNotFound) {
		t.Errorf("scrapped item should be gone from inventory, got %v", err)
	}

	scrapped, err := s.ListScrappedItems(ctx)
	if err != nil {
		t.Fatalf("ListScrappedItems: %v", err)
	}
	if len(scrapped) != 1 || scrapped[0].ID != "acct-000" {
		t.Errorf("expected acct-000 in scrap, got %v", scrapped)
	}
}

func TestTiers(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, tier := range []pricing.Tier{
		{Step: 20, UnitPrice: types.USD(600)},
		{Step: 1, UnitPrice: types.USD(1000)},
		{Step: 5, UnitPrice: types.USD(800)},
	} {
		tier := tier
		if err := s.UpsertTier(ctx, &tier); err != nil {
			t.Fatalf("UpsertTier: %v", err)
		}
	}

	table, err := s.ListTiers(ctx)
	if err != nil {
		t.Fatalf("ListTiers: %v", err)
	}
	if len(table) != 3 || table[0].Step != 1 || table[2].Step != 20 {
		t.Fatalf("unexpected table: %v", table)
	}

	// Upsert replaces the tier at the same step.
	if err := s.UpsertTier(ctx, &pricing.Tier{Step: 5, UnitPrice: types.USD(750)}); err != nil {
		t.Fatalf("UpsertTier: %v", err)
	}
	table, _ = s.ListTiers(ctx)
	if len(table) != 3 || !table[1].UnitPrice.Equal(types.USD(750)) {
		t.Fatalf("upsert did not replace tier: %v", table)
	}

	if err := s.RemoveTier(ctx, 1); err != nil {
		t.Fatalf("RemoveTier: %v", err)
	}
	if err := s.RemoveTier(ctx, 1); !errors.Is(err, storefront.ErrTierNotFound) {
		t.Errorf("expected ErrTierNotFound, got %v", err)
	}
}

func TestClientLazyCreation(t *testing.T) {
	s := New()
	ctx := context.Background()
	clientID := id.MustParseClientID("42")

	if _, err := s.GetClient(ctx, clientID); !errors.Is(err, storefront.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}

	p := client.Purchase{Quantity: 3, UnitPrice: types.USD(800), Total: types.USD(2400), Date: time.Now()}
	if err := s.AppendPurchase(ctx, clientID, p); err != nil {
		t.Fatalf("AppendPurchase: %v", err)
	}

	rec, err := s.GetClient(ctx, clientID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if rec.TotalItems() != 3 {
		t.Errorf("TotalItems: got %d, want 3", rec.TotalItems())
	}
	if rec.RegisteredAt.IsZero() {
		t.Error("expected RegisteredAt to be set")
	}

	if err := s.IncrementLegitChecks(ctx, clientID, 1); err != nil {
		t.Fatalf("IncrementLegitChecks: %v", err)
	}
	if err := s.IncrementLevel(ctx, clientID, 2); err != nil {
		t.Fatalf("IncrementLevel: %v", err)
	}
	rec, _ = s.GetClient(ctx, clientID)
	if rec.LegitChecks != 1 || rec.Level != 2 {
		t.Errorf("counters: got legit=%d level=%d", rec.LegitChecks, rec.Level)
	}
}
