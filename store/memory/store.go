package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/client"
	"github.com/xraph/storefront/finance"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/inventory"
	"github.com/xraph/storefront/pricing"
	"github.com/xraph/storefront/session"
)

// Store is the in-memory driver. A single mutex guards every
// collection, so each method body is one atomic step; the allocation
// and session-claim contracts fall out of that for free.
type Store struct {
	mu sync.RWMutex

	// Inventory storage
	items    map[string]*inventory.Item
	scrapped map[string]*inventory.Item

	// Pricing storage
	tiers map[int]*pricing.Tier

	// Session storage
	sessions map[string]*session.Session

	// Client storage
	clients map[string]*client.Record

	// Finance storage
	entries []*finance.Entry
}

func New() *Store {
	return &Store{
		items:    make(map[string]*inventory.Item),
		scrapped: make(map[string]*inventory.Item),
		tiers:    make(map[int]*pricing.Tier),
		sessions: make(map[string]*session.Session),
		clients:  make(map[string]*client.Record),
		entries:  make([]*finance.Entry, 0),
	}
}

// Inventory Store implementation

func (s *Store) UpsertItem(_ context.Context, item *inventory.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *Store) GetItem(_ context.Context, itemID string) (*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, ok := s.items[itemID]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, storefront.ErrItemNotFound
}

func (s *Store) ListItems(_ context.Context, opts inventory.ListOpts) ([]*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*inventory.Item, 0)
	for _, item := range s.items {
		if opts.Status == "" || item.Status == opts.Status {
			cp := *item
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) SetItemStatus(_ context.Context, itemID string, status inventory.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return storefront.ErrItemNotFound
	}
	item.Status = status
	item.Touch()
	return nil
}

func (s *Store) AllocateItems(_ context.Context, n int) ([]*inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	available := make([]*inventory.Item, 0, n)
	for _, item := range s.items {
		if item.Status == inventory.StatusAvailable {
			available = append(available, item)
			if len(available) == n {
				break
			}
		}
	}

	if len(available) < n {
		return nil, storefront.ErrInsufficientInventory
	}

	claimed := make([]*inventory.Item, 0, n)
	for _, item := range available {
		item.Status = inventory.StatusSold
		item.Touch()
		cp := *item
		claimed = append(claimed, &cp)
	}
	return claimed, nil
}

func (s *Store) CountAvailable(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, item := range s.items {
		if item.Status == inventory.StatusAvailable {
			n++
		}
	}
	return n, nil
}

func (s *Store) ScrapItem(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return storefront.ErrItemNotFound
	}
	delete(s.items, itemID)
	item.Touch()
	s.scrapped[itemID] = item
	return nil
}

func (s *Store) ListScrappedItems(_ context.Context) ([]*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*inventory.Item, 0, len(s.scrapped))
	for _, item := range s.scrapped {
		cp := *item
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Pricing Store implementation

func (s *Store) UpsertTier(_ context.Context, t *pricing.Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	s.tiers[t.Step] = &cp
	return nil
}

func (s *Store) RemoveTier(_ context.Context, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tiers[step]; !ok {
		return storefront.ErrTierNotFound
	}
	delete(s.tiers, step)
	return nil
}

func (s *Store) ListTiers(_ context.Context) (pricing.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table := make(pricing.Table, 0, len(s.tiers))
	for _, t := range s.tiers {
		table = append(table, *t)
	}
	return table.Sorted(), nil
}

// Session Store implementation

func (s *Store) CreateSession(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.sessions {
		if existing.ClientID.Equal(sess.ClientID) && existing.Status == session.StatusPending {
			return storefront.ErrDuplicateSession
		}
	}

	cp := *sess
	s.sessions[sess.ID.String()] = &cp
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID id.SessionID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[sessionID.String()]; ok {
		cp := *sess
		return &cp, nil
	}
	return nil, storefront.ErrSessionNotFound
}

func (s *Store) GetPendingSessionByClient(_ context.Context, clientID id.ClientID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.ClientID.Equal(clientID) && sess.Status == session.StatusPending {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, storefront.ErrSessionNotFound
}

func (s *Store) UpdateSession(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID.String()]; !ok {
		return storefront.ErrSessionNotFound
	}
	cp := *sess
	s.sessions[sess.ID.String()] = &cp
	return nil
}

func (s *Store) CompleteSession(_ context.Context, sessionID id.SessionID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID.String()]
	if !ok {
		return false, storefront.ErrSessionNotFound
	}
	if sess.Status != session.StatusPending {
		return false, nil
	}
	sess.Status = session.StatusCompleted
	sess.Touch()
	return true, nil
}

func (s *Store) ReopenSession(_ context.Context, sessionID id.SessionID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID.String()]
	if !ok {
		return false, storefront.ErrSessionNotFound
	}
	if sess.Status != session.StatusCompleted {
		return false, nil
	}
	sess.Status = session.StatusPending
	sess.Touch()
	return true, nil
}

func (s *Store) CancelSession(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID.String()]
	if !ok {
		return storefront.ErrSessionNotFound
	}
	sess.Status = session.StatusCancelled
	sess.Touch()
	return nil
}

func (s *Store) ListPendingSessionsBefore(_ context.Context, cutoff time.Time) ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*session.Session, 0)
	for _, sess := range s.sessions {
		if sess.Status == session.StatusPending && sess.CreatedAt.Before(cutoff) {
			cp := *sess
			result = append(result, &cp)
		}
	}
	return result, nil
}

// Client Store implementation

func (s *Store) GetClient(_ context.Context, clientID id.ClientID) (*client.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.clients[clientID.String()]; ok {
		return copyRecord(rec), nil
	}
	return nil, storefront.ErrClientNotFound
}

func (s *Store) ListClients(_ context.Context) ([]*client.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*client.Record, 0, len(s.clients))
	for _, rec := range s.clients {
		result = append(result, copyRecord(rec))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClientID.String() < result[j].ClientID.String() })
	return result, nil
}

func (s *Store) AppendPurchase(_ context.Context, clientID id.ClientID, p client.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensureClient(clientID)
	rec.Purchases = append(rec.Purchases, p)
	return nil
}

func (s *Store) AppendReplacement(_ context.Context, clientID id.ClientID, r client.Replacement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensureClient(clientID)
	rec.Replacements = append(rec.Replacements, r)
	return nil
}

func (s *Store) AppendServicePurchase(_ context.Context, clientID id.ClientID, sp client.ServicePurchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensureClient(clientID)
	rec.ServicePurchases = append(rec.ServicePurchases, sp)
	return nil
}

func (s *Store) IncrementLegitChecks(_ context.Context, clientID id.ClientID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensureClient(clientID)
	rec.LegitChecks += delta
	return nil
}

func (s *Store) IncrementLevel(_ context.Context, clientID id.ClientID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensureClient(clientID)
	rec.Level += delta
	return nil
}

// ensureClient returns the stored record, creating it lazily.
// Callers must hold the write lock.
func (s *Store) ensureClient(clientID id.ClientID) *client.Record {
	if rec, ok := s.clients[clientID.String()]; ok {
		return rec
	}
	rec := client.NewRecord(clientID)
	s.clients[clientID.String()] = rec
	return rec
}

func copyRecord(rec *client.Record) *client.Record {
	cp := *rec
	cp.Purchases = append([]client.Purchase(nil), rec.Purchases...)
	cp.Replacements = append([]client.Replacement(nil), rec.Replacements...)
	cp.ServicePurchases = append([]client.ServicePurchase(nil), rec.ServicePurchases...)
	return &cp
}

// Finance Store implementation

func (s *Store) AppendEntry(_ context.Context, e *finance.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *Store) ListEntriesRange(_ context.Context, start, end time.Time) ([]*finance.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*finance.Entry, 0)
	for _, e := range s.entries {
		if (start.IsZero() || !e.Date.Before(start)) && (end.IsZero() || !e.Date.After(end)) {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

// Store management

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}
