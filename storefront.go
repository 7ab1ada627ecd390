package storefront

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/storefront/client"
	"github.com/xraph/storefront/finance"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/inventory"
	"github.com/xraph/storefront/plugin"
	"github.com/xraph/storefront/pricing"
	"github.com/xraph/storefront/session"
	"github.com/xraph/storefront/store"
	"github.com/xraph/storefront/types"
	"github.com/xraph/storefront/verifier"
)

// Engine is the main checkout engine.
type Engine struct {
	store    store.Store
	plugins  *plugin.Registry
	verifier verifier.Verifier
	logger   *slog.Logger

	// Background workers
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	sessionTTL    time.Duration
	sweepInterval time.Duration
	currency      string
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:         s,
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		stopChan:      make(chan struct{}),
		sessionTTL:    session.DefaultTTL,
		sweepInterval: time.Minute,
		currency:      "usd",
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithVerifier sets the deposit verifier used by VerifyAndComplete.
func WithVerifier(v verifier.Verifier) Option {
	return func(e *Engine) {
		e.verifier = v
	}
}

// WithSessionTTL sets how long a pending session stays payable.
func WithSessionTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.sessionTTL = ttl
	}
}

// WithSweepInterval sets how frequently the expired-session sweeper runs.
func WithSweepInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.sweepInterval = d
	}
}

// WithCurrency sets the ISO currency code quotes are issued in.
func WithCurrency(code string) Option {
	return func(e *Engine) {
		e.currency = code
	}
}

// Start migrates the store and begins background workers.
func (e *Engine) Start(ctx context.Context) error {
	// Migrate database
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	// A verifier plugin can supply the deposit verifier when none was
	// configured directly.
	if e.verifier == nil {
		for _, vp := range e.plugins.GetVerifierProviders() {
			if v, ok := vp.Verifier().(verifier.Verifier); ok {
				e.verifier = v
				break
			}
		}
	}

	// Initialize plugins
	e.plugins.EmitInit(ctx, e)

	// Start expired-session sweeper
	e.wg.Add(1)
	go e.sweepWorker(ctx)

	e.logger.Info("storefront started",
		"session_ttl", e.sessionTTL,
		"sweep_interval", e.sweepInterval,
		"currency", e.currency,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Checkout Sessions
// ──────────────────────────────────────────────────

// CreateSession opens a checkout session for a client. The quoted total
// is resolved from the tier table at creation and never recomputed, so
// later pricing changes cannot affect an open checkout. A client with a
// pending session gets ErrDuplicateSession.
func (e *Engine) CreateSession(ctx context.Context, clientID id.ClientID, quantity int) (*session.Session, error) {
	if clientID.IsNil() {
		return nil, fmt.Errorf("%w: client id required", ErrInvalidInput)
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	total, err := e.QuoteFor(ctx, quantity)
	if err != nil {
		return nil, err
	}

	// A pending session whose payment window has closed must not block
	// a fresh checkout.
	if existing, err := e.store.GetPendingSessionByClient(ctx, clientID); err == nil {
		if expErr := e.expireIfStale(ctx, existing); expErr != nil && !errors.Is(expErr, ErrSessionExpired) {
			return nil, expErr
		}
	} else if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	sess := session.New(clientID, quantity, total)
	if err := e.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	e.plugins.EmitSessionCreated(ctx, sess)
	return sess, nil
}

// Session retrieves a checkout session by ID.
func (e *Engine) Session(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	return e.store.GetSession(ctx, sessionID)
}

// PendingSession retrieves a client's open checkout session, if any.
func (e *Engine) PendingSession(ctx context.Context, clientID id.ClientID) (*session.Session, error) {
	return e.store.GetPendingSessionByClient(ctx, clientID)
}

// SetPaymentMethod records the payment method on a pending session.
func (e *Engine) SetPaymentMethod(ctx context.Context, sessionID id.SessionID, method string) (*session.Session, error) {
	return e.updatePending(ctx, sessionID, func(s *session.Session) {
		s.PaymentMethod = method
	})
}

// SetCoin records the deposit asset on a pending session.
func (e *Engine) SetCoin(ctx context.Context, sessionID id.SessionID, coin string) (*session.Session, error) {
	return e.updatePending(ctx, sessionID, func(s *session.Session) {
		s.Coin = coin
	})
}

// SetNetwork records the transfer network on a pending session.
func (e *Engine) SetNetwork(ctx context.Context, sessionID id.SessionID, network string) (*session.Session, error) {
	return e.updatePending(ctx, sessionID, func(s *session.Session) {
		s.Network = network
	})
}

// SetTxID records the deposit transaction id on a pending session.
func (e *Engine) SetTxID(ctx context.Context, sessionID id.SessionID, txid string) (*session.Session, error) {
	return e.updatePending(ctx, sessionID, func(s *session.Session) {
		s.TxID = txid
	})
}

// updatePending applies a mutation to a session that must still be
// pending and inside its payment window.
func (e *Engine) updatePending(ctx context.Context, sessionID id.SessionID, mutate func(*session.Session)) (*session.Session, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsPending() {
		return nil, ErrInvalidState
	}
	if err := e.expireIfStale(ctx, sess); err != nil {
		return nil, err
	}

	mutate(sess)
	sess.Touch()

	if err := e.store.UpdateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// expireIfStale cancels a pending session whose payment window has
// closed. Returns ErrSessionExpired when it did.
func (e *Engine) expireIfStale(ctx context.Context, sess *session.Session) error {
	if !sess.ExpiredAt(time.Now().UTC(), e.sessionTTL) {
		return nil
	}

	if err := e.store.CancelSession(ctx, sess.ID); err != nil {
		return err
	}
	sess.Status = session.StatusCancelled
	e.plugins.EmitSessionExpired(ctx, sess)
	return ErrSessionExpired
}

// VerifyAndComplete verifies the session's deposit against the exchange
// ledger and, on success, completes the session and allocates inventory.
//
// The completion claim happens before allocation: the conditional
// pending-to-completed flip is the single point of contention, so a
// retried or concurrent call gets ErrAlreadyCompleted instead of a
// second batch of items. If allocation then falls short, the claim is
// rolled back by reopening the session and the deposit stays usable.
//
// A non-empty txid is recorded on the session before verification; an
// empty txid uses the value previously set with SetTxID.
func (e *Engine) VerifyAndComplete(ctx context.Context, sessionID id.SessionID, txid string) ([]*inventory.Item, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch sess.Status {
	case session.StatusCompleted:
		return nil, ErrAlreadyCompleted
	case session.StatusCancelled:
		return nil, ErrInvalidState
	}

	if err := e.expireIfStale(ctx, sess); err != nil {
		return nil, err
	}

	if txid != "" && txid != sess.TxID {
		sess.TxID = txid
		sess.Touch()
		if err := e.store.UpdateSession(ctx, sess); err != nil {
			return nil, err
		}
	}

	deposit, err := e.verifyDeposit(ctx, sess)
	if err != nil {
		if IsPaymentError(err) {
			e.plugins.EmitPaymentRejected(ctx, sess, err)
		}
		return nil, err
	}

	e.plugins.EmitPaymentVerified(ctx, sess, deposit)

	// Claim the session. Exactly one concurrent caller wins the flip.
	matched, err := e.store.CompleteSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrAlreadyCompleted
	}

	items, err := e.store.AllocateItems(ctx, sess.Quantity)
	if err != nil {
		if errors.Is(err, ErrInsufficientInventory) {
			// Roll back the claim so the paid session stays redeemable.
			if _, reopenErr := e.store.ReopenSession(ctx, sessionID); reopenErr != nil {
				e.logger.Error("failed to reopen session after allocation shortfall",
					"session_id", sessionID.String(),
					"error", reopenErr,
				)
			}
			e.plugins.EmitAllocationFailed(ctx, sess, sess.Quantity)
		}
		return nil, err
	}

	sess.Status = session.StatusCompleted
	e.recordSale(ctx, sess, items)
	e.plugins.EmitFulfillment(ctx, sess.ClientID.String(), itemsToAny(items))
	e.plugins.EmitSessionCompleted(ctx, sess)

	e.logger.Info("checkout completed",
		"session_id", sessionID.String(),
		"client_id", sess.ClientID.String(),
		"quantity", sess.Quantity,
		"total", sess.QuotedTotal.String(),
	)

	return items, nil
}

// verifyDeposit checks the exchange ledger for the session's deposit and
// compares it against the quote.
func (e *Engine) verifyDeposit(ctx context.Context, sess *session.Session) (*verifier.Deposit, error) {
	if e.verifier == nil {
		return nil, ErrNoVerifier
	}
	if sess.Coin == "" || sess.TxID == "" {
		return nil, fmt.Errorf("%w: coin and txid required before verification", ErrInvalidInput)
	}

	deposit, err := e.verifier.DepositByTxID(ctx, sess.Coin, sess.TxID)
	if err != nil {
		switch {
		case errors.Is(err, verifier.ErrDepositNotFound):
			return nil, ErrPaymentNotFound
		case errors.Is(err, verifier.ErrUnavailable):
			return nil, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
		default:
			return nil, err
		}
	}

	if !deposit.Amount.Covers(sess.QuotedTotal) {
		return nil, ErrPaymentAmountMismatch
	}
	if deposit.ReceivedAt.Before(sess.CreatedAt) {
		return nil, ErrPaymentStale
	}

	return deposit, nil
}

// recordSale appends the income entry and purchase history for a
// completed session. Both are best-effort: the sale already happened.
func (e *Engine) recordSale(ctx context.Context, sess *session.Session, items []*inventory.Item) {
	unit := sess.QuotedTotal.Divide(int64(sess.Quantity))

	entry := finance.NewEntry(finance.TypeIncome, "item", sess.Quantity, unit, sess.QuotedTotal)
	entry.PaymentMethod = sess.PaymentMethod
	entry.ClientID = sess.ClientID
	if err := e.store.AppendEntry(ctx, entry); err != nil {
		e.logger.Error("failed to append income entry", "session_id", sess.ID.String(), "error", err)
	} else {
		e.plugins.EmitEntryAppended(ctx, entry)
	}

	purchase := client.Purchase{
		Quantity:      sess.Quantity,
		UnitPrice:     unit,
		Total:         sess.QuotedTotal,
		PaymentMethod: sess.PaymentMethod,
		ItemIDs:       itemIDs(items),
		Date:          time.Now().UTC(),
	}
	if err := e.store.AppendPurchase(ctx, sess.ClientID, purchase); err != nil {
		e.logger.Error("failed to append purchase", "client_id", sess.ClientID.String(), "error", err)
	}
}

// CancelSession cancels a pending checkout session.
func (e *Engine) CancelSession(ctx context.Context, sessionID id.SessionID) error {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !sess.IsPending() {
		return ErrInvalidState
	}

	if err := e.store.CancelSession(ctx, sessionID); err != nil {
		return err
	}

	sess.Status = session.StatusCancelled
	e.plugins.EmitSessionCanceled(ctx, sess)
	return nil
}

// ──────────────────────────────────────────────────
// Manual Operations
// ──────────────────────────────────────────────────

// ManualFulfill allocates items for a sale that was settled outside the
// checkout flow. It appends an income entry and the client's purchase.
func (e *Engine) ManualFulfill(ctx context.Context, clientID id.ClientID, quantity int, total types.Money, paymentMethod string) ([]*inventory.Item, error) {
	if clientID.IsNil() {
		return nil, fmt.Errorf("%w: client id required", ErrInvalidInput)
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	items, err := e.store.AllocateItems(ctx, quantity)
	if err != nil {
		return nil, err
	}

	unit := total.Divide(int64(quantity))
	entry := finance.NewEntry(finance.TypeIncome, "item", quantity, unit, total)
	entry.PaymentMethod = paymentMethod
	entry.ClientID = clientID
	if err := e.store.AppendEntry(ctx, entry); err != nil {
		e.logger.Error("failed to append income entry", "client_id", clientID.String(), "error", err)
	} else {
		e.plugins.EmitEntryAppended(ctx, entry)
	}

	purchase := client.Purchase{
		Quantity:      quantity,
		UnitPrice:     unit,
		Total:         total,
		PaymentMethod: paymentMethod,
		ItemIDs:       itemIDs(items),
		Date:          time.Now().UTC(),
	}
	if err := e.store.AppendPurchase(ctx, clientID, purchase); err != nil {
		e.logger.Error("failed to append purchase", "client_id", clientID.String(), "error", err)
	}

	e.plugins.EmitFulfillment(ctx, clientID.String(), itemsToAny(items))
	return items, nil
}

// ManualReplace allocates replacement items for a client free of
// charge and records the replacement in their history.
func (e *Engine) ManualReplace(ctx context.Context, clientID id.ClientID, quantity int) ([]*inventory.Item, error) {
	if clientID.IsNil() {
		return nil, fmt.Errorf("%w: client id required", ErrInvalidInput)
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	items, err := e.store.AllocateItems(ctx, quantity)
	if err != nil {
		return nil, err
	}

	replacement := client.Replacement{
		Quantity: quantity,
		ItemIDs:  itemIDs(items),
		Date:     time.Now().UTC(),
	}
	if err := e.store.AppendReplacement(ctx, clientID, replacement); err != nil {
		e.logger.Error("failed to append replacement", "client_id", clientID.String(), "error", err)
	}

	e.plugins.EmitReplacement(ctx, clientID.String(), itemsToAny(items))
	return items, nil
}

// RecordServicePurchase records a non-inventory sale against a client:
// income entry plus service purchase history.
func (e *Engine) RecordServicePurchase(ctx context.Context, clientID id.ClientID, service string, total types.Money, paymentMethod string) error {
	if clientID.IsNil() {
		return fmt.Errorf("%w: client id required", ErrInvalidInput)
	}
	if service == "" {
		return fmt.Errorf("%w: service name required", ErrInvalidInput)
	}

	entry := finance.NewEntry(finance.TypeIncome, service, 1, total, total)
	entry.PaymentMethod = paymentMethod
	entry.ClientID = clientID
	if err := e.store.AppendEntry(ctx, entry); err != nil {
		return err
	}
	e.plugins.EmitEntryAppended(ctx, entry)

	sp := client.ServicePurchase{
		Service: service,
		Total:   total,
		Date:    time.Now().UTC(),
	}
	return e.store.AppendServicePurchase(ctx, clientID, sp)
}

// ──────────────────────────────────────────────────
// Inventory
// ──────────────────────────────────────────────────

// ImportItem adds a single item to the pool.
func (e *Engine) ImportItem(ctx context.Context, itemID string, status inventory.Status) error {
	if itemID == "" {
		return fmt.Errorf("%w: item id required", ErrInvalidInput)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown item status %q", ErrInvalidInput, status)
	}

	if err := e.store.UpsertItem(ctx, inventory.New(itemID, status)); err != nil {
		return err
	}

	e.plugins.EmitItemsImported(ctx, 1)
	return nil
}

// ImportItems reads newline-delimited item identifiers from r and adds
// them to the pool with the given status. Blank lines are skipped.
// Returns the number of items imported.
func (e *Engine) ImportItems(ctx context.Context, r io.Reader, status inventory.Status) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: unknown item status %q", ErrInvalidInput, status)
	}

	count := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := e.store.UpsertItem(ctx, inventory.New(line, status)); err != nil {
			return count, err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}

	if count > 0 {
		e.plugins.EmitItemsImported(ctx, count)
	}

	e.logger.Info("items imported", "count", count, "status", status)
	return count, nil
}

// ExportItems writes matching item identifiers to w, one per line.
// Returns the number of items written.
func (e *Engine) ExportItems(ctx context.Context, w io.Writer, opts inventory.ListOpts) (int, error) {
	items, err := e.store.ListItems(ctx, opts)
	if err != nil {
		return 0, err
	}

	for i, item := range items {
		if _, err := io.WriteString(w, item.ID+"\n"); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// Stock returns the number of available items in the pool.
func (e *Engine) Stock(ctx context.Context) (int, error) {
	return e.store.CountAvailable(ctx)
}

// Item retrieves a single item by identifier.
func (e *Engine) Item(ctx context.Context, itemID string) (*inventory.Item, error) {
	return e.store.GetItem(ctx, itemID)
}

// Items lists items matching the given filter.
func (e *Engine) Items(ctx context.Context, opts inventory.ListOpts) ([]*inventory.Item, error) {
	return e.store.ListItems(ctx, opts)
}

// SetItemStatus moves an item to the given status.
func (e *Engine) SetItemStatus(ctx context.Context, itemID string, status inventory.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown item status %q", ErrInvalidInput, status)
	}
	return e.store.SetItemStatus(ctx, itemID, status)
}

// ReleaseItem returns a sold item to the available pool.
func (e *Engine) ReleaseItem(ctx context.Context, itemID string) error {
	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Status != inventory.StatusSold {
		return ErrItemNotSold
	}
	return e.store.SetItemStatus(ctx, itemID, inventory.StatusAvailable)
}

// ScrapItem removes an item from the pool into the scrap heap. Scrapped
// items no longer count toward stock but stay queryable for audits.
func (e *Engine) ScrapItem(ctx context.Context, itemID string) error {
	return e.store.ScrapItem(ctx, itemID)
}

// ScrappedItems lists items on the scrap heap.
func (e *Engine) ScrappedItems(ctx context.Context) ([]*inventory.Item, error) {
	return e.store.ListScrappedItems(ctx)
}

// ──────────────────────────────────────────────────
// Pricing
// ──────────────────────────────────────────────────

// PriceFor resolves the unit price for a quantity from the tier table.
func (e *Engine) PriceFor(ctx context.Context, quantity int) (types.Money, error) {
	table, err := e.store.ListTiers(ctx)
	if err != nil {
		return types.Money{}, err
	}

	unit, err := table.UnitPriceFor(quantity)
	if err != nil {
		return types.Money{}, fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}
	return unit, nil
}

// QuoteFor resolves the total price for a quantity from the tier table.
func (e *Engine) QuoteFor(ctx context.Context, quantity int) (types.Money, error) {
	table, err := e.store.ListTiers(ctx)
	if err != nil {
		return types.Money{}, err
	}

	total, err := table.TotalFor(quantity)
	if err != nil {
		return types.Money{}, fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}
	return total, nil
}

// SetTier creates or replaces the price tier at the given step.
func (e *Engine) SetTier(ctx context.Context, step int, unitPrice types.Money) error {
	if step <= 0 {
		return fmt.Errorf("%w: tier step must be positive", ErrInvalidInput)
	}
	if unitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative", ErrInvalidInput)
	}

	tier := &pricing.Tier{
		Entity:    types.NewEntity(),
		Step:      step,
		UnitPrice: unitPrice,
	}
	if err := e.store.UpsertTier(ctx, tier); err != nil {
		return err
	}

	e.plugins.EmitTierChanged(ctx, step)
	return nil
}

// RemoveTier deletes the price tier at the given step.
func (e *Engine) RemoveTier(ctx context.Context, step int) error {
	if err := e.store.RemoveTier(ctx, step); err != nil {
		return err
	}

	e.plugins.EmitTierChanged(ctx, step)
	return nil
}

// Tiers returns the full pricing table ordered by ascending step.
func (e *Engine) Tiers(ctx context.Context) (pricing.Table, error) {
	table, err := e.store.ListTiers(ctx)
	if err != nil {
		return nil, err
	}
	return table.Sorted(), nil
}

// ──────────────────────────────────────────────────
// Clients
// ──────────────────────────────────────────────────

// Client retrieves a client's purchase record.
func (e *Engine) Client(ctx context.Context, clientID id.ClientID) (*client.Record, error) {
	return e.store.GetClient(ctx, clientID)
}

// Clients lists all known client records.
func (e *Engine) Clients(ctx context.Context) ([]*client.Record, error) {
	return e.store.ListClients(ctx)
}

// AddLegitCheck bumps a client's legit-check counter.
func (e *Engine) AddLegitCheck(ctx context.Context, clientID id.ClientID, delta int) error {
	return e.store.IncrementLegitChecks(ctx, clientID, delta)
}

// AddLevel bumps a client's level.
func (e *Engine) AddLevel(ctx context.Context, clientID id.ClientID, delta int) error {
	return e.store.IncrementLevel(ctx, clientID, delta)
}

// TopClient returns the client with the highest lifetime revenue, or
// ErrClientNotFound when no clients exist.
func (e *Engine) TopClient(ctx context.Context) (*client.Record, error) {
	records, err := e.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrClientNotFound
	}

	top := records[0]
	for _, r := range records[1:] {
		if r.Revenue().Amount > top.Revenue().Amount {
			top = r
		}
	}
	return top, nil
}

// ──────────────────────────────────────────────────
// Finance
// ──────────────────────────────────────────────────

// AppendEntry records a manual statement in the finance ledger.
func (e *Engine) AppendEntry(ctx context.Context, entry *finance.Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry required", ErrInvalidInput)
	}
	if !entry.Type.Valid() {
		return fmt.Errorf("%w: unknown entry type %q", ErrInvalidInput, entry.Type)
	}

	if entry.ID.IsNil() {
		entry.ID = id.NewEntryID()
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	if entry.CreatedAt.IsZero() {
		entry.Entity = types.NewEntity()
	}

	if err := e.store.AppendEntry(ctx, entry); err != nil {
		return err
	}

	e.plugins.EmitEntryAppended(ctx, entry)
	return nil
}

// Dashboard folds ledger entries with date in [start, end] into a report.
func (e *Engine) Dashboard(ctx context.Context, start, end time.Time) (*finance.Report, error) {
	entries, err := e.store.ListEntriesRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return finance.BuildReport(entries, start, end, e.currency), nil
}

// ──────────────────────────────────────────────────
// Background workers
// ──────────────────────────────────────────────────

// sweepWorker cancels pending sessions whose payment window has closed.
func (e *Engine) sweepWorker(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.sweepExpired(ctx)
		}
	}
}

func (e *Engine) sweepExpired(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-e.sessionTTL)

	stale, err := e.store.ListPendingSessionsBefore(ctx, cutoff)
	if err != nil {
		e.logger.Error("failed to list expired sessions", "error", err)
		return
	}

	for _, sess := range stale {
		if err := e.store.CancelSession(ctx, sess.ID); err != nil {
			e.logger.Error("failed to cancel expired session",
				"session_id", sess.ID.String(),
				"error", err,
			)
			continue
		}

		sess.Status = session.StatusCancelled
		e.plugins.EmitSessionExpired(ctx, sess)

		e.logger.Debug("expired session swept",
			"session_id", sess.ID.String(),
			"client_id", sess.ClientID.String(),
		)
	}
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func itemsToAny(items []*inventory.Item) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func itemIDs(items []*inventory.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
