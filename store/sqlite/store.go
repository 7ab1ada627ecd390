package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/client"
	"github.com/xraph/storefront/finance"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/inventory"
	"github.com/xraph/storefront/pricing"
	"github.com/xraph/storefront/session"
	storefrontstore "github.com/xraph/storefront/store"
)

// compile-time interface check
var _ storefrontstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
//
// Item allocation claims each candidate with a conditional UPDATE
// checked by rows affected, and the one-pending-session rule is
// enforced by a partial unique index on client_id.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("storefront/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("storefront/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Inventory Store ====================

func (s *Store) UpsertItem(ctx context.Context, item *inventory.Item) error {
	m := toItemModel(item)
	_, err := s.sdb.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetItem(ctx context.Context, itemID string) (*inventory.Item, error) {
	m := new(itemModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", itemID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrItemNotFound
		}
		return nil, err
	}
	return fromItemModel(m), nil
}

func (s *Store) ListItems(ctx context.Context, opts inventory.ListOpts) ([]*inventory.Item, error) {
	var models []itemModel
	q := s.sdb.NewSelect(&models)

	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*inventory.Item, len(models))
	for i := range models {
		result[i] = fromItemModel(&models[i])
	}
	return result, nil
}

func (s *Store) SetItemStatus(ctx context.Context, itemID string, status inventory.Status) error {
	res, err := s.sdb.NewUpdate((*itemModel)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", now()).
		Where("id = ?", itemID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storefront.ErrItemNotFound
	}
	return nil
}

// AllocateItems claims candidates with conditional UPDATEs. A claim
// only lands if the row is still available, so concurrent callers
// never take the same item. On shortfall every landed claim is
// released before returning.
func (s *Store) AllocateItems(ctx context.Context, n int) ([]*inventory.Item, error) {
	claimed := make([]*inventory.Item, 0, n)
	claimedIDs := make([]string, 0, n)

	for len(claimed) < n {
		var candidates []itemModel
		err := s.sdb.NewSelect(&candidates).
			Where("status = ?", string(inventory.StatusAvailable)).
			OrderExpr("id ASC").
			Limit(n - len(claimed)).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			if relErr := s.releaseItems(ctx, claimedIDs); relErr != nil {
				return nil, fmt.Errorf("storefront/sqlite: release after shortfall: %w", relErr)
			}
			return nil, storefront.ErrInsufficientInventory
		}

		for i := range candidates {
			t := now()
			res, err := s.sdb.NewUpdate((*itemModel)(nil)).
				Set("status = ?", string(inventory.StatusSold)).
				Set("updated_at = ?", t).
				Where("id = ?", candidates[i].ID).
				Where("status = ?", string(inventory.StatusAvailable)).
				Exec(ctx)
			if err != nil {
				return nil, err
			}
			rows, err := res.RowsAffected()
			if err != nil {
				return nil, err
			}
			if rows == 0 {
				// Lost the race for this row; the next pass picks
				// fresh candidates.
				continue
			}
			candidates[i].Status = string(inventory.StatusSold)
			candidates[i].UpdatedAt = t
			claimed = append(claimed, fromItemModel(&candidates[i]))
			claimedIDs = append(claimedIDs, candidates[i].ID)
		}
	}
	return claimed, nil
}

func (s *Store) releaseItems(ctx context.Context, itemIDs []string) error {
	for _, itemID := range itemIDs {
		_, err := s.sdb.NewUpdate((*itemModel)(nil)).
			Set("status = ?", string(inventory.StatusAvailable)).
			Set("updated_at = ?", now()).
			Where("id = ?", itemID).
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CountAvailable(ctx context.Context) (int, error) {
	var total int
	err := s.sdb.NewRaw(`
		SELECT COUNT(*) FROM storefront_items WHERE status = ?
	`, string(inventory.StatusAvailable)).Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ScrapItem(ctx context.Context, itemID string) error {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	g := &garbageModel{ID: item.ID, Status: string(item.Status), CreatedAt: item.CreatedAt, UpdatedAt: now()}
	_, err = s.sdb.NewInsert(g).
		OnConflict("(id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = s.sdb.NewDelete((*itemModel)(nil)).
		Where("id = ?", itemID).
		Exec(ctx)
	return err
}

func (s *Store) ListScrappedItems(ctx context.Context) ([]*inventory.Item, error) {
	var models []garbageModel
	err := s.sdb.NewSelect(&models).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*inventory.Item, len(models))
	for i := range models {
		m := models[i]
		result[i] = fromItemModel(&itemModel{ID: m.ID, Status: m.Status, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt})
	}
	return result, nil
}

// ==================== Pricing Store ====================

func (s *Store) UpsertTier(ctx context.Context, t *pricing.Tier) error {
	m := toTierModel(t)
	m.UpdatedAt = now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = m.UpdatedAt
	}

	_, err := s.sdb.NewInsert(m).
		OnConflict("(step) DO UPDATE").
		Set("unit_price_cents = EXCLUDED.unit_price_cents").
		Set("unit_price_currency = EXCLUDED.unit_price_currency").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) RemoveTier(ctx context.Context, step int) error {
	res, err := s.sdb.NewDelete((*tierModel)(nil)).
		Where("step = ?", step).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storefront.ErrTierNotFound
	}
	return nil
}

func (s *Store) ListTiers(ctx context.Context) (pricing.Table, error) {
	var models []tierModel
	err := s.sdb.NewSelect(&models).
		OrderExpr("step ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	table := make(pricing.Table, len(models))
	for i := range models {
		table[i] = fromTierModel(&models[i])
	}
	return table, nil
}

// ==================== Session Store ====================

// CreateSession inserts a pending session. The partial unique index on
// client_id (status = 'pending') rejects a second pending session for
// the same client.
func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	m := toSessionModel(sess)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return storefront.ErrDuplicateSession
		}
		return err
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	m := new(sessionModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", sessionID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrSessionNotFound
		}
		return nil, err
	}
	return fromSessionModel(m)
}

func (s *Store) GetPendingSessionByClient(ctx context.Context, clientID id.ClientID) (*session.Session, error) {
	m := new(sessionModel)
	err := s.sdb.NewSelect(m).
		Where("client_id = ?", clientID.String()).
		Where("status = ?", string(session.StatusPending)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrSessionNotFound
		}
		return nil, err
	}
	return fromSessionModel(m)
}

func (s *Store) UpdateSession(ctx context.Context, sess *session.Session) error {
	m := toSessionModel(sess)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storefront.ErrSessionNotFound
	}
	return nil
}

func (s *Store) CompleteSession(ctx context.Context, sessionID id.SessionID) (bool, error) {
	return s.flipSessionStatus(ctx, sessionID, session.StatusPending, session.StatusCompleted)
}

func (s *Store) ReopenSession(ctx context.Context, sessionID id.SessionID) (bool, error) {
	return s.flipSessionStatus(ctx, sessionID, session.StatusCompleted, session.StatusPending)
}

// flipSessionStatus performs a conditional status transition. The
// WHERE clause carries the expected status, so exactly one of any
// number of concurrent callers matches.
func (s *Store) flipSessionStatus(ctx context.Context, sessionID id.SessionID, from, to session.Status) (bool, error) {
	res, err := s.sdb.NewUpdate((*sessionModel)(nil)).
		Set("status = ?", string(to)).
		Set("updated_at = ?", now()).
		Where("id = ?", sessionID.String()).
		Where("status = ?", string(from)).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 1 {
		return true, nil
	}

	// Distinguish a lost race from a missing session.
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Store) CancelSession(ctx context.Context, sessionID id.SessionID) error {
	res, err := s.sdb.NewUpdate((*sessionModel)(nil)).
		Set("status = ?", string(session.StatusCancelled)).
		Set("updated_at = ?", now()).
		Where("id = ?", sessionID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storefront.ErrSessionNotFound
	}
	return nil
}

func (s *Store) ListPendingSessionsBefore(ctx context.Context, cutoff time.Time) ([]*session.Session, error) {
	var models []sessionModel
	err := s.sdb.NewSelect(&models).
		Where("status = ?", string(session.StatusPending)).
		Where("created_at < ?", cutoff).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*session.Session, len(models))
	for i := range models {
		sess, err := fromSessionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sess
	}
	return result, nil
}

// ==================== Client Store ====================

func (s *Store) GetClient(ctx context.Context, clientID id.ClientID) (*client.Record, error) {
	m := new(clientModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", clientID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, storefront.ErrClientNotFound
		}
		return nil, err
	}
	return fromClientModel(m)
}

func (s *Store) ListClients(ctx context.Context) ([]*client.Record, error) {
	var models []clientModel
	err := s.sdb.NewSelect(&models).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*client.Record, len(models))
	for i := range models {
		rec, err := fromClientModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = rec
	}
	return result, nil
}

func (s *Store) AppendPurchase(ctx context.Context, clientID id.ClientID, p client.Purchase) error {
	return s.mutateClient(ctx, clientID, func(rec *client.Record) {
		rec.Purchases = append(rec.Purchases, p)
	})
}

func (s *Store) AppendReplacement(ctx context.Context, clientID id.ClientID, r client.Replacement) error {
	return s.mutateClient(ctx, clientID, func(rec *client.Record) {
		rec.Replacements = append(rec.Replacements, r)
	})
}

func (s *Store) AppendServicePurchase(ctx context.Context, clientID id.ClientID, sp client.ServicePurchase) error {
	return s.mutateClient(ctx, clientID, func(rec *client.Record) {
		rec.ServicePurchases = append(rec.ServicePurchases, sp)
	})
}

func (s *Store) IncrementLegitChecks(ctx context.Context, clientID id.ClientID, delta int) error {
	return s.mutateClient(ctx, clientID, func(rec *client.Record) {
		rec.LegitChecks += delta
	})
}

func (s *Store) IncrementLevel(ctx context.Context, clientID id.ClientID, delta int) error {
	return s.mutateClient(ctx, clientID, func(rec *client.Record) {
		rec.Level += delta
	})
}

// mutateClient loads the record (creating it on first contact),
// applies fn, and writes the full row back.
func (s *Store) mutateClient(ctx context.Context, clientID id.ClientID, fn func(*client.Record)) error {
	rec, err := s.GetClient(ctx, clientID)
	if err != nil {
		if !errors.Is(err, storefront.ErrClientNotFound) {
			return err
		}
		rec = client.NewRecord(clientID)
	}
	fn(rec)

	m := toClientModel(rec)
	_, err = s.sdb.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("level = EXCLUDED.level").
		Set("purchases = EXCLUDED.purchases").
		Set("replacements = EXCLUDED.replacements").
		Set("service_purchases = EXCLUDED.service_purchases").
		Set("legit_checks = EXCLUDED.legit_checks").
		Exec(ctx)
	return err
}

// ==================== Finance Store ====================

func (s *Store) AppendEntry(ctx context.Context, e *finance.Entry) error {
	m := toEntryModel(e)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListEntriesRange(ctx context.Context, start, end time.Time) ([]*finance.Entry, error) {
	var models []entryModel
	q := s.sdb.NewSelect(&models)

	if !start.IsZero() {
		q = q.Where("date >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where("date <= ?", end)
	}
	q = q.OrderExpr("date ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*finance.Entry, len(models))
	for i := range models {
		e, err := fromEntryModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
