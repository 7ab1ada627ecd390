package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/client"
	"github.com/xraph/storefront/finance"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/inventory"
	"github.com/xraph/storefront/pricing"
	"github.com/xraph/storefront/session"
	storefrontstore "github.com/xraph/storefront/store"
)

// Collection name constants.
const (
	colItems    = "storefront_items"
	colGarbage  = "storefront_garbage"
	colTiers    = "storefront_price_tiers"
	colSessions = "storefront_sessions"
	colClients  = "storefront_clients"
	colFinance  = "storefront_finance"
)

// compile-time interface check
var _ storefrontstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
//
// The atomic claims lean on Mongo primitives: item allocation uses
// findOneAndUpdate, the one-pending-session rule uses a partial unique
// index, and the session status flips are conditional updates checked
// by matched count.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all storefront collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("storefront/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"status":     m.Status,
			"created_at": m.CreatedAt,
			"updated_at": m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: upsert item: %w", err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, itemID string) (*inventory.Item, error) {
	var m itemModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": itemID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrItemNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get item: %w", err)
	}
	return fromItemModel(&m), nil
}

func (s *Store) ListItems(ctx context.Context, opts inventory.ListOpts) ([]*inventory.Item, error) {
	var models []itemModel

	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("storefront/mongo: list items: %w", err)
	}

	result := make([]*inventory.Item, len(models))
	for i := range models {
		result[i] = fromItemModel(&models[i])
	}
	return result, nil
}

func (s *Store) SetItemStatus(ctx context.Context, itemID string, status inventory.Status) error {
	res, err := s.mdb.NewUpdate((*itemModel)(nil)).
		Filter(bson.M{"_id": itemID}).
		Set("status", string(status)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: set item status: %w", err)
	}
	if res.MatchedCount() == 0 {
		return storefront.ErrItemNotFound
	}
	return nil
}

// AllocateItems claims n available items one findOneAndUpdate at a
// time. Each flip is atomic, so concurrent callers never claim the
// same item. On shortfall the already-claimed items are released
// before returning, which keeps the all-or-nothing contract.
func (s *Store) AllocateItems(ctx context.Context, n int) ([]*inventory.Item, error) {
	t := now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	claimed := make([]*inventory.Item, 0, n)
	claimedIDs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var m itemModel
		err := s.mdb.Collection(colItems).FindOneAndUpdate(ctx,
			bson.M{"status": string(inventory.StatusAvailable)},
			bson.M{"$set": bson.M{"status": string(inventory.StatusSold), "updated_at": t}},
			opts,
		).Decode(&m)
		if err != nil {
			if isNoDocuments(err) {
				if relErr := s.releaseItems(ctx, claimedIDs); relErr != nil {
					return nil, fmt.Errorf("storefront/mongo: release after shortfall: %w", relErr)
				}
				return nil, storefront.ErrInsufficientInventory
			}
			return nil, fmt.Errorf("storefront/mongo: allocate item: %w", err)
		}
		claimed = append(claimed, fromItemModel(&m))
		claimedIDs = append(claimedIDs, m.ID)
	}
	return claimed, nil
}

func (s *Store) releaseItems(ctx context.Context, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := s.mdb.Collection(colItems).UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": itemIDs}},
		bson.M{"$set": bson.M{"status": string(inventory.StatusAvailable), "updated_at": now()}},
	)
	return err
}

func (s *Store) CountAvailable(ctx context.Context) (int, error) {
	n, err := s.mdb.Collection(colItems).CountDocuments(ctx,
		bson.M{"status": string(inventory.StatusAvailable)})
	if err != nil {
		return 0, fmt.Errorf("storefront/mongo: count available: %w", err)
	}
	return int(n), nil
}

func (s *Store) ScrapItem(ctx context.Context, itemID string) error {
	var m itemModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": itemID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return storefront.ErrItemNotFound
		}
		return fmt.Errorf("storefront/mongo: scrap item: %w", err)
	}

	g := &garbageModel{ID: m.ID, Status: m.Status, CreatedAt: m.CreatedAt, UpdatedAt: now()}
	_, err = s.mdb.NewUpdate(g).
		Filter(bson.M{"_id": g.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"status":     g.Status,
			"created_at": g.CreatedAt,
			"updated_at": g.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: scrap item: %w", err)
	}

	_, err = s.mdb.NewDelete((*itemModel)(nil)).
		Filter(bson.M{"_id": itemID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: scrap item: %w", err)
	}
	return nil
}

func (s *Store) ListScrappedItems(ctx context.Context) ([]*inventory.Item, error) {
	var models []garbageModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list scrapped items: %w", err)
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

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Step}).
		SetUpdate(bson.M{"$set": bson.M{
			"unit_price_cents":    m.UnitPriceCents,
			"unit_price_currency": m.UnitPriceCurrency,
			"created_at":          m.CreatedAt,
			"updated_at":          m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: upsert tier: %w", err)
	}
	return nil
}

func (s *Store) RemoveTier(ctx context.Context, step int) error {
	res, err := s.mdb.NewDelete((*tierModel)(nil)).
		Filter(bson.M{"_id": step}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: remove tier: %w", err)
	}
	if res.DeletedCount() == 0 {
		return storefront.ErrTierNotFound
	}
	return nil
}

func (s *Store) ListTiers(ctx context.Context) (pricing.Table, error) {
	var models []tierModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list tiers: %w", err)
	}

	table := make(pricing.Table, len(models))
	for i := range models {
		table[i] = fromTierModel(&models[i])
	}
	return table, nil
}

// ==================== Session Store ====================

// CreateSession inserts a pending session. The partial unique index on
// client_id (status=pending) turns a second pending session for the
// same client into a duplicate key error.
func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	m := toSessionModel(sess)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storefront.ErrDuplicateSession
		}
		return fmt.Errorf("storefront/mongo: create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	var m sessionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": sessionID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrSessionNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get session: %w", err)
	}
	return fromSessionModel(&m)
}

func (s *Store) GetPendingSessionByClient(ctx context.Context, clientID id.ClientID) (*session.Session, error) {
	var m sessionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"client_id": clientID.String(),
			"status":    string(session.StatusPending),
		}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrSessionNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get pending session: %w", err)
	}
	return fromSessionModel(&m)
}

func (s *Store) UpdateSession(ctx context.Context, sess *session.Session) error {
	m := toSessionModel(sess)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: update session: %w", err)
	}
	if res.MatchedCount() == 0 {
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
// filter carries the expected status, so exactly one of any number of
// concurrent callers matches.
func (s *Store) flipSessionStatus(ctx context.Context, sessionID id.SessionID, from, to session.Status) (bool, error) {
	res, err := s.mdb.NewUpdate((*sessionModel)(nil)).
		Filter(bson.M{"_id": sessionID.String(), "status": string(from)}).
		Set("status", string(to)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("storefront/mongo: flip session status: %w", err)
	}
	if res.MatchedCount() == 1 {
		return true, nil
	}

	// Distinguish a lost race from a missing session.
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Store) CancelSession(ctx context.Context, sessionID id.SessionID) error {
	res, err := s.mdb.NewUpdate((*sessionModel)(nil)).
		Filter(bson.M{"_id": sessionID.String()}).
		Set("status", string(session.StatusCancelled)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: cancel session: %w", err)
	}
	if res.MatchedCount() == 0 {
		return storefront.ErrSessionNotFound
	}
	return nil
}

func (s *Store) ListPendingSessionsBefore(ctx context.Context, cutoff time.Time) ([]*session.Session, error) {
	var models []sessionModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"status":     string(session.StatusPending),
			"created_at": bson.M{"$lt": cutoff},
		}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list pending sessions: %w", err)
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
	var m clientModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": clientID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, storefront.ErrClientNotFound
		}
		return nil, fmt.Errorf("storefront/mongo: get client: %w", err)
	}
	return fromClientModel(&m)
}

func (s *Store) ListClients(ctx context.Context) ([]*client.Record, error) {
	var models []clientModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list clients: %w", err)
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
	return s.applyClientUpdate(ctx, clientID, "append purchase",
		bson.M{"$push": bson.M{"purchases": toPurchaseModel(p)}})
}

func (s *Store) AppendReplacement(ctx context.Context, clientID id.ClientID, r client.Replacement) error {
	return s.applyClientUpdate(ctx, clientID, "append replacement",
		bson.M{"$push": bson.M{"replacements": toReplacementModel(r)}})
}

func (s *Store) AppendServicePurchase(ctx context.Context, clientID id.ClientID, sp client.ServicePurchase) error {
	return s.applyClientUpdate(ctx, clientID, "append service purchase",
		bson.M{"$push": bson.M{"service_purchases": toServicePurchaseModel(sp)}})
}

func (s *Store) IncrementLegitChecks(ctx context.Context, clientID id.ClientID, delta int) error {
	return s.applyClientUpdate(ctx, clientID, "increment legit checks",
		bson.M{"$inc": bson.M{"legit_checks": delta}})
}

func (s *Store) IncrementLevel(ctx context.Context, clientID id.ClientID, delta int) error {
	return s.applyClientUpdate(ctx, clientID, "increment level",
		bson.M{"$inc": bson.M{"level": delta}})
}

// applyClientUpdate applies an update document to a client record,
// creating the record on first contact.
func (s *Store) applyClientUpdate(ctx context.Context, clientID id.ClientID, op string, update bson.M) error {
	update["$setOnInsert"] = bson.M{"registered_at": now()}

	_, err := s.mdb.NewUpdate((*clientModel)(nil)).
		Filter(bson.M{"_id": clientID.String()}).
		SetUpdate(update).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: %s: %w", op, err)
	}
	return nil
}

// ==================== Finance Store ====================

func (s *Store) AppendEntry(ctx context.Context, e *finance.Entry) error {
	m := toEntryModel(e)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("storefront/mongo: append entry: %w", err)
	}
	return nil
}

func (s *Store) ListEntriesRange(ctx context.Context, start, end time.Time) ([]*finance.Entry, error) {
	var models []entryModel

	filter := bson.M{}
	if !start.IsZero() || !end.IsZero() {
		dateFilter := bson.M{}
		if !start.IsZero() {
			dateFilter["$gte"] = start
		}
		if !end.IsZero() {
			dateFilter["$lte"] = end
		}
		filter["date"] = dateFilter
	}

	err := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "date", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("storefront/mongo: list entries: %w", err)
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all storefront collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colItems: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colSessions: {
			{
				Keys: bson.D{{Key: "client_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": string(session.StatusPending)}),
			},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colFinance: {
			{Keys: bson.D{{Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "client_id", Value: 1}}},
		},
	}
}
