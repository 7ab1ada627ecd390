package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/storefront/client"
	"github.com/xraph/storefront/finance"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/inventory"
	"github.com/xraph/storefront/pricing"
	"github.com/xraph/storefront/session"
	"github.com/xraph/storefront/types"
)

// ==================== Inventory models ====================

type itemModel struct {
	grove.BaseModel `grove:"table:storefront_items"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Status    string    `grove:"status"     bson:"status"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

// garbageModel mirrors itemModel in the scrap collection.
type garbageModel struct {
	grove.BaseModel `grove:"table:storefront_garbage"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	Status    string    `grove:"status"     bson:"status"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

func toItemModel(item *inventory.Item) *itemModel {
	return &itemModel{
		ID:        item.ID,
		Status:    string(item.Status),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func fromItemModel(m *itemModel) *inventory.Item {
	return &inventory.Item{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:     m.ID,
		Status: inventory.Status(m.Status),
	}
}

// ==================== Pricing models ====================

type tierModel struct {
	grove.BaseModel `grove:"table:storefront_price_tiers"`

	Step              int       `grove:"step,pk"             bson:"_id"`
	UnitPriceCents    int64     `grove:"unit_price_cents"    bson:"unit_price_cents"`
	UnitPriceCurrency string    `grove:"unit_price_currency" bson:"unit_price_currency"`
	CreatedAt         time.Time `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"          bson:"updated_at"`
}

func toTierModel(t *pricing.Tier) *tierModel {
	return &tierModel{
		Step:              t.Step,
		UnitPriceCents:    t.UnitPrice.Amount,
		UnitPriceCurrency: t.UnitPrice.Currency,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func fromTierModel(m *tierModel) pricing.Tier {
	return pricing.Tier{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Step:      m.Step,
		UnitPrice: types.Money{Amount: m.UnitPriceCents, Currency: m.UnitPriceCurrency},
	}
}

// ==================== Session models ====================

type sessionModel struct {
	grove.BaseModel `grove:"table:storefront_sessions"`

	ID                  string    `grove:"id,pk"                 bson:"_id"`
	ClientID            string    `grove:"client_id"             bson:"client_id"`
	Quantity            int       `grove:"quantity"              bson:"quantity"`
	QuotedTotalCents    int64     `grove:"quoted_total_cents"    bson:"quoted_total_cents"`
	QuotedTotalCurrency string    `grove:"quoted_total_currency" bson:"quoted_total_currency"`
	PaymentMethod       string    `grove:"payment_method"        bson:"payment_method"`
	Coin                string    `grove:"coin"                  bson:"coin"`
	Network             string    `grove:"network"               bson:"network"`
	TxID                string    `grove:"txid"                  bson:"txid"`
	Status              string    `grove:"status"                bson:"status"`
	CreatedAt           time.Time `grove:"created_at"            bson:"created_at"`
	UpdatedAt           time.Time `grove:"updated_at"            bson:"updated_at"`
}

func toSessionModel(s *session.Session) *sessionModel {
	return &sessionModel{
		ID:                  s.ID.String(),
		ClientID:            s.ClientID.String(),
		Quantity:            s.Quantity,
		QuotedTotalCents:    s.QuotedTotal.Amount,
		QuotedTotalCurrency: s.QuotedTotal.Currency,
		PaymentMethod:       s.PaymentMethod,
		Coin:                s.Coin,
		Network:             s.Network,
		TxID:                s.TxID,
		Status:              string(s.Status),
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func fromSessionModel(m *sessionModel) (*session.Session, error) {
	sessionID, err := id.ParseSessionID(m.ID)
	if err != nil {
		return nil, err
	}
	clientID, err := id.ParseClientID(m.ClientID)
	if err != nil {
		return nil, err
	}

	return &session.Session{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            sessionID,
		ClientID:      clientID,
		Quantity:      m.Quantity,
		QuotedTotal:   types.Money{Amount: m.QuotedTotalCents, Currency: m.QuotedTotalCurrency},
		PaymentMethod: m.PaymentMethod,
		Coin:          m.Coin,
		Network:       m.Network,
		TxID:          m.TxID,
		Status:        session.Status(m.Status),
	}, nil
}

// ==================== Client models ====================

type clientModel struct {
	grove.BaseModel `grove:"table:storefront_clients"`

	ID               string                 `grove:"id,pk"             bson:"_id"`
	RegisteredAt     time.Time              `grove:"registered_at"     bson:"registered_at"`
	Level            int                    `grove:"level"             bson:"level"`
	Purchases        []purchaseModel        `grove:"purchases"         bson:"purchases"`
	Replacements     []replacementModel     `grove:"replacements"      bson:"replacements"`
	ServicePurchases []servicePurchaseModel `grove:"service_purchases" bson:"service_purchases"`
	LegitChecks      int                    `grove:"legit_checks"      bson:"legit_checks"`
}

type purchaseModel struct {
	Quantity          int       `bson:"quantity"`
	UnitPriceCents    int64     `bson:"unit_price_cents"`
	UnitPriceCurrency string    `bson:"unit_price_currency"`
	TotalCents        int64     `bson:"total_cents"`
	TotalCurrency     string    `bson:"total_currency"`
	PaymentMethod     string    `bson:"payment_method,omitempty"`
	ItemIDs           []string  `bson:"item_ids,omitempty"`
	Date              time.Time `bson:"date"`
}

type replacementModel struct {
	Quantity int       `bson:"quantity"`
	ItemIDs  []string  `bson:"item_ids,omitempty"`
	Date     time.Time `bson:"date"`
}

type servicePurchaseModel struct {
	Service       string    `bson:"service"`
	TotalCents    int64     `bson:"total_cents"`
	TotalCurrency string    `bson:"total_currency"`
	Date          time.Time `bson:"date"`
}

func toPurchaseModel(p client.Purchase) purchaseModel {
	return purchaseModel{
		Quantity:          p.Quantity,
		UnitPriceCents:    p.UnitPrice.Amount,
		UnitPriceCurrency: p.UnitPrice.Currency,
		TotalCents:        p.Total.Amount,
		TotalCurrency:     p.Total.Currency,
		PaymentMethod:     p.PaymentMethod,
		ItemIDs:           p.ItemIDs,
		Date:              p.Date,
	}
}

func toReplacementModel(r client.Replacement) replacementModel {
	return replacementModel{Quantity: r.Quantity, ItemIDs: r.ItemIDs, Date: r.Date}
}

func toServicePurchaseModel(sp client.ServicePurchase) servicePurchaseModel {
	return servicePurchaseModel{
		Service:       sp.Service,
		TotalCents:    sp.Total.Amount,
		TotalCurrency: sp.Total.Currency,
		Date:          sp.Date,
	}
}

func fromClientModel(m *clientModel) (*client.Record, error) {
	clientID, err := id.ParseClientID(m.ID)
	if err != nil {
		return nil, err
	}

	purchases := make([]client.Purchase, len(m.Purchases))
	for i, p := range m.Purchases {
		purchases[i] = client.Purchase{
			Quantity:      p.Quantity,
			UnitPrice:     types.Money{Amount: p.UnitPriceCents, Currency: p.UnitPriceCurrency},
			Total:         types.Money{Amount: p.TotalCents, Currency: p.TotalCurrency},
			PaymentMethod: p.PaymentMethod,
			ItemIDs:       p.ItemIDs,
			Date:          p.Date,
		}
	}
	replacements := make([]client.Replacement, len(m.Replacements))
	for i, r := range m.Replacements {
		replacements[i] = client.Replacement{Quantity: r.Quantity, ItemIDs: r.ItemIDs, Date: r.Date}
	}
	services := make([]client.ServicePurchase, len(m.ServicePurchases))
	for i, sp := range m.ServicePurchases {
		services[i] = client.ServicePurchase{
			Service: sp.Service,
			Total:   types.Money{Amount: sp.TotalCents, Currency: sp.TotalCurrency},
			Date:    sp.Date,
		}
	}

	return &client.Record{
		ClientID:         clientID,
		RegisteredAt:     m.RegisteredAt,
		Level:            m.Level,
		Purchases:        purchases,
		Replacements:     replacements,
		ServicePurchases: services,
		LegitChecks:      m.LegitChecks,
	}, nil
}

// ==================== Finance models ====================

type entryModel struct {
	grove.BaseModel `grove:"table:storefront_finance"`

	ID                string    `grove:"id,pk"               bson:"_id"`
	Type              string    `grove:"type"                bson:"type"`
	Product           string    `grove:"product"             bson:"product"`
	Quantity          int       `grove:"quantity"            bson:"quantity"`
	UnitPriceCents    int64     `grove:"unit_price_cents"    bson:"unit_price_cents"`
	UnitPriceCurrency string    `grove:"unit_price_currency" bson:"unit_price_currency"`
	TotalCents        int64     `grove:"total_cents"         bson:"total_cents"`
	TotalCurrency     string    `grove:"total_currency"      bson:"total_currency"`
	PaymentMethod     string    `grove:"payment_method"      bson:"payment_method"`
	ClientID          string    `grove:"client_id"           bson:"client_id"`
	Date              time.Time `grove:"date"                bson:"date"`
	CreatedAt         time.Time `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"          bson:"updated_at"`
}

func toEntryModel(e *finance.Entry) *entryModel {
	return &entryModel{
		ID:                e.ID.String(),
		Type:              string(e.Type),
		Product:           e.Product,
		Quantity:          e.Quantity,
		UnitPriceCents:    e.UnitPrice.Amount,
		UnitPriceCurrency: e.UnitPrice.Currency,
		TotalCents:        e.Total.Amount,
		TotalCurrency:     e.Total.Currency,
		PaymentMethod:     e.PaymentMethod,
		ClientID:          e.ClientID.String(),
		Date:              e.Date,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func fromEntryModel(m *entryModel) (*finance.Entry, error) {
	entryID, err := id.ParseEntryID(m.ID)
	if err != nil {
		return nil, err
	}

	var clientID id.ClientID
	if m.ClientID != "" {
		clientID, err = id.ParseClientID(m.ClientID)
		if err != nil {
			return nil, err
		}
	}

	return &finance.Entry{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            entryID,
		Type:          finance.Type(m.Type),
		Product:       m.Product,
		Quantity:      m.Quantity,
		UnitPrice:     types.Money{Amount: m.UnitPriceCents, Currency: m.UnitPriceCurrency},
		Total:         types.Money{Amount: m.TotalCents, Currency: m.TotalCurrency},
		PaymentMethod: m.PaymentMethod,
		ClientID:      clientID,
		Date:          m.Date,
	}, nil
}
