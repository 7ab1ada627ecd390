package sqlite

import (
	"encoding/json"
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

	ID        string    `grove:"id,pk"`
	Status    string    `grove:"status"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

// garbageModel mirrors itemModel in the scrap table.
type garbageModel struct {
	grove.BaseModel `grove:"table:storefront_garbage"`

	ID        string    `grove:"id,pk"`
	Status    string    `grove:"status"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
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

	Step              int       `grove:"step,pk"`
	UnitPriceCents    int64     `grove:"unit_price_cents"`
	UnitPriceCurrency string    `grove:"unit_price_currency"`
	CreatedAt         time.Time `grove:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"`
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

	ID                  string    `grove:"id,pk"`
	ClientID            string    `grove:"client_id"`
	Quantity            int       `grove:"quantity"`
	QuotedTotalCents    int64     `grove:"quoted_total_cents"`
	QuotedTotalCurrency string    `grove:"quoted_total_currency"`
	PaymentMethod       string    `grove:"payment_method"`
	Coin                string    `grove:"coin"`
	Network             string    `grove:"network"`
	TxID                string    `grove:"txid"`
	Status              string    `grove:"status"`
	CreatedAt           time.Time `grove:"created_at"`
	UpdatedAt           time.Time `grove:"updated_at"`
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

// History slices are stored as JSON columns.
type clientModel struct {
	grove.BaseModel `grove:"table:storefront_clients"`

	ID               string          `grove:"id,pk"`
	RegisteredAt     time.Time       `grove:"registered_at"`
	Level            int             `grove:"level"`
	Purchases        json.RawMessage `grove:"purchases"`
	Replacements     json.RawMessage `grove:"replacements"`
	ServicePurchases json.RawMessage `grove:"service_purchases"`
	LegitChecks      int             `grove:"legit_checks"`
}

type purchaseRecord struct {
	Quantity          int       `json:"quantity"`
	UnitPriceCents    int64     `json:"unit_price_cents"`
	UnitPriceCurrency string    `json:"unit_price_currency"`
	TotalCents        int64     `json:"total_cents"`
	TotalCurrency     string    `json:"total_currency"`
	PaymentMethod     string    `json:"payment_method,omitempty"`
	ItemIDs           []string  `json:"item_ids,omitempty"`
	Date              time.Time `json:"date"`
}

type replacementRecord struct {
	Quantity int       `json:"quantity"`
	ItemIDs  []string  `json:"item_ids,omitempty"`
	Date     time.Time `json:"date"`
}

type servicePurchaseRecord struct {
	Service       string    `json:"service"`
	TotalCents    int64     `json:"total_cents"`
	TotalCurrency string    `json:"total_currency"`
	Date          time.Time `json:"date"`
}

func toClientModel(rec *client.Record) *clientModel {
	purchases := make([]purchaseRecord, len(rec.Purchases))
	for i, p := range rec.Purchases {
		purchases[i] = purchaseRecord{
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
	replacements := make([]replacementRecord, len(rec.Replacements))
	for i, r := range rec.Replacements {
		replacements[i] = replacementRecord{Quantity: r.Quantity, ItemIDs: r.ItemIDs, Date: r.Date}
	}
	services := make([]servicePurchaseRecord, len(rec.ServicePurchases))
	for i, sp := range rec.ServicePurchases {
		services[i] = servicePurchaseRecord{
			Service:       sp.Service,
			TotalCents:    sp.Total.Amount,
			TotalCurrency: sp.Total.Currency,
			Date:          sp.Date,
		}
	}

	purchasesJSON, _ := json.Marshal(purchases)       //nolint:errcheck // best-effort
	replacementsJSON, _ := json.Marshal(replacements) //nolint:errcheck // best-effort
	servicesJSON, _ := json.Marshal(services)         //nolint:errcheck // best-effort

	return &clientModel{
		ID:               rec.ClientID.String(),
		RegisteredAt:     rec.RegisteredAt,
		Level:            rec.Level,
		Purchases:        purchasesJSON,
		Replacements:     replacementsJSON,
		ServicePurchases: servicesJSON,
		LegitChecks:      rec.LegitChecks,
	}
}

func fromClientModel(m *clientModel) (*client.Record, error) {
	clientID, err := id.ParseClientID(m.ID)
	if err != nil {
		return nil, err
	}

	var purchaseRecords []purchaseRecord
	if len(m.Purchases) > 0 {
		_ = json.Unmarshal(m.Purchases, &purchaseRecords) //nolint:errcheck // best-effort
	}
	var replacementRecords []replacementRecord
	if len(m.Replacements) > 0 {
		_ = json.Unmarshal(m.Replacements, &replacementRecords) //nolint:errcheck // best-effort
	}
	var serviceRecords []servicePurchaseRecord
	if len(m.ServicePurchases) > 0 {
		_ = json.Unmarshal(m.ServicePurchases, &serviceRecords) //nolint:errcheck // best-effort
	}

	purchases := make([]client.Purchase, len(purchaseRecords))
	for i, p := range purchaseRecords {
		purchases[i] = client.Purchase{
			Quantity:      p.Quantity,
			UnitPrice:     types.Money{Amount: p.UnitPriceCents, Currency: p.UnitPriceCurrency},
			Total:         types.Money{Amount: p.TotalCents, Currency: p.TotalCurrency},
			PaymentMethod: p.PaymentMethod,
			ItemIDs:       p.ItemIDs,
			Date:          p.Date,
		}
	}
	replacements := make([]client.Replacement, len(replacementRecords))
	for i, r := range replacementRecords {
		replacements[i] = client.Replacement{Quantity: r.Quantity, ItemIDs: r.ItemIDs, Date: r.Date}
	}
	services := make([]client.ServicePurchase, len(serviceRecords))
	for i, sp := range serviceRecords {
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

	ID                string    `grove:"id,pk"`
	Type              string    `grove:"type"`
	Product           string    `grove:"product"`
	Quantity          int       `grove:"quantity"`
	UnitPriceCents    int64     `grove:"unit_price_cents"`
	UnitPriceCurrency string    `grove:"unit_price_currency"`
	TotalCents        int64     `grove:"total_cents"`
	TotalCurrency     string    `grove:"total_currency"`
	PaymentMethod     string    `grove:"payment_method"`
	ClientID          string    `grove:"client_id"`
	Date              time.Time `grove:"date"`
	CreatedAt         time.Time `grove:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"`
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
