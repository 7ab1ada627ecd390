package session

import (
	"time"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// DefaultTTL is the advisory payment window for a pending session.
const DefaultTTL = 15 * time.Minute

// Session is a checkout session. The quoted total is fixed at creation
// and never recomputed, so later pricing changes cannot affect an open
// checkout. At most one pending session exists per client.
type Session struct {
	types.Entity
	ID            id.SessionID `json:"id"`
	ClientID      id.ClientID  `json:"client_id"`
	Quantity      int          `json:"quantity"`
	QuotedTotal   types.Money  `json:"quoted_total"`
	PaymentMethod string       `json:"payment_method,omitempty"`
	Coin          string       `json:"coin,omitempty"`
	Network       string       `json:"network,omitempty"`
	TxID          string       `json:"txid,omitempty"`
	Status        Status       `json:"status"`
}

// New creates a pending session with a fresh ID and timestamps.
func New(clientID id.ClientID, quantity int, quotedTotal types.Money) *Session {
	return &Session{
		Entity:      types.NewEntity(),
		ID:          id.NewSessionID(),
		ClientID:    clientID,
		Quantity:    quantity,
		QuotedTotal: quotedTotal,
		Status:      StatusPending,
	}
}

// IsPending reports whether the session is still open for payment.
func (s *Session) IsPending() bool {
	return s.Status == StatusPending
}

// ExpiredAt reports whether the session's payment window had closed at t.
func (s *Session) ExpiredAt(t time.Time, ttl time.Duration) bool {
	return t.Sub(s.CreatedAt) > ttl
}
