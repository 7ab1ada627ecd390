package session

import (
	"context"
	"time"

	"github.com/xraph/storefront/id"
)

// Store is the checkout session slice of the storage interface.
//
// Create must atomically reject a second pending session for the same
// client. Complete and Reopen are conditional status flips: they report
// whether the flip matched, so exactly one concurrent completer wins.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, sessionID id.SessionID) (*Session, error)
	GetPendingByClient(ctx context.Context, clientID id.ClientID) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Complete(ctx context.Context, sessionID id.SessionID) (bool, error)
	Reopen(ctx context.Context, sessionID id.SessionID) (bool, error)
	Cancel(ctx context.Context, sessionID id.SessionID) error
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*Session, error)
}
