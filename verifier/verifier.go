// Package verifier defines the payment verification interface.
//
// A Verifier answers one question: did a deposit with this transaction
// id land on our exchange account, and if so, for how much and when.
// The engine compares the answer against the checkout session's quote;
// the verifier itself knows nothing about sessions or inventory.
package verifier

import (
	"context"
	"errors"
	"time"

	"github.com/xraph/storefront/types"
)

var (
	// ErrDepositNotFound means no deposit with the transaction id is
	// visible on the exchange ledger (yet).
	ErrDepositNotFound = errors.New("verifier: deposit not found")

	// ErrUnavailable means the exchange could not be reached or answered
	// with a server error. The lookup can be retried.
	ErrUnavailable = errors.New("verifier: exchange unavailable")
)

// Deposit is a confirmed inbound transfer on the exchange ledger.
type Deposit struct {
	TxID       string      `json:"txid"`
	Asset      string      `json:"asset"`
	Amount     types.Money `json:"amount"`
	ReceivedAt time.Time   `json:"received_at"`
}

// Verifier looks up deposits on an external exchange ledger.
type Verifier interface {
	// DepositByTxID finds the deposit for a coin and transaction id.
	// Returns ErrDepositNotFound when absent and ErrUnavailable on
	// transport or server failures.
	DepositByTxID(ctx context.Context, coin, txid string) (*Deposit, error)
}
