package storefront

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("storefront: not found")
	ErrAlreadyExists = errors.New("storefront: already exists")
	ErrInvalidInput  = errors.New("storefront: invalid input")

	// Pricing errors
	ErrInvalidQuantity = errors.New("storefront: invalid quantity")
	ErrTierNotFound    = errors.New("storefront: price tier not found")
	ErrNoPricing       = errors.New("storefront: no price tiers configured")

	// Inventory errors
	ErrItemNotFound          = errors.New("storefront: item not found")
	ErrItemExists            = errors.New("storefront: item already exists")
	ErrInsufficientInventory = errors.New("storefront: insufficient inventory")
	ErrItemNotSold           = errors.New("storefront: item is not sold")

	// Session errors
	ErrSessionNotFound  = errors.New("storefront: checkout session not found")
	ErrDuplicateSession = errors.New("storefront: client already has a pending checkout session")
	ErrInvalidState     = errors.New("storefront: invalid session state for operation")
	ErrSessionExpired   = errors.New("storefront: checkout session expired")
	ErrAlreadyCompleted = errors.New("storefront: checkout session already completed")

	// Payment verification errors
	ErrPaymentNotFound       = errors.New("storefront: deposit not found for transaction")
	ErrPaymentAmountMismatch = errors.New("storefront: deposit amount below quoted total")
	ErrPaymentStale          = errors.New("storefront: deposit predates checkout session")
	ErrVerifierUnavailable   = errors.New("storefront: payment verifier unavailable")
	ErrNoVerifier            = errors.New("storefront: no payment verifier configured")

	// Client errors
	ErrClientNotFound = errors.New("storefront: client not found")

	// Store errors
	ErrStoreNotReady     = errors.New("storefront: store not ready")
	ErrStoreClosed       = errors.New("storefront: store is closed")
	ErrTransactionFailed = errors.New("storefront: transaction failed")
	ErrMigrationFailed   = errors.New("storefront: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("storefront: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "storefront: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("storefront: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrTierNotFound) ||
		errors.Is(err, ErrClientNotFound)
}

// IsPaymentError returns true if the error means the payment could not
// be accepted. The session stays pending; the caller may retry with a
// corrected transaction.
func IsPaymentError(err error) bool {
	return errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrPaymentAmountMismatch) ||
		errors.Is(err, ErrPaymentStale)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrVerifierUnavailable) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
