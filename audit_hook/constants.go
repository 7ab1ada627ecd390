package audithook

// Action constants for audit events.
const (
	// Session actions
	ActionSessionCreated   = "session.created"
	ActionSessionCompleted = "session.completed"
	ActionSessionCanceled  = "session.canceled"
	ActionSessionExpired   = "session.expired"

	// Payment actions
	ActionPaymentVerified = "payment.verified"
	ActionPaymentRejected = "payment.rejected"

	// Inventory actions
	ActionAllocationFailed = "allocation.failed"
	ActionFulfillment      = "fulfillment.issued"
	ActionReplacement      = "replacement.issued"
	ActionItemsImported    = "items.imported"

	// Pricing actions
	ActionTierChanged = "tier.changed"

	// Finance actions
	ActionEntryAppended = "finance.entry.appended"
)

// Resource constants for audit events.
const (
	ResourceSession   = "session"
	ResourcePayment   = "payment"
	ResourceInventory = "inventory"
	ResourceTier      = "tier"
	ResourceEntry     = "entry"
)

// Category constants for audit events.
const (
	CategoryCheckout  = "checkout"
	CategoryPayment   = "payment"
	CategoryInventory = "inventory"
	CategoryPricing   = "pricing"
	CategoryFinance   = "finance"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
