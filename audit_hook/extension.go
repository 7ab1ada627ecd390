// Package audithook bridges Storefront lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/storefront/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnSessionCreated   = (*Extension)(nil)
	_ plugin.OnSessionCompleted = (*Extension)(nil)
	_ plugin.OnSessionCanceled  = (*Extension)(nil)
	_ plugin.OnSessionExpired   = (*Extension)(nil)
	_ plugin.OnPaymentVerified  = (*Extension)(nil)
	_ plugin.OnPaymentRejected  = (*Extension)(nil)
	_ plugin.OnAllocationFailed = (*Extension)(nil)
	_ plugin.OnFulfillment      = (*Extension)(nil)
	_ plugin.OnReplacement      = (*Extension)(nil)
	_ plugin.OnItemsImported    = (*Extension)(nil)
	_ plugin.OnTierChanged      = (*Extension)(nil)
	_ plugin.OnEntryAppended    = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Storefront lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Session lifecycle hooks
// ──────────────────────────────────────────────────

// OnSessionCreated implements plugin.OnSessionCreated.
func (e *Extension) OnSessionCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionSessionCreated, SeverityInfo, OutcomeSuccess,
		ResourceSession, "", CategoryCheckout, nil,
		"event", "session_created",
	)
}

// OnSessionCompleted implements plugin.OnSessionCompleted.
func (e *Extension) OnSessionCompleted(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionSessionCompleted, SeverityInfo, OutcomeSuccess,
		ResourceSession, "", CategoryCheckout, nil,
		"event", "session_completed",
	)
}

// OnSessionCanceled implements plugin.OnSessionCanceled.
func (e *Extension) OnSessionCanceled(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionSessionCanceled, SeverityInfo, OutcomeSuccess,
		ResourceSession, "", CategoryCheckout, nil,
		"event", "session_canceled",
	)
}

// OnSessionExpired implements plugin.OnSessionExpired.
func (e *Extension) OnSessionExpired(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionSessionExpired, SeverityWarning, OutcomeFailure,
		ResourceSession, "", CategoryCheckout, nil,
		"event", "session_expired",
	)
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentVerified implements plugin.OnPaymentVerified.
func (e *Extension) OnPaymentVerified(ctx context.Context, _, _ interface{}) error {
	return e.record(ctx, ActionPaymentVerified, SeverityInfo, OutcomeSuccess,
		ResourcePayment, "", CategoryPayment, nil,
		"event", "payment_verified",
	)
}

// OnPaymentRejected implements plugin.OnPaymentRejected.
func (e *Extension) OnPaymentRejected(ctx context.Context, _ interface{}, err error) error {
	return e.record(ctx, ActionPaymentRejected, SeverityWarning, OutcomeFailure,
		ResourcePayment, "", CategoryPayment, err,
		"event", "payment_rejected",
	)
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnAllocationFailed implements plugin.OnAllocationFailed.
func (e *Extension) OnAllocationFailed(ctx context.Context, _ interface{}, want int) error {
	return e.record(ctx, ActionAllocationFailed, SeverityCritical, OutcomeFailure,
		ResourceInventory, "", CategoryInventory, nil,
		"event", "allocation_failed",
		"want", want,
	)
}

// OnFulfillment implements plugin.OnFulfillment.
func (e *Extension) OnFulfillment(ctx context.Context, clientID string, items []interface{}) error {
	return e.record(ctx, ActionFulfillment, SeverityInfo, OutcomeSuccess,
		ResourceInventory, clientID, CategoryInventory, nil,
		"client_id", clientID,
		"count", len(items),
	)
}

// OnReplacement implements plugin.OnReplacement.
func (e *Extension) OnReplacement(ctx context.Context, clientID string, items []interface{}) error {
	return e.record(ctx, ActionReplacement, SeverityInfo, OutcomeSuccess,
		ResourceInventory, clientID, CategoryInventory, nil,
		"client_id", clientID,
		"count", len(items),
	)
}

// OnItemsImported implements plugin.OnItemsImported.
func (e *Extension) OnItemsImported(ctx context.Context, count int) error {
	return e.record(ctx, ActionItemsImported, SeverityInfo, OutcomeSuccess,
		ResourceInventory, "", CategoryInventory, nil,
		"count", count,
	)
}

// ──────────────────────────────────────────────────
// Pricing and finance hooks
// ──────────────────────────────────────────────────

// OnTierChanged implements plugin.OnTierChanged.
func (e *Extension) OnTierChanged(ctx context.Context, step int) error {
	return e.record(ctx, ActionTierChanged, SeverityInfo, OutcomeSuccess,
		ResourceTier, fmt.Sprintf("%d", step), CategoryPricing, nil,
		"step", step,
	)
}

// OnEntryAppended implements plugin.OnEntryAppended.
func (e *Extension) OnEntryAppended(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionEntryAppended, SeverityInfo, OutcomeSuccess,
		ResourceEntry, "", CategoryFinance, nil,
		"event", "entry_appended",
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
