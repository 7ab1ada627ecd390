// Package observability provides a metrics extension for Storefront that
// records lifecycle event counts via a pluggable MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/storefront/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnSessionCreated   = (*MetricsExtension)(nil)
	_ plugin.OnSessionCompleted = (*MetricsExtension)(nil)
	_ plugin.OnSessionCanceled  = (*MetricsExtension)(nil)
	_ plugin.OnSessionExpired   = (*MetricsExtension)(nil)
	_ plugin.OnPaymentVerified  = (*MetricsExtension)(nil)
	_ plugin.OnPaymentRejected  = (*MetricsExtension)(nil)
	_ plugin.OnAllocationFailed = (*MetricsExtension)(nil)
	_ plugin.OnFulfillment      = (*MetricsExtension)(nil)
	_ plugin.OnReplacement      = (*MetricsExtension)(nil)
	_ plugin.OnItemsImported    = (*MetricsExtension)(nil)
	_ plugin.OnTierChanged      = (*MetricsExtension)(nil)
	_ plugin.OnEntryAppended    = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Storefront plugin to automatically track checkout metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Session metrics
	SessionCreated   Counter
	SessionCompleted Counter
	SessionCanceled  Counter
	SessionExpired   Counter

	// Payment metrics
	PaymentVerified Counter
	PaymentRejected Counter

	// Inventory metrics
	AllocationFailed Counter
	ItemsFulfilled   Counter
	ItemsReplaced    Counter
	ItemsImported    Counter
	ImportBatchSize  Histogram

	// Pricing and finance metrics
	TierChanged   Counter
	EntryAppended Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Session metrics
		SessionCreated:   factory.Counter("storefront.session.created"),
		SessionCompleted: factory.Counter("storefront.session.completed"),
		SessionCanceled:  factory.Counter("storefront.session.canceled"),
		SessionExpired:   factory.Counter("storefront.session.expired"),

		// Payment metrics
		PaymentVerified: factory.Counter("storefront.payment.verified"),
		PaymentRejected: factory.Counter("storefront.payment.rejected"),

		// Inventory metrics
		AllocationFailed: factory.Counter("storefront.allocation.failed"),
		ItemsFulfilled:   factory.Counter("storefront.items.fulfilled"),
		ItemsReplaced:    factory.Counter("storefront.items.replaced"),
		ItemsImported:    factory.Counter("storefront.items.imported"),
		ImportBatchSize:  factory.Histogram("storefront.items.import.batch_size"),

		// Pricing and finance metrics
		TierChanged:   factory.Counter("storefront.tier.changed"),
		EntryAppended: factory.Counter("storefront.finance.entry.appended"),

		// Error metrics
		StoreErrors:  factory.Counter("storefront.store.errors"),
		PluginErrors: factory.Counter("storefront.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Session lifecycle hooks
// ──────────────────────────────────────────────────

// OnSessionCreated implements plugin.OnSessionCreated.
func (m *MetricsExtension) OnSessionCreated(_ context.Context, _ interface{}) error {
	m.SessionCreated.Inc()
	return nil
}

// OnSessionCompleted implements plugin.OnSessionCompleted.
func (m *MetricsExtension) OnSessionCompleted(_ context.Context, _ interface{}) error {
	m.SessionCompleted.Inc()
	return nil
}

// OnSessionCanceled implements plugin.OnSessionCanceled.
func (m *MetricsExtension) OnSessionCanceled(_ context.Context, _ interface{}) error {
	m.SessionCanceled.Inc()
	return nil
}

// OnSessionExpired implements plugin.OnSessionExpired.
func (m *MetricsExtension) OnSessionExpired(_ context.Context, _ interface{}) error {
	m.SessionExpired.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Payment hooks
// ──────────────────────────────────────────────────

// OnPaymentVerified implements plugin.OnPaymentVerified.
func (m *MetricsExtension) OnPaymentVerified(_ context.Context, _, _ interface{}) error {
	m.PaymentVerified.Inc()
	return nil
}

// OnPaymentRejected implements plugin.OnPaymentRejected.
func (m *MetricsExtension) OnPaymentRejected(_ context.Context, _ interface{}, _ error) error {
	m.PaymentRejected.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnAllocationFailed implements plugin.OnAllocationFailed.
func (m *MetricsExtension) OnAllocationFailed(_ context.Context, _ interface{}, _ int) error {
	m.AllocationFailed.Inc()
	return nil
}

// OnFulfillment implements plugin.OnFulfillment.
func (m *MetricsExtension) OnFulfillment(_ context.Context, _ string, items []interface{}) error {
	m.ItemsFulfilled.Add(float64(len(items)))
	return nil
}

// OnReplacement implements plugin.OnReplacement.
func (m *MetricsExtension) OnReplacement(_ context.Context, _ string, items []interface{}) error {
	m.ItemsReplaced.Add(float64(len(items)))
	return nil
}

// OnItemsImported implements plugin.OnItemsImported.
func (m *MetricsExtension) OnItemsImported(_ context.Context, count int) error {
	m.ItemsImported.Add(float64(count))
	m.ImportBatchSize.Observe(float64(count))
	return nil
}

// ──────────────────────────────────────────────────
// Pricing and finance hooks
// ──────────────────────────────────────────────────

// OnTierChanged implements plugin.OnTierChanged.
func (m *MetricsExtension) OnTierChanged(_ context.Context, _ int) error {
	m.TierChanged.Inc()
	return nil
}

// OnEntryAppended implements plugin.OnEntryAppended.
func (m *MetricsExtension) OnEntryAppended(_ context.Context, _ interface{}) error {
	m.EntryAppended.Inc()
	return nil
}
