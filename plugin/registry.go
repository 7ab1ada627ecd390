package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onSessionCreated   []OnSessionCreated
	onSessionCompleted []OnSessionCompleted
	onSessionCanceled  []OnSessionCanceled
	onSessionExpired   []OnSessionExpired
	onPaymentVerified  []OnPaymentVerified
	onPaymentRejected  []OnPaymentRejected
	onAllocationFailed []OnAllocationFailed
	onFulfillment      []OnFulfillment
	onReplacement      []OnReplacement
	onItemsImported    []OnItemsImported
	onTierChanged      []OnTierChanged
	onEntryAppended    []OnEntryAppended
	verifierProviders  []VerifierPlugin
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnSessionCreated); ok {
		r.onSessionCreated = append(r.onSessionCreated, v)
	}
	if v, ok := p.(OnSessionCompleted); ok {
		r.onSessionCompleted = append(r.onSessionCompleted, v)
	}
	if v, ok := p.(OnSessionCanceled); ok {
		r.onSessionCanceled = append(r.onSessionCanceled, v)
	}
	if v, ok := p.(OnSessionExpired); ok {
		r.onSessionExpired = append(r.onSessionExpired, v)
	}
	if v, ok := p.(OnPaymentVerified); ok {
		r.onPaymentVerified = append(r.onPaymentVerified, v)
	}
	if v, ok := p.(OnPaymentRejected); ok {
		r.onPaymentRejected = append(r.onPaymentRejected, v)
	}
	if v, ok := p.(OnAllocationFailed); ok {
		r.onAllocationFailed = append(r.onAllocationFailed, v)
	}
	if v, ok := p.(OnFulfillment); ok {
		r.onFulfillment = append(r.onFulfillment, v)
	}
	if v, ok := p.(OnReplacement); ok {
		r.onReplacement = append(r.onReplacement, v)
	}
	if v, ok := p.(OnItemsImported); ok {
		r.onItemsImported = append(r.onItemsImported, v)
	}
	if v, ok := p.(OnTierChanged); ok {
		r.onTierChanged = append(r.onTierChanged, v)
	}
	if v, ok := p.(OnEntryAppended); ok {
		r.onEntryAppended = append(r.onEntryAppended, v)
	}
	if v, ok := p.(VerifierPlugin); ok {
		r.verifierProviders = append(r.verifierProviders, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnSessionCreated)(nil)).Elem(), "OnSessionCreated")
	checkInterface(reflect.TypeOf((*OnSessionCompleted)(nil)).Elem(), "OnSessionCompleted")
	checkInterface(reflect.TypeOf((*OnPaymentVerified)(nil)).Elem(), "OnPaymentVerified")
	checkInterface(reflect.TypeOf((*OnAllocationFailed)(nil)).Elem(), "OnAllocationFailed")
	checkInterface(reflect.TypeOf((*OnFulfillment)(nil)).Elem(), "OnFulfillment")
	checkInterface(reflect.TypeOf((*OnEntryAppended)(nil)).Elem(), "OnEntryAppended")
	checkInterface(reflect.TypeOf((*VerifierPlugin)(nil)).Elem(), "VerifierPlugin")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionCreated emits a session created event.
func (r *Registry) EmitSessionCreated(ctx context.Context, sess interface{}) {
	r.mu.RLock()
	plugins := r.onSessionCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionCreated(ctx, sess)
		}); err != nil {
			r.logger.Warn("plugin OnSessionCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionCompleted emits a session completed event.
func (r *Registry) EmitSessionCompleted(ctx context.Context, sess interface{}) {
	r.mu.RLock()
	plugins := r.onSessionCompleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionCompleted(ctx, sess)
		}); err != nil {
			r.logger.Warn("plugin OnSessionCompleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionCanceled emits a session canceled event.
func (r *Registry) EmitSessionCanceled(ctx context.Context, sess interface{}) {
	r.mu.RLock()
	plugins := r.onSessionCanceled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionCanceled(ctx, sess)
		}); err != nil {
			r.logger.Warn("plugin OnSessionCanceled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionExpired emits a session expired event.
func (r *Registry) EmitSessionExpired(ctx context.Context, sess interface{}) {
	r.mu.RLock()
	plugins := r.onSessionExpired
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionExpired(ctx, sess)
		}); err != nil {
			r.logger.Warn("plugin OnSessionExpired failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentVerified emits a payment verified event.
func (r *Registry) EmitPaymentVerified(ctx context.Context, sess, deposit interface{}) {
	r.mu.RLock()
	plugins := r.onPaymentVerified
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentVerified(ctx, sess, deposit)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentVerified failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentRejected emits a payment rejected event.
func (r *Registry) EmitPaymentRejected(ctx context.Context, sess interface{}, cause error) {
	r.mu.RLock()
	plugins := r.onPaymentRejected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentRejected(ctx, sess, cause)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentRejected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitAllocationFailed emits an allocation failed event.
func (r *Registry) EmitAllocationFailed(ctx context.Context, sess interface{}, want int) {
	r.mu.RLock()
	plugins := r.onAllocationFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnAllocationFailed(ctx, sess, want)
		}); err != nil {
			r.logger.Warn("plugin OnAllocationFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFulfillment emits a fulfillment event.
func (r *Registry) EmitFulfillment(ctx context.Context, clientID string, items []interface{}) {
	r.mu.RLock()
	plugins := r.onFulfillment
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFulfillment(ctx, clientID, items)
		}); err != nil {
			r.logger.Warn("plugin OnFulfillment failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitReplacement emits a replacement event.
func (r *Registry) EmitReplacement(ctx context.Context, clientID string, items []interface{}) {
	r.mu.RLock()
	plugins := r.onReplacement
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnReplacement(ctx, clientID, items)
		}); err != nil {
			r.logger.Warn("plugin OnReplacement failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitItemsImported emits an items imported event.
func (r *Registry) EmitItemsImported(ctx context.Context, count int) {
	r.mu.RLock()
	plugins := r.onItemsImported
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnItemsImported(ctx, count)
		}); err != nil {
			r.logger.Warn("plugin OnItemsImported failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTierChanged emits a tier changed event.
func (r *Registry) EmitTierChanged(ctx context.Context, step int) {
	r.mu.RLock()
	plugins := r.onTierChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTierChanged(ctx, step)
		}); err != nil {
			r.logger.Warn("plugin OnTierChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitEntryAppended emits a finance entry appended event.
func (r *Registry) EmitEntryAppended(ctx context.Context, entry interface{}) {
	r.mu.RLock()
	plugins := r.onEntryAppended
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnEntryAppended(ctx, entry)
		}); err != nil {
			r.logger.Warn("plugin OnEntryAppended failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// GetVerifierProviders returns all registered verifier plugins.
func (r *Registry) GetVerifierProviders() []VerifierPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]VerifierPlugin, len(r.verifierProviders))
	copy(result, r.verifierProviders)
	return result
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the checkout pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
