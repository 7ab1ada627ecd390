package extension

import (
	"time"

	"github.com/xraph/grove"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/plugin"
	"github.com/xraph/storefront/store"
	"github.com/xraph/storefront/verifier"
)

// Option configures the Storefront Forge extension.
type Option func(*Extension)

// WithStore sets the store for the checkout engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a storefront.Option through to the underlying engine.
func WithEngineOption(opt storefront.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a storefront plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, storefront.WithPlugin(p))
	}
}

// WithVerifier sets the deposit verifier for payment checks.
func WithVerifier(v verifier.Verifier) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, storefront.WithVerifier(v))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP route registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for storefront routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithSessionTTL sets how long a pending checkout session stays payable.
func WithSessionTTL(d time.Duration) Option {
	return func(e *Extension) { e.config.SessionTTL = d }
}

// WithSweepInterval sets how frequently the expired-session sweeper runs.
func WithSweepInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.SweepInterval = d }
}

// WithCurrency sets the ISO currency code quotes are issued in.
func WithCurrency(code string) Option {
	return func(e *Extension) { e.config.Currency = code }
}

// WithGroveDB provides a grove.DB to build the store around. The driver
// argument selects the backend: "postgres", "sqlite", or "mongo".
func WithGroveDB(db *grove.DB, driver string) Option {
	return func(e *Extension) {
		e.groveDB = db
		e.config.GroveDriver = driver
	}
}
