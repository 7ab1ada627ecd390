// Package extension provides the Forge extension adapter for Storefront.
//
// It implements the forge.Extension interface to integrate Storefront
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.storefront" or
// "storefront" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	storefront "github.com/xraph/storefront"
	"github.com/xraph/storefront/store"
	"github.com/xraph/storefront/store/memory"
	"github.com/xraph/storefront/store/mongo"
	"github.com/xraph/storefront/store/postgres"
	"github.com/xraph/storefront/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "storefront"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Checkout and inventory allocation engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Storefront as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *storefront.Engine
	store      store.Store
	groveDB    *grove.DB
	engineOpts []storefront.Option
}

// New creates a new Storefront Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Storefront instance.
// This is nil until Register is called.
func (e *Extension) Engine() *storefront.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the checkout engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.resolveStore(); err != nil {
		return err
	}

	// Build engine options from resolved config.
	opts := e.buildEngineOpts()

	eng := storefront.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*storefront.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("storefront: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("storefront: store not initialized")
	}
	return e.store.Ping(ctx)
}

// resolveStore picks the storage backend. A programmatic store wins; a
// grove.DB builds the driver named by config; otherwise memory.
func (e *Extension) resolveStore() error {
	if e.store != nil {
		return nil
	}

	if e.groveDB != nil {
		switch e.config.GroveDriver {
		case "postgres", "pg":
			e.store = postgres.New(e.groveDB)
		case "sqlite":
			e.store = sqlite.New(e.groveDB)
		case "mongo", "mongodb":
			e.store = mongo.New(e.groveDB)
		default:
			return fmt.Errorf("storefront: unknown grove driver %q", e.config.GroveDriver)
		}
		return nil
	}

	e.store = memory.New()
	return nil
}

// buildEngineOpts constructs storefront.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []storefront.Option {
	opts := make([]storefront.Option, 0, len(e.engineOpts)+3)

	if e.config.SessionTTL > 0 {
		opts = append(opts, storefront.WithSessionTTL(e.config.SessionTTL))
	}
	if e.config.SweepInterval > 0 {
		opts = append(opts, storefront.WithSweepInterval(e.config.SweepInterval))
	}
	if e.config.Currency != "" {
		opts = append(opts, storefront.WithCurrency(e.config.Currency))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("storefront: configuration is required but not found in config files; " +
				"ensure 'extensions.storefront' or 'storefront' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("storefront: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("session_ttl", e.config.SessionTTL),
		forge.F("sweep_interval", e.config.SweepInterval),
		forge.F("currency", e.config.Currency),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.storefront" first (namespaced pattern).
	if cm.IsSet("extensions.storefront") {
		if err := cm.Bind("extensions.storefront", &cfg); err == nil {
			e.Logger().Debug("storefront: loaded config from file",
				forge.F("key", "extensions.storefront"),
			)
			return cfg, true
		}
		e.Logger().Warn("storefront: failed to bind extensions.storefront config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "storefront" key.
	if cm.IsSet("storefront") {
		if err := cm.Bind("storefront", &cfg); err == nil {
			e.Logger().Debug("storefront: loaded config from file",
				forge.F("key", "storefront"),
			)
			return cfg, true
		}
		e.Logger().Warn("storefront: failed to bind storefront config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = defaults.SessionTTL
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" && programmaticConfig.BasePath != "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}
	if yamlConfig.Currency == "" && programmaticConfig.Currency != "" {
		yamlConfig.Currency = programmaticConfig.Currency
	}
	if yamlConfig.GroveDriver == "" && programmaticConfig.GroveDriver != "" {
		yamlConfig.GroveDriver = programmaticConfig.GroveDriver
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.SessionTTL == 0 && programmaticConfig.SessionTTL != 0 {
		yamlConfig.SessionTTL = programmaticConfig.SessionTTL
	}
	if yamlConfig.SweepInterval == 0 && programmaticConfig.SweepInterval != 0 {
		yamlConfig.SweepInterval = programmaticConfig.SweepInterval
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
