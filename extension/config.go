package extension

import "time"

// Config holds the Storefront extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.storefront" or "storefront" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for storefront routes (default: "/storefront").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// SessionTTL is how long a pending checkout session stays payable
	// before the sweeper cancels it (default: 15m).
	SessionTTL time.Duration `json:"session_ttl" mapstructure:"session_ttl" yaml:"session_ttl"`

	// SweepInterval is how frequently the expired-session sweeper runs
	// (default: 1m).
	SweepInterval time.Duration `json:"sweep_interval" mapstructure:"sweep_interval" yaml:"sweep_interval"`

	// Currency is the ISO currency code quotes are issued in (default: "usd").
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// GroveDriver selects the store backend to build around an injected
	// grove.DB: "postgres", "sqlite", or "mongo". Ignored unless a grove.DB
	// was provided via WithGroveDB.
	GroveDriver string `json:"grove_driver" mapstructure:"grove_driver" yaml:"grove_driver"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SessionTTL:    15 * time.Minute,
		SweepInterval: time.Minute,
		Currency:      "usd",
	}
}
