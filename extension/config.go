package extension

// Config holds the Steward extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.steward" or "steward" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for steward routes (default: "/steward").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set, the extension resolves this named database and auto-constructs
	// the appropriate store based on the driver type (pg/sqlite).
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// NotifyDSN enables the cross-process invalidation bridge. When set,
	// invalidations are relayed between nodes over PostgreSQL LISTEN/NOTIFY.
	NotifyDSN string `json:"notify_dsn" mapstructure:"notify_dsn" yaml:"notify_dsn"`

	// NotifyChannel overrides the LISTEN/NOTIFY channel name.
	NotifyChannel string `json:"notify_channel" mapstructure:"notify_channel" yaml:"notify_channel"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
