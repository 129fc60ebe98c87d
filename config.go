package steward

// Config holds configuration for the Steward engine.
type Config struct {
	// EnableDecisionLog records every authorization decision to the
	// decision log store. Defaults to false; decisions are hot-path.
	EnableDecisionLog *bool `json:"enable_decision_log,omitempty"`

	// EnableCache controls whether an injected grant cache is used. The
	// engine never constructs a cache on its own; one arrives through
	// WithCache (the Forge extension wires the in-memory cache). Unset or
	// true keeps the injected cache, false discards it.
	EnableCache *bool `json:"enable_cache,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}

func (c Config) decisionLogEnabled() bool { return c.EnableDecisionLog != nil && *c.EnableDecisionLog }
func (c Config) cacheEnabled() bool       { return c.EnableCache == nil || *c.EnableCache }
