package extension

import (
	"log/slog"

	"github.com/xraph/steward"
	"github.com/xraph/steward/store"
)

// ExtOption configures the Steward Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.stewardOpts = append(e.stewardOpts, steward.WithStore(s))
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithEngineOptions adds engine-level options.
func WithEngineOptions(opts ...steward.Option) ExtOption {
	return func(e *Extension) {
		e.stewardOpts = append(e.stewardOpts, opts...)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithNotifyDSN enables the cross-process invalidation bridge.
func WithNotifyDSN(dsn string) ExtOption {
	return func(e *Extension) {
		e.config.NotifyDSN = dsn
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
