package steward

import (
	"log/slog"

	"github.com/xraph/steward/event"
	"github.com/xraph/steward/store"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithStore sets the composite store.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithResolver sets the hierarchy resolver. Defaults to a resolver backed
// by the engine's store.
func WithResolver(r HierarchyResolver) Option { return func(e *Engine) { e.resolver = r } }

// WithCache sets the grant set cache. nil disables caching.
func WithCache(c Cache) Option { return func(e *Engine) { e.cache = c } }

// WithBus sets the invalidation bus. Defaults to a fresh local bus.
func WithBus(b *event.Bus) Option { return func(e *Engine) { e.bus = b } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }
