// Package event carries the cache invalidation channel: mutations that can
// change a principal's effective grants publish an Invalidation naming the
// affected principals, and subscribers (the grant cache, cross-process
// bridges) react.
//
// Publication happens after the mutation's storage transaction commits,
// never before: an invalidation must not fire for a write that may still
// roll back.
package event

import (
	"context"
	"log/slog"
	"sync"
)

// Mutation identifies the kind of change that triggered an invalidation.
type Mutation string

const (
	// MutationPolicyUpdated fires when a named policy is edited or deleted.
	MutationPolicyUpdated Mutation = "policy_updated"

	// MutationAssignmentChanged fires when a policy assignment is created
	// or removed.
	MutationAssignmentChanged Mutation = "assignment_changed"

	// MutationBindingChanged fires when a membership's scope bindings change.
	MutationBindingChanged Mutation = "binding_changed"

	// MutationTemplateUpdated fires when a role template or its items change.
	MutationTemplateUpdated Mutation = "template_updated"

	// MutationMembershipChanged fires when a membership is created, linked
	// to a principal, or removed.
	MutationMembershipChanged Mutation = "membership_changed"
)

// Invalidation names the principals whose cached grants may now be stale.
type Invalidation struct {
	Mutation     Mutation `json:"mutation"`
	TenantID     string   `json:"tenant_id,omitempty"`
	PrincipalIDs []string `json:"principal_ids"`
}

// Handler consumes invalidations. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(ctx context.Context, inv Invalidation)

// Bus is a synchronous fan-out of invalidations to registered handlers.
// Subscribe-then-publish is safe from concurrent goroutines.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *slog.Logger
}

// NewBus creates an invalidation bus with the given logger.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers a handler. Handlers are notified in registration order.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish fans the invalidation out to every handler. Publishing the same
// invalidation twice is harmless: eviction is idempotent and the next
// request recomputes either way.
func (b *Bus) Publish(ctx context.Context, inv Invalidation) {
	if len(inv.PrincipalIDs) == 0 {
		return
	}
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	b.logger.Debug("grant invalidation",
		"mutation", string(inv.Mutation),
		"tenant_id", inv.TenantID,
		"principals", len(inv.PrincipalIDs),
	)
	for _, h := range handlers {
		h(ctx, inv)
	}
}

// Channel registers a buffered channel subscriber and returns the receive
// side. When the buffer is full the invalidation is dropped for this
// subscriber; channel consumers are best-effort bridges, the synchronous
// handlers carry correctness.
func (b *Bus) Channel(buffer int) <-chan Invalidation {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Invalidation, buffer)
	b.Subscribe(func(_ context.Context, inv Invalidation) {
		select {
		case ch <- inv:
		default:
			b.logger.Warn("invalidation channel full, dropping event",
				"mutation", string(inv.Mutation))
		}
	})
	return ch
}
