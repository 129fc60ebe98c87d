package steward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/event"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/membership"
	"github.com/xraph/steward/store"
)

// Engine is the authorization decision service. It materializes grants,
// resolves scope chains, and answers "does this principal have action X on
// domain Y for resource Z?".
type Engine struct {
	store        store.Store
	resolver     HierarchyResolver
	aggregator   *Aggregator
	materializer *Materializer
	cache        Cache
	bus          *event.Bus
	logger       *slog.Logger
	config       Config
}

// NewEngine creates a new Steward engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("steward: store is required")
	}
	if e.resolver == nil {
		e.resolver = NewHierarchyResolver(e.store)
	}
	if e.bus == nil {
		e.bus = event.NewBus(e.logger)
	}
	if !e.config.cacheEnabled() {
		e.cache = nil
	}

	e.aggregator = NewAggregator(e.store)
	e.materializer = NewMaterializer(e.aggregator, e.cache, e.logger)

	// The cache consumes the invalidation channel: drop the named
	// principals wholesale, let the next request recompute.
	if e.cache != nil {
		cache := e.cache
		e.bus.Subscribe(func(ctx context.Context, inv event.Invalidation) {
			cache.Invalidate(ctx, inv.PrincipalIDs...)
		})
	}

	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Events returns the invalidation bus.
func (e *Engine) Events() *event.Bus { return e.bus }

// Materializer returns the access token materializer.
func (e *Engine) Materializer() *Materializer { return e.materializer }

// Resolver returns the hierarchy resolver.
func (e *Engine) Resolver() HierarchyResolver { return e.resolver }

// EnsureBinding creates the scope binding unless an identical one already
// exists for the membership. It returns the stored row and whether a new
// row was written; callers publish a binding invalidation only on an
// actual write. The duplicate check keeps backends without a uniqueness
// constraint from accumulating identical rows.
func (e *Engine) EnsureBinding(ctx context.Context, b *membership.ScopeBinding) (*membership.ScopeBinding, bool, error) {
	exists, err := e.store.HasBinding(ctx, b.MembershipID, b.ScopeType, b.ScopeID)
	if err != nil {
		return nil, false, fmt.Errorf("steward: check binding: %w", err)
	}
	if exists {
		bindings, err := e.store.ListBindings(ctx, b.MembershipID)
		if err != nil {
			return nil, false, fmt.Errorf("steward: list bindings: %w", err)
		}
		for _, existing := range bindings {
			if existing.ScopeType == b.ScopeType && existing.ScopeID == b.ScopeID {
				return existing, false, nil
			}
		}
	}
	if err := e.store.CreateBinding(ctx, b); err != nil {
		return nil, false, fmt.Errorf("steward: create binding: %w", err)
	}
	return b, true, nil
}

// InvalidateLocal evicts principals from this node's cache without
// publishing to the bus. Cross-process bridges apply remote invalidations
// through this so they are not re-broadcast.
func (e *Engine) InvalidateLocal(ctx context.Context, principalIDs ...string) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, principalIDs...)
	}
}

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(_ context.Context) error { return nil }

// Authorize decides whether the principal holds the required action on the
// domain for the given resource. Grants come from the request context when
// the materializer already attached them; otherwise they are materialized
// here. Denial is a false return, never an error; errors mean the decision
// could not be computed and must fail the request.
func (e *Engine) Authorize(ctx context.Context, principal Principal, required Mask, domain Domain, scopeType ScopeType, resourceID, tenantID string) (bool, error) {
	start := time.Now()

	grants, ok := GrantsFromContext(ctx)
	if !ok && !principal.GlobalAdmin {
		var err error
		grants, err = e.materializer.Materialize(ctx, Credential{Principal: principal})
		if err != nil {
			return false, err
		}
	}

	allowed, err := e.AuthorizeGrants(ctx, grants, principal, required, domain, scopeType, resourceID, tenantID)
	if err != nil {
		return false, err
	}

	if e.config.decisionLogEnabled() {
		e.recordDecision(ctx, principal, required, domain, scopeType, resourceID, tenantID, allowed, time.Since(start))
	}
	return allowed, nil
}

// AuthorizeGrants is the pure decision: it evaluates an explicit grant set
// against the resource's scope chain. The walk runs most to least specific
// and the first entry whose domain mask satisfies the action wins. An entry
// that is present but insufficient does not stop the walk; a missing entry
// at a level is simply skipped. There is no aggregation across levels.
func (e *Engine) AuthorizeGrants(ctx context.Context, grants AccessGrantSet, principal Principal, required Mask, domain Domain, scopeType ScopeType, resourceID, tenantID string) (bool, error) {
	if principal.GlobalAdmin {
		return true, nil
	}
	if len(grants) == 0 {
		return false, nil
	}

	chain, err := e.resolver.Resolve(ctx, scopeType, resourceID, tenantID)
	if err != nil {
		return false, err
	}
	if len(chain) == 0 {
		// Not found and cross-tenant look the same from here.
		return false, nil
	}

	for _, s := range chain {
		entry, ok := grants.Find(tenantID, s.Type, s.ID)
		if !ok {
			continue
		}
		if entry.Permissions[domain].Has(required) {
			return true, nil
		}
	}
	return false, nil
}

// Enforce returns ErrAccessDenied when the authorization check is denied.
// The error carries no detail about which scope or bit was missing.
func (e *Engine) Enforce(ctx context.Context, principal Principal, required Mask, domain Domain, scopeType ScopeType, resourceID, tenantID string) error {
	allowed, err := e.Authorize(ctx, principal, required, domain, scopeType, resourceID, tenantID)
	if err != nil {
		return fmt.Errorf("steward: authorize: %w", err)
	}
	if !allowed {
		return ErrAccessDenied
	}
	return nil
}

func (e *Engine) recordDecision(ctx context.Context, principal Principal, required Mask, domain Domain, scopeType ScopeType, resourceID, tenantID string, allowed bool, elapsed time.Duration) {
	entry := &decisionlog.Entry{
		ID:          id.NewDecisionLogID(),
		TenantID:    tenantID,
		PrincipalID: principal.ID,
		Action:      required.Letters(),
		Domain:      string(domain),
		ScopeType:   string(scopeType),
		ResourceID:  resourceID,
		Allowed:     allowed,
		EvalTimeNs:  elapsed.Nanoseconds(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.store.CreateEntry(ctx, entry); err != nil {
		e.logger.Warn("decision log write failed", "error", err)
	}
}
