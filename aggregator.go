package steward

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/steward/membership"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/store"
)

// Aggregator computes effective per-scope grants for a membership by
// merging policy assignments and role-template declarations. It is never
// invoked for global administrators; they bypass grant resolution entirely.
type Aggregator struct {
	store store.Store
}

// NewAggregator returns an aggregator over the given store.
func NewAggregator(s store.Store) *Aggregator {
	return &Aggregator{store: s}
}

type scopeKey struct {
	tenantID  string
	scopeType ScopeType
	scopeID   string
}

// grantBuilder accumulates permission buckets keyed by (tenant, scope) in
// first-seen order so the resulting grant set is deterministic and holds at
// most one entry per distinct key.
type grantBuilder struct {
	order   []scopeKey
	buckets map[scopeKey]PermissionMap
}

func newGrantBuilder() *grantBuilder {
	return &grantBuilder{buckets: make(map[scopeKey]PermissionMap)}
}

// merge unions perms into the bucket for (tenantID, scopeType, scopeID).
// Multiple sources at the same scope OR together, whether they come from
// one membership or from sibling memberships of the same tenant; a grant
// from one source is never lost to a more restrictive sibling.
func (b *grantBuilder) merge(tenantID string, scopeType ScopeType, scopeID string, perms PermissionMap) {
	if len(perms) == 0 {
		return
	}
	k := scopeKey{tenantID: tenantID, scopeType: scopeType, scopeID: scopeID}
	if _, ok := b.buckets[k]; !ok {
		b.order = append(b.order, k)
	}
	b.buckets[k] = b.buckets[k].Merge(perms)
}

func (b *grantBuilder) grants() AccessGrantSet {
	if len(b.order) == 0 {
		return nil
	}
	out := make(AccessGrantSet, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, AccessEntry{
			TenantID:    k.tenantID,
			ScopeType:   k.scopeType,
			ScopeID:     k.scopeID,
			Permissions: b.buckets[k],
		})
	}
	return out
}

// GrantsForMembership computes the flattened grant set for one membership:
// policy assignments first, then template declarations, unioned per scope.
func (a *Aggregator) GrantsForMembership(ctx context.Context, m *membership.Membership) (AccessGrantSet, error) {
	b := newGrantBuilder()
	if err := a.collect(ctx, m, b); err != nil {
		return nil, err
	}
	return b.grants(), nil
}

// GrantsForPrincipal computes grants across every membership the principal
// holds. All memberships feed one builder, so two memberships in the same
// tenant union at each scope rather than producing duplicate entries that
// would shadow each other. Pending invites carry no principal and never
// contribute.
func (a *Aggregator) GrantsForPrincipal(ctx context.Context, principalID string) (AccessGrantSet, error) {
	if principalID == "" {
		return nil, nil
	}
	memberships, err := a.store.ListMembershipsForPrincipal(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("steward: list memberships for %s: %w", principalID, err)
	}

	b := newGrantBuilder()
	for _, m := range memberships {
		if err := a.collect(ctx, m, b); err != nil {
			return nil, err
		}
	}
	return b.grants(), nil
}

func (a *Aggregator) collect(ctx context.Context, m *membership.Membership, b *grantBuilder) error {
	if err := a.mergeAssignments(ctx, m, b); err != nil {
		return err
	}
	return a.mergeTemplate(ctx, m, b)
}

func (a *Aggregator) mergeAssignments(ctx context.Context, m *membership.Membership, b *grantBuilder) error {
	assignments, err := a.store.ListAssignmentsByMembership(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("steward: list assignments for %s: %w", m.ID, err)
	}

	for _, asgn := range assignments {
		scopeType := ScopeType(asgn.ScopeType)
		if !ValidScopeType(scopeType) {
			continue
		}

		// Overrides, when present, fully replace the policy's permissions
		// for this assignment. No domain-by-domain merge between the two.
		if len(asgn.Overrides) > 0 {
			b.merge(m.TenantID, scopeType, asgn.ResourceID, DecodePermissions(asgn.Overrides))
			continue
		}
		if asgn.PolicyID == nil {
			continue
		}

		p, err := a.store.GetPolicy(ctx, *asgn.PolicyID)
		if err != nil {
			// A dangling policy reference contributes nothing; store
			// failures abort the computation.
			if errors.Is(err, policy.ErrNotFound) {
				continue
			}
			return fmt.Errorf("steward: load policy for assignment %s: %w", asgn.ID, err)
		}
		b.merge(m.TenantID, scopeType, asgn.ResourceID, DecodePermissions(p.Permissions))
	}
	return nil
}

func (a *Aggregator) mergeTemplate(ctx context.Context, m *membership.Membership, b *grantBuilder) error {
	if m.TemplateID == nil {
		return nil
	}

	items, err := a.store.ListItems(ctx, *m.TemplateID)
	if err != nil {
		return fmt.Errorf("steward: list template items for %s: %w", m.TemplateID, err)
	}
	if len(items) == 0 {
		return nil
	}

	bindings, err := a.store.ListBindings(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("steward: list bindings for %s: %w", m.ID, err)
	}

	for _, item := range items {
		scopeType := ScopeType(item.ScopeType)
		if !ValidScopeType(scopeType) {
			continue
		}
		perms := DecodePermissions(item.Permissions)
		if len(perms) == 0 {
			continue
		}

		// ORG-level declarations activate unconditionally; narrower levels
		// activate at each resource the membership is bound to.
		if scopeType == ScopeOrg {
			b.merge(m.TenantID, ScopeOrg, m.TenantID, perms)
			continue
		}
		for _, bind := range bindings {
			if ScopeType(bind.ScopeType) == scopeType {
				b.merge(m.TenantID, scopeType, bind.ScopeID, perms)
			}
		}
	}
	return nil
}
