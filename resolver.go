package steward

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/steward/resource"
)

// HierarchyResolver maps a resource to its ordered scope chain within a
// tenant. An empty chain is the only failure signal: it covers not-found,
// cross-tenant references, and inconsistent parent chains alike, and
// callers always deny on it. Store I/O failures are returned as errors and
// must never be interpreted as a decision.
type HierarchyResolver interface {
	Resolve(ctx context.Context, scopeType ScopeType, resourceID, tenantID string) (ScopeChain, error)
}

// NewHierarchyResolver returns a resolver backed by the given resource store.
func NewHierarchyResolver(resources resource.Store) HierarchyResolver {
	return &storeResolver{resources: resources}
}

type storeResolver struct {
	resources resource.Store
}

func (r *storeResolver) Resolve(ctx context.Context, scopeType ScopeType, resourceID, tenantID string) (ScopeChain, error) {
	if tenantID == "" {
		return nil, nil
	}

	switch scopeType {
	case ScopeOrg:
		// The org id is the tenant id itself; no store lookup.
		if resourceID != "" && resourceID != tenantID {
			return nil, nil
		}
		return ScopeChain{{Type: ScopeOrg, ID: tenantID}}, nil

	case ScopeProperty:
		anc, err := r.ancestors(ctx, scopeType, resourceID)
		if err != nil || anc == nil {
			return nil, err
		}
		if anc.OrgID != tenantID {
			return nil, nil
		}
		return ScopeChain{
			{Type: ScopeProperty, ID: resourceID},
			{Type: ScopeOrg, ID: tenantID},
		}, nil

	case ScopeUnit:
		anc, err := r.ancestors(ctx, scopeType, resourceID)
		if err != nil || anc == nil {
			return nil, err
		}
		if anc.OrgID != tenantID || anc.PropertyID == "" {
			return nil, nil
		}
		return ScopeChain{
			{Type: ScopeUnit, ID: resourceID},
			{Type: ScopeProperty, ID: anc.PropertyID},
			{Type: ScopeOrg, ID: tenantID},
		}, nil

	case ScopeAsset:
		anc, err := r.ancestors(ctx, scopeType, resourceID)
		if err != nil || anc == nil {
			return nil, err
		}
		if anc.OrgID != tenantID || anc.PropertyID == "" {
			return nil, nil
		}
		chain := ScopeChain{{Type: ScopeAsset, ID: resourceID}}
		// Assets hang off a unit or directly off a property.
		if anc.UnitID != "" {
			chain = append(chain, Scope{Type: ScopeUnit, ID: anc.UnitID})
		}
		chain = append(chain,
			Scope{Type: ScopeProperty, ID: anc.PropertyID},
			Scope{Type: ScopeOrg, ID: tenantID},
		)
		return chain, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScopeType, scopeType)
	}
}

// ancestors loads the parent chain, folding not-found (including
// cross-tenant and inconsistent rows) into a nil result so the caller
// returns an empty chain. Other store errors propagate.
func (r *storeResolver) ancestors(ctx context.Context, scopeType ScopeType, resourceID string) (*resource.Ancestry, error) {
	if resourceID == "" {
		return nil, nil
	}
	anc, err := r.resources.FindAncestors(ctx, string(scopeType), resourceID)
	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("steward: resolve %s %s: %w", scopeType, resourceID, err)
	}
	return anc, nil
}
