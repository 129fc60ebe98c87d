package steward

import (
	"context"
	"fmt"

	"github.com/xraph/steward/event"
	"github.com/xraph/steward/id"
)

// Invalidation helpers. Callers invoke these after the corresponding write
// has committed; publishing before commit would let a concurrent request
// recompute from the old state and re-cache it.

// PublishInvalidation pushes an eviction onto the bus. Delete paths that
// must collect principals before the rows disappear publish through this
// once the delete has committed.
func (e *Engine) PublishInvalidation(ctx context.Context, mutation event.Mutation, tenantID string, principalIDs ...string) {
	e.bus.Publish(ctx, event.Invalidation{
		Mutation:     mutation,
		TenantID:     tenantID,
		PrincipalIDs: principalIDs,
	})
}

// PolicyPrincipals lists the principals holding an assignment that
// references the policy.
func (e *Engine) PolicyPrincipals(ctx context.Context, policyID id.PolicyID) ([]string, error) {
	assignments, err := e.store.ListAssignmentsByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("steward: list assignments for policy: %w", err)
	}

	seen := make(map[id.MembershipID]struct{}, len(assignments))
	var principals []string
	for _, a := range assignments {
		if _, ok := seen[a.MembershipID]; ok {
			continue
		}
		seen[a.MembershipID] = struct{}{}
		m, err := e.store.GetMembership(ctx, a.MembershipID)
		if err != nil {
			return nil, fmt.Errorf("steward: load membership %s: %w", a.MembershipID, err)
		}
		if m.PrincipalID != "" {
			principals = append(principals, m.PrincipalID)
		}
	}
	return principals, nil
}

// InvalidatePolicy evicts every principal holding an assignment that
// references the policy. Assignments carrying overrides are unaffected by
// a policy edit but evicting them too is harmless.
func (e *Engine) InvalidatePolicy(ctx context.Context, policyID id.PolicyID) error {
	principals, err := e.PolicyPrincipals(ctx, policyID)
	if err != nil {
		return err
	}
	e.PublishInvalidation(ctx, event.MutationPolicyUpdated, "", principals...)
	return nil
}

// InvalidateMembership evicts the single principal behind a membership,
// after an assignment or scope binding change. Pending memberships have no
// principal and nothing to evict.
func (e *Engine) InvalidateMembership(ctx context.Context, membershipID id.MembershipID, mutation event.Mutation) error {
	m, err := e.store.GetMembership(ctx, membershipID)
	if err != nil {
		return fmt.Errorf("steward: load membership %s: %w", membershipID, err)
	}
	if m.PrincipalID == "" {
		return nil
	}
	e.bus.Publish(ctx, event.Invalidation{
		Mutation:     mutation,
		TenantID:     m.TenantID,
		PrincipalIDs: []string{m.PrincipalID},
	})
	return nil
}

// TemplatePrincipals lists the principals whose membership references the
// template.
func (e *Engine) TemplatePrincipals(ctx context.Context, templateID id.TemplateID) ([]string, error) {
	memberships, err := e.store.ListMembershipsByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("steward: list memberships for template: %w", err)
	}

	var principals []string
	for _, m := range memberships {
		if m.PrincipalID != "" {
			principals = append(principals, m.PrincipalID)
		}
	}
	return principals, nil
}

// InvalidateTemplate evicts every principal whose membership was created
// from the template.
func (e *Engine) InvalidateTemplate(ctx context.Context, templateID id.TemplateID) error {
	principals, err := e.TemplatePrincipals(ctx, templateID)
	if err != nil {
		return err
	}
	e.PublishInvalidation(ctx, event.MutationTemplateUpdated, "", principals...)
	return nil
}
