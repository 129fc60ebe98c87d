// Package memory provides an in-memory implementation of the Steward
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/membership"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/resource"
	"github.com/xraph/steward/template"
)

// Compile-time interface checks.
var (
	_ resource.Store    = (*Store)(nil)
	_ membership.Store  = (*Store)(nil)
	_ policy.Store      = (*Store)(nil)
	_ assignment.Store  = (*Store)(nil)
	_ template.Store    = (*Store)(nil)
	_ decisionlog.Store = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Steward entities.
type Store struct {
	mu sync.RWMutex

	properties    map[string]*resource.Property
	units         map[string]*resource.Unit
	assets        map[string]*resource.Asset
	memberships   map[string]*membership.Membership
	bindings      map[string]*membership.ScopeBinding
	policies      map[string]*policy.Policy
	assignments   map[string]*assignment.Assignment
	templates     map[string]*template.Template
	templateItems map[string][]*template.Item // templateID -> items
	decisions     map[string]*decisionlog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		properties:    make(map[string]*resource.Property),
		units:         make(map[string]*resource.Unit),
		assets:        make(map[string]*resource.Asset),
		memberships:   make(map[string]*membership.Membership),
		bindings:      make(map[string]*membership.ScopeBinding),
		policies:      make(map[string]*policy.Policy),
		assignments:   make(map[string]*assignment.Assignment),
		templates:     make(map[string]*template.Template),
		templateItems: make(map[string][]*template.Item),
		decisions:     make(map[string]*decisionlog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Resource Store
// ──────────────────────────────────────────────────

func (s *Store) FindAncestors(_ context.Context, scopeType, resourceID string) (*resource.Ancestry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch scopeType {
	case "PROPERTY":
		p, ok := s.properties[resourceID]
		if !ok {
			return nil, fmt.Errorf("property %s: %w", resourceID, resource.ErrNotFound)
		}
		return &resource.Ancestry{OrgID: p.OrgID.String(), PropertyID: resourceID}, nil

	case "UNIT":
		u, ok := s.units[resourceID]
		if !ok {
			return nil, fmt.Errorf("unit %s: %w", resourceID, resource.ErrNotFound)
		}
		p, ok := s.properties[u.PropertyID.String()]
		if !ok {
			return nil, fmt.Errorf("unit %s parent: %w", resourceID, resource.ErrNotFound)
		}
		return &resource.Ancestry{
			OrgID:      p.OrgID.String(),
			PropertyID: p.ID.String(),
			UnitID:     resourceID,
		}, nil

	case "ASSET":
		a, ok := s.assets[resourceID]
		if !ok {
			return nil, fmt.Errorf("asset %s: %w", resourceID, resource.ErrNotFound)
		}
		anc := &resource.Ancestry{AssetID: resourceID}
		switch {
		case a.UnitID != nil && a.PropertyID == nil:
			u, ok := s.units[a.UnitID.String()]
			if !ok {
				return nil, fmt.Errorf("asset %s parent: %w", resourceID, resource.ErrNotFound)
			}
			p, ok := s.properties[u.PropertyID.String()]
			if !ok {
				return nil, fmt.Errorf("asset %s parent: %w", resourceID, resource.ErrNotFound)
			}
			anc.UnitID = u.ID.String()
			anc.PropertyID = p.ID.String()
			anc.OrgID = p.OrgID.String()
		case a.PropertyID != nil && a.UnitID == nil:
			p, ok := s.properties[a.PropertyID.String()]
			if !ok {
				return nil, fmt.Errorf("asset %s parent: %w", resourceID, resource.ErrNotFound)
			}
			anc.PropertyID = p.ID.String()
			anc.OrgID = p.OrgID.String()
		default:
			// Zero or both parents set: inconsistent row.
			return nil, fmt.Errorf("asset %s: inconsistent parents: %w", resourceID, resource.ErrNotFound)
		}
		return anc, nil

	default:
		return nil, fmt.Errorf("scope type %q: %w", scopeType, resource.ErrNotFound)
	}
}

func (s *Store) CreateProperty(_ context.Context, p *resource.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties[p.ID.String()] = copyProperty(p)
	return nil
}

func (s *Store) GetProperty(_ context.Context, propID id.PropertyID) (*resource.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[propID.String()]
	if !ok {
		return nil, fmt.Errorf("property %s: %w", propID, resource.ErrNotFound)
	}
	return copyProperty(p), nil
}

func (s *Store) DeleteProperty(_ context.Context, propID id.PropertyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.properties, propID.String())
	return nil
}

func (s *Store) CreateUnit(_ context.Context, u *resource.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[u.ID.String()] = copyUnit(u)
	return nil
}

func (s *Store) GetUnit(_ context.Context, unitID id.UnitID) (*resource.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[unitID.String()]
	if !ok {
		return nil, fmt.Errorf("unit %s: %w", unitID, resource.ErrNotFound)
	}
	return copyUnit(u), nil
}

func (s *Store) DeleteUnit(_ context.Context, unitID id.UnitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.units, unitID.String())
	return nil
}

func (s *Store) CreateAsset(_ context.Context, a *resource.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[a.ID.String()] = copyAsset(a)
	return nil
}

func (s *Store) GetAsset(_ context.Context, assetID id.AssetID) (*resource.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[assetID.String()]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", assetID, resource.ErrNotFound)
	}
	return copyAsset(a), nil
}

func (s *Store) DeleteAsset(_ context.Context, assetID id.AssetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assets, assetID.String())
	return nil
}

func (s *Store) ListPropertiesByOrg(_ context.Context, orgID string) ([]*resource.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*resource.Property
	for _, p := range s.properties {
		if p.OrgID.String() == orgID {
			result = append(result, copyProperty(p))
		}
	}
	sortByID(result, func(p *resource.Property) string { return p.ID.String() })
	return result, nil
}

// ──────────────────────────────────────────────────
// Membership Store
// ──────────────────────────────────────────────────

func (s *Store) CreateMembership(_ context.Context, m *membership.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[m.ID.String()] = copyMembership(m)
	return nil
}

func (s *Store) GetMembership(_ context.Context, mbrID id.MembershipID) (*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memberships[mbrID.String()]
	if !ok {
		return nil, fmt.Errorf("membership %s: %w", mbrID, membership.ErrNotFound)
	}
	return copyMembership(m), nil
}

func (s *Store) UpdateMembership(_ context.Context, m *membership.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[m.ID.String()]; !ok {
		return fmt.Errorf("membership %s: %w", m.ID, membership.ErrNotFound)
	}
	s.memberships[m.ID.String()] = copyMembership(m)
	return nil
}

func (s *Store) DeleteMembership(_ context.Context, mbrID id.MembershipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberships, mbrID.String())
	for k, b := range s.bindings {
		if b.MembershipID == mbrID {
			delete(s.bindings, k)
		}
	}
	return nil
}

func (s *Store) ListMemberships(_ context.Context, filter *membership.ListFilter) ([]*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*membership.Membership, 0, len(s.memberships))
	for _, m := range s.memberships {
		if filter != nil {
			if filter.TenantID != "" && m.TenantID != filter.TenantID {
				continue
			}
			if filter.PrincipalID != "" && m.PrincipalID != filter.PrincipalID {
				continue
			}
			if filter.Pending != nil && m.Pending() != *filter.Pending {
				continue
			}
		}
		result = append(result, copyMembership(m))
	}
	sortByID(result, func(m *membership.Membership) string { return m.ID.String() })
	return applyPagination(result, paginationOptsMbr(filter)), nil
}

func (s *Store) CountMemberships(ctx context.Context, filter *membership.ListFilter) (int64, error) {
	list, err := s.ListMemberships(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListMembershipsForPrincipal(_ context.Context, principalID string) ([]*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*membership.Membership
	for _, m := range s.memberships {
		if m.PrincipalID != "" && m.PrincipalID == principalID {
			result = append(result, copyMembership(m))
		}
	}
	sortByID(result, func(m *membership.Membership) string { return m.ID.String() })
	return result, nil
}

func (s *Store) ListMembershipsByTemplate(_ context.Context, tmplID id.TemplateID) ([]*membership.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*membership.Membership
	for _, m := range s.memberships {
		if m.TemplateID != nil && *m.TemplateID == tmplID {
			result = append(result, copyMembership(m))
		}
	}
	sortByID(result, func(m *membership.Membership) string { return m.ID.String() })
	return result, nil
}

func (s *Store) CreateBinding(_ context.Context, b *membership.ScopeBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[b.ID.String()] = copyBinding(b)
	return nil
}

func (s *Store) DeleteBinding(_ context.Context, bindID id.BindingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, bindID.String())
	return nil
}

func (s *Store) ListBindings(_ context.Context, mbrID id.MembershipID) ([]*membership.ScopeBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*membership.ScopeBinding
	for _, b := range s.bindings {
		if b.MembershipID == mbrID {
			result = append(result, copyBinding(b))
		}
	}
	sortByID(result, func(b *membership.ScopeBinding) string { return b.ID.String() })
	return result, nil
}

func (s *Store) HasBinding(_ context.Context, mbrID id.MembershipID, scopeType, scopeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bindings {
		if b.MembershipID == mbrID && b.ScopeType == scopeType && b.ScopeID == scopeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteBindingsByMembership(_ context.Context, mbrID id.MembershipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, b := range s.bindings {
		if b.MembershipID == mbrID {
			delete(s.bindings, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Policy Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(_ context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.ID.String()] = copyPolicy(p)
	return nil
}

func (s *Store) GetPolicy(_ context.Context, polID id.PolicyID) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[polID.String()]
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", polID, policy.ErrNotFound)
	}
	return copyPolicy(p), nil
}

func (s *Store) GetPolicyByName(_ context.Context, tenantID, name string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.policies {
		if p.TenantID == tenantID && p.Name == name {
			return copyPolicy(p), nil
		}
	}
	return nil, fmt.Errorf("policy %q: %w", name, policy.ErrNotFound)
}

func (s *Store) UpdatePolicy(_ context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[p.ID.String()]; !ok {
		return fmt.Errorf("policy %s: %w", p.ID, policy.ErrNotFound)
	}
	s.policies[p.ID.String()] = copyPolicy(p)
	return nil
}

func (s *Store) DeletePolicy(_ context.Context, polID id.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.policies, polID.String())
	return nil
}

func (s *Store) ListPolicies(_ context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*policy.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		if filter != nil {
			if filter.TenantID != "" && p.TenantID != filter.TenantID {
				if !(filter.IncludeSystem && p.System()) {
					continue
				}
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyPolicy(p))
	}
	sortByID(result, func(p *policy.Policy) string { return p.ID.String() })
	return applyPagination(result, paginationOptsPol(filter)), nil
}

func (s *Store) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	list, err := s.ListPolicies(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListVisiblePolicies(ctx context.Context, tenantID string) ([]*policy.Policy, error) {
	return s.ListPolicies(ctx, &policy.ListFilter{TenantID: tenantID, IncludeSystem: true})
}

func (s *Store) DeletePoliciesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, p := range s.policies {
		if p.TenantID == tenantID {
			delete(s.policies, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Assignment Store
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(_ context.Context, a *assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID.String()] = copyAssignmentRec(a)
	return nil
}

func (s *Store) GetAssignment(_ context.Context, asgnID id.AssignmentID) (*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[asgnID.String()]
	if !ok {
		return nil, fmt.Errorf("assignment %s: %w", asgnID, assignment.ErrNotFound)
	}
	return copyAssignmentRec(a), nil
}

func (s *Store) DeleteAssignment(_ context.Context, asgnID id.AssignmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, asgnID.String())
	return nil
}

func (s *Store) ListAssignments(_ context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*assignment.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if filter != nil {
			if filter.TenantID != "" && a.TenantID != filter.TenantID {
				continue
			}
			if filter.MembershipID != nil && a.MembershipID != *filter.MembershipID {
				continue
			}
			if filter.PolicyID != nil && (a.PolicyID == nil || *a.PolicyID != *filter.PolicyID) {
				continue
			}
			if filter.ScopeType != "" && a.ScopeType != filter.ScopeType {
				continue
			}
			if filter.ResourceID != "" && a.ResourceID != filter.ResourceID {
				continue
			}
		}
		result = append(result, copyAssignmentRec(a))
	}
	sortByID(result, func(a *assignment.Assignment) string { return a.ID.String() })
	return applyPagination(result, paginationOptsAsgn(filter)), nil
}

func (s *Store) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	list, err := s.ListAssignments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListAssignmentsByMembership(ctx context.Context, mbrID id.MembershipID) ([]*assignment.Assignment, error) {
	return s.ListAssignments(ctx, &assignment.ListFilter{MembershipID: &mbrID})
}

func (s *Store) ListAssignmentsByPolicy(ctx context.Context, polID id.PolicyID) ([]*assignment.Assignment, error) {
	return s.ListAssignments(ctx, &assignment.ListFilter{PolicyID: &polID})
}

func (s *Store) DeleteAssignmentsByMembership(_ context.Context, mbrID id.MembershipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.assignments {
		if a.MembershipID == mbrID {
			delete(s.assignments, k)
		}
	}
	return nil
}

func (s *Store) DeleteAssignmentsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.assignments {
		if a.TenantID == tenantID {
			delete(s.assignments, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Template Store
// ──────────────────────────────────────────────────

func (s *Store) CreateTemplate(_ context.Context, t *template.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.ID.String()] = copyTemplate(t)
	return nil
}

func (s *Store) GetTemplate(_ context.Context, tmplID id.TemplateID) (*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[tmplID.String()]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", tmplID, template.ErrNotFound)
	}
	return copyTemplate(t), nil
}

func (s *Store) UpdateTemplate(_ context.Context, t *template.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[t.ID.String()]; !ok {
		return fmt.Errorf("template %s: %w", t.ID, template.ErrNotFound)
	}
	s.templates[t.ID.String()] = copyTemplate(t)
	return nil
}

func (s *Store) DeleteTemplate(_ context.Context, tmplID id.TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.templates, tmplID.String())
	delete(s.templateItems, tmplID.String())
	return nil
}

func (s *Store) ListTemplates(_ context.Context, filter *template.ListFilter) ([]*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*template.Template, 0, len(s.templates))
	for _, t := range s.templates {
		if filter != nil {
			if filter.TenantID != "" && t.TenantID != filter.TenantID {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyTemplate(t))
	}
	sortByID(result, func(t *template.Template) string { return t.ID.String() })
	return applyPagination(result, paginationOptsTmpl(filter)), nil
}

func (s *Store) CountTemplates(ctx context.Context, filter *template.ListFilter) (int64, error) {
	list, err := s.ListTemplates(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) SetItems(_ context.Context, tmplID id.TemplateID, items []*template.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]*template.Item, len(items))
	for i, it := range items {
		copied[i] = copyItem(it)
	}
	s.templateItems[tmplID.String()] = copied
	return nil
}

func (s *Store) ListItems(_ context.Context, tmplID id.TemplateID) ([]*template.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.templateItems[tmplID.String()]
	result := make([]*template.Item, len(items))
	for i, it := range items {
		result[i] = copyItem(it)
	}
	return result, nil
}

func (s *Store) DeleteTemplatesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, t := range s.templates {
		if t.TenantID == tenantID {
			delete(s.templates, k)
			delete(s.templateItems, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Decision Log Store
// ──────────────────────────────────────────────────

func (s *Store) CreateEntry(_ context.Context, e *decisionlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[e.ID.String()] = copyEntry(e)
	return nil
}

func (s *Store) ListEntries(_ context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*decisionlog.Entry, 0, len(s.decisions))
	for _, e := range s.decisions {
		if filter != nil {
			if filter.TenantID != "" && e.TenantID != filter.TenantID {
				continue
			}
			if filter.PrincipalID != "" && e.PrincipalID != filter.PrincipalID {
				continue
			}
			if filter.Domain != "" && e.Domain != filter.Domain {
				continue
			}
			if filter.ScopeType != "" && e.ScopeType != filter.ScopeType {
				continue
			}
			if filter.ResourceID != "" && e.ResourceID != filter.ResourceID {
				continue
			}
			if filter.Allowed != nil && e.Allowed != *filter.Allowed {
				continue
			}
			if filter.After != nil && e.CreatedAt.Before(*filter.After) {
				continue
			}
			if filter.Before != nil && e.CreatedAt.After(*filter.Before) {
				continue
			}
		}
		result = append(result, copyEntry(e))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return applyPagination(result, paginationOptsLog(filter)), nil
}

func (s *Store) DeleteEntriesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, e := range s.decisions {
		if e.CreatedAt.Before(cutoff) {
			delete(s.decisions, k)
			count++
		}
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func copyProperty(p *resource.Property) *resource.Property {
	c := *p
	return &c
}

func copyUnit(u *resource.Unit) *resource.Unit {
	c := *u
	return &c
}

func copyAsset(a *resource.Asset) *resource.Asset {
	c := *a
	return &c
}

func copyMembership(m *membership.Membership) *membership.Membership {
	c := *m
	return &c
}

func copyBinding(b *membership.ScopeBinding) *membership.ScopeBinding {
	c := *b
	return &c
}

func copyPolicy(p *policy.Policy) *policy.Policy {
	c := *p
	c.Permissions = copyPerms(p.Permissions)
	return &c
}

func copyAssignmentRec(a *assignment.Assignment) *assignment.Assignment {
	c := *a
	c.Overrides = copyPerms(a.Overrides)
	return &c
}

func copyTemplate(t *template.Template) *template.Template {
	c := *t
	return &c
}

func copyItem(it *template.Item) *template.Item {
	c := *it
	c.Permissions = copyPerms(it.Permissions)
	return &c
}

func copyEntry(e *decisionlog.Entry) *decisionlog.Entry {
	c := *e
	return &c
}

func copyPerms(perms map[string]string) map[string]string {
	if perms == nil {
		return nil
	}
	c := make(map[string]string, len(perms))
	for k, v := range perms {
		c[k] = v
	}
	return c
}

// Maps iterate in random order; listings sort for stable output.
func sortByID[T any](items []*T, key func(*T) string) {
	sort.Slice(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}

type pagOpts struct{ limit, offset int }

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset > 0 && p.offset >= len(items) {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}

func paginationOptsMbr(f *membership.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsPol(f *policy.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsAsgn(f *assignment.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsTmpl(f *template.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsLog(f *decisionlog.QueryFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}
