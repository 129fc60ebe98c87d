// Package postgres provides a PostgreSQL implementation of the Steward
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/membership"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/resource"
	"github.com/xraph/steward/store"
	"github.com/xraph/steward/template"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite Steward store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("steward: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("steward: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// Resource operations
// ──────────────────────────────────────────────────

// FindAncestors loads the parent chain with at most three point lookups.
// Each level is an indexed primary-key read; a single recursive CTE would
// save round trips but not enough to justify raw SQL here.
func (s *Store) FindAncestors(ctx context.Context, scopeType, resourceID string) (*resource.Ancestry, error) {
	switch scopeType {
	case "PROPERTY":
		p, err := s.getPropertyModel(ctx, resourceID)
		if err != nil {
			return nil, err
		}
		return &resource.Ancestry{OrgID: p.OrgID, PropertyID: resourceID}, nil

	case "UNIT":
		u, err := s.getUnitModel(ctx, resourceID)
		if err != nil {
			return nil, err
		}
		p, err := s.getPropertyModel(ctx, u.PropertyID)
		if err != nil {
			return nil, err
		}
		return &resource.Ancestry{OrgID: p.OrgID, PropertyID: p.ID, UnitID: resourceID}, nil

	case "ASSET":
		a, err := s.getAssetModel(ctx, resourceID)
		if err != nil {
			return nil, err
		}
		anc := &resource.Ancestry{AssetID: resourceID}
		switch {
		case a.UnitID != nil && a.PropertyID == nil:
			u, err := s.getUnitModel(ctx, *a.UnitID)
			if err != nil {
				return nil, err
			}
			p, err := s.getPropertyModel(ctx, u.PropertyID)
			if err != nil {
				return nil, err
			}
			anc.UnitID = u.ID
			anc.PropertyID = p.ID
			anc.OrgID = p.OrgID
		case a.PropertyID != nil && a.UnitID == nil:
			p, err := s.getPropertyModel(ctx, *a.PropertyID)
			if err != nil {
				return nil, err
			}
			anc.PropertyID = p.ID
			anc.OrgID = p.OrgID
		default:
			return nil, fmt.Errorf("asset %s: inconsistent parents: %w", resourceID, resource.ErrNotFound)
		}
		return anc, nil

	default:
		return nil, fmt.Errorf("scope type %q: %w", scopeType, resource.ErrNotFound)
	}
}

func (s *Store) getPropertyModel(ctx context.Context, propID string) (*propertyModel, error) {
	m := new(propertyModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", propID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("property %s: %w", propID, resource.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get property: %w", err)
	}
	return m, nil
}

func (s *Store) getUnitModel(ctx context.Context, unitID string) (*unitModel, error) {
	m := new(unitModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", unitID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("unit %s: %w", unitID, resource.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get unit: %w", err)
	}
	return m, nil
}

func (s *Store) getAssetModel(ctx context.Context, assetID string) (*assetModel, error) {
	m := new(assetModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", assetID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset %s: %w", assetID, resource.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get asset: %w", err)
	}
	return m, nil
}

func (s *Store) CreateProperty(ctx context.Context, p *resource.Property) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m := propertyToModel(p)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: create property: %w", err)
	}
	return nil
}

func (s *Store) GetProperty(ctx context.Context, propID id.PropertyID) (*resource.Property, error) {
	m, err := s.getPropertyModel(ctx, propID.String())
	if err != nil {
		return nil, err
	}
	return propertyFromModel(m), nil
}

func (s *Store) DeleteProperty(ctx context.Context, propID id.PropertyID) error {
	_, err := s.pgdb.NewDelete((*propertyModel)(nil)).
		Where("id = ?", propID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete property: %w", err)
	}
	return nil
}

func (s *Store) CreateUnit(ctx context.Context, u *resource.Unit) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	m := unitToModel(u)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: create unit: %w", err)
	}
	return nil
}

func (s *Store) GetUnit(ctx context.Context, unitID id.UnitID) (*resource.Unit, error) {
	m, err := s.getUnitModel(ctx, unitID.String())
	if err != nil {
		return nil, err
	}
	return unitFromModel(m), nil
}

func (s *Store) DeleteUnit(ctx context.Context, unitID id.UnitID) error {
	_, err := s.pgdb.NewDelete((*unitModel)(nil)).
		Where("id = ?", unitID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete unit: %w", err)
	}
	return nil
}

func (s *Store) CreateAsset(ctx context.Context, a *resource.Asset) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	m := assetToModel(a)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: create asset: %w", err)
	}
	return nil
}

func (s *Store) GetAsset(ctx context.Context, assetID id.AssetID) (*resource.Asset, error) {
	m, err := s.getAssetModel(ctx, assetID.String())
	if err != nil {
		return nil, err
	}
	return assetFromModel(m), nil
}

func (s *Store) DeleteAsset(ctx context.Context, assetID id.AssetID) error {
	_, err := s.pgdb.NewDelete((*assetModel)(nil)).
		Where("id = ?", assetID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete asset: %w", err)
	}
	return nil
}

func (s *Store) ListPropertiesByOrg(ctx context.Context, orgID string) ([]*resource.Property, error) {
	var models []propertyModel
	err := s.pgdb.NewSelect(&models).
		Where("org_id = ?", orgID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list properties: %w", err)
	}
	result := make([]*resource.Property, len(models))
	for i := range models {
		result[i] = propertyFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Membership operations
// ──────────────────────────────────────────────────

func (s *Store) CreateMembership(ctx context.Context, m *membership.Membership) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	mm := membershipToModel(m)
	_, err := s.pgdb.NewInsert(mm).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: create membership: %w", err)
	}
	return nil
}

func (s *Store) GetMembership(ctx context.Context, mbrID id.MembershipID) (*membership.Membership, error) {
	m := new(membershipModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", mbrID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("membership %s: %w", mbrID, membership.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get membership: %w", err)
	}
	return membershipFromModel(m), nil
}

func (s *Store) UpdateMembership(ctx context.Context, m *membership.Membership) error {
	m.UpdatedAt = time.Now().UTC()
	mm := membershipToModel(m)
	_, err := s.pgdb.NewUpdate(mm).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update membership: %w", err)
	}
	return nil
}

func (s *Store) DeleteMembership(ctx context.Context, mbrID id.MembershipID) error {
	// Bindings cascade at the schema level.
	_, err := s.pgdb.NewDelete((*membershipModel)(nil)).
		Where("id = ?", mbrID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete membership: %w", err)
	}
	return nil
}

func (s *Store) ListMemberships(ctx context.Context, filter *membership.ListFilter) ([]*membership.Membership, error) {
	var models []membershipModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.Pending != nil {
			if *filter.Pending {
				q = q.Where("principal_id = ''")
			} else {
				q = q.Where("principal_id <> ''")
			}
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list memberships: %w", err)
	}
	result := make([]*membership.Membership, len(models))
	for i := range models {
		result[i] = membershipFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountMemberships(ctx context.Context, filter *membership.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*membershipModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.Pending != nil {
			if *filter.Pending {
				q = q.Where("principal_id = ''")
			} else {
				q = q.Where("principal_id <> ''")
			}
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count memberships: %w", err)
	}
	return count, nil
}

func (s *Store) ListMembershipsForPrincipal(ctx context.Context, principalID string) ([]*membership.Membership, error) {
	if principalID == "" {
		return nil, nil
	}
	var models []membershipModel
	err := s.pgdb.NewSelect(&models).
		Where("principal_id = ?", principalID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list memberships for principal: %w", err)
	}
	result := make([]*membership.Membership, len(models))
	for i := range models {
		result[i] = membershipFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListMembershipsByTemplate(ctx context.Context, tmplID id.TemplateID) ([]*membership.Membership, error) {
	var models []membershipModel
	err := s.pgdb.NewSelect(&models).
		Where("template_id = ?", tmplID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list memberships by template: %w", err)
	}
	result := make([]*membership.Membership, len(models))
	for i := range models {
		result[i] = membershipFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateBinding(ctx context.Context, b *membership.ScopeBinding) error {
	b.CreatedAt = time.Now().UTC()
	m := bindingToModel(b)
	_, err := s.pgdb.NewInsert(m).
		OnConflict("(membership_id, scope_type, scope_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: create binding: %w", err)
	}
	return nil
}

func (s *Store) DeleteBinding(ctx context.Context, bindID id.BindingID) error {
	_, err := s.pgdb.NewDelete((*bindingModel)(nil)).
		Where("id = ?", bindID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete binding: %w", err)
	}
	return nil
}

func (s *Store) ListBindings(ctx context.Context, mbrID id.MembershipID) ([]*membership.ScopeBinding, error) {
	var models []bindingModel
	err := s.pgdb.NewSelect(&models).
		Where("membership_id = ?", mbrID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list bindings: %w", err)
	}
	result := make([]*membership.ScopeBinding, len(models))
	for i := range models {
		result[i] = bindingFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) HasBinding(ctx context.Context, mbrID id.MembershipID, scopeType, scopeID string) (bool, error) {
	count, err := s.pgdb.NewSelect((*bindingModel)(nil)).
		Where("membership_id = ?", mbrID.String()).
		Where("scope_type = ?", scopeType).
		Where("scope_id = ?", scopeID).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("steward: has binding: %w", err)
	}
	return count > 0, nil
}

func (s *Store) DeleteBindingsByMembership(ctx context.Context, mbrID id.MembershipID) error {
	_, err := s.pgdb.NewDelete((*bindingModel)(nil)).
		Where("membership_id = ?", mbrID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete bindings by membership: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Policy operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m := policyToModel(p)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: create policy: %w", err)
	}
	return nil
}

func (s *Store) GetPolicy(ctx context.Context, polID id.PolicyID) (*policy.Policy, error) {
	m := new(policyModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", polID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %s: %w", polID, policy.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get policy: %w", err)
	}
	return policyFromModel(m), nil
}

func (s *Store) GetPolicyByName(ctx context.Context, tenantID, name string) (*policy.Policy, error) {
	m := new(policyModel)
	err := s.pgdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %q: %w", name, policy.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get policy by name: %w", err)
	}
	return policyFromModel(m), nil
}

func (s *Store) UpdatePolicy(ctx context.Context, p *policy.Policy) error {
	p.UpdatedAt = time.Now().UTC()
	m := policyToModel(p)
	_, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update policy: %w", err)
	}
	return nil
}

func (s *Store) DeletePolicy(ctx context.Context, polID id.PolicyID) error {
	_, err := s.pgdb.NewDelete((*policyModel)(nil)).
		Where("id = ?", polID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete policy: %w", err)
	}
	return nil
}

func (s *Store) ListPolicies(ctx context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	var models []policyModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			if filter.IncludeSystem {
				q = q.Where("(tenant_id = ? OR tenant_id = '')", filter.TenantID)
			} else {
				q = q.Where("tenant_id = ?", filter.TenantID)
			}
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list policies: %w", err)
	}
	result := make([]*policy.Policy, len(models))
	for i := range models {
		result[i] = policyFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*policyModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			if filter.IncludeSystem {
				q = q.Where("(tenant_id = ? OR tenant_id = '')", filter.TenantID)
			} else {
				q = q.Where("tenant_id = ?", filter.TenantID)
			}
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count policies: %w", err)
	}
	return count, nil
}

func (s *Store) ListVisiblePolicies(ctx context.Context, tenantID string) ([]*policy.Policy, error) {
	return s.ListPolicies(ctx, &policy.ListFilter{TenantID: tenantID, IncludeSystem: true})
}

func (s *Store) DeletePoliciesByTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		// System-wide policies are never bulk-deleted through tenant cleanup.
		return nil
	}
	_, err := s.pgdb.NewDelete((*policyModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete policies by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Assignment operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(ctx context.Context, a *assignment.Assignment) error {
	a.CreatedAt = time.Now().UTC()
	m := assignmentToModel(a)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: create assignment: %w", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, asgnID id.AssignmentID) (*assignment.Assignment, error) {
	m := new(assignmentModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", asgnID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment %s: %w", asgnID, assignment.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get assignment: %w", err)
	}
	return assignmentFromModel(m), nil
}

func (s *Store) DeleteAssignment(ctx context.Context, asgnID id.AssignmentID) error {
	_, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("id = ?", asgnID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete assignment: %w", err)
	}
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.MembershipID != nil {
			q = q.Where("membership_id = ?", filter.MembershipID.String())
		}
		if filter.PolicyID != nil {
			q = q.Where("policy_id = ?", filter.PolicyID.String())
		}
		if filter.ScopeType != "" {
			q = q.Where("scope_type = ?", filter.ScopeType)
		}
		if filter.ResourceID != "" {
			q = q.Where("resource_id = ?", filter.ResourceID)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list assignments: %w", err)
	}
	result := make([]*assignment.Assignment, len(models))
	for i := range models {
		result[i] = assignmentFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*assignmentModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.MembershipID != nil {
			q = q.Where("membership_id = ?", filter.MembershipID.String())
		}
		if filter.PolicyID != nil {
			q = q.Where("policy_id = ?", filter.PolicyID.String())
		}
		if filter.ScopeType != "" {
			q = q.Where("scope_type = ?", filter.ScopeType)
		}
		if filter.ResourceID != "" {
			q = q.Where("resource_id = ?", filter.ResourceID)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count assignments: %w", err)
	}
	return count, nil
}

func (s *Store) ListAssignmentsByMembership(ctx context.Context, mbrID id.MembershipID) ([]*assignment.Assignment, error) {
	return s.ListAssignments(ctx, &assignment.ListFilter{MembershipID: &mbrID})
}

func (s *Store) ListAssignmentsByPolicy(ctx context.Context, polID id.PolicyID) ([]*assignment.Assignment, error) {
	return s.ListAssignments(ctx, &assignment.ListFilter{PolicyID: &polID})
}

func (s *Store) DeleteAssignmentsByMembership(ctx context.Context, mbrID id.MembershipID) error {
	_, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("membership_id = ?", mbrID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete assignments by membership: %w", err)
	}
	return nil
}

func (s *Store) DeleteAssignmentsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete assignments by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Template operations
// ──────────────────────────────────────────────────

func (s *Store) CreateTemplate(ctx context.Context, t *template.Template) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	m := templateToModel(t)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: create template: %w", err)
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, tmplID id.TemplateID) (*template.Template, error) {
	m := new(templateModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", tmplID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", tmplID, template.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get template: %w", err)
	}
	return templateFromModel(m), nil
}

func (s *Store) UpdateTemplate(ctx context.Context, t *template.Template) error {
	t.UpdatedAt = time.Now().UTC()
	m := templateToModel(t)
	_, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update template: %w", err)
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, tmplID id.TemplateID) error {
	// Items cascade at the schema level.
	_, err := s.pgdb.NewDelete((*templateModel)(nil)).
		Where("id = ?", tmplID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete template: %w", err)
	}
	return nil
}

func (s *Store) ListTemplates(ctx context.Context, filter *template.ListFilter) ([]*template.Template, error) {
	var models []templateModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list templates: %w", err)
	}
	result := make([]*template.Template, len(models))
	for i := range models {
		result[i] = templateFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountTemplates(ctx context.Context, filter *template.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*templateModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count templates: %w", err)
	}
	return count, nil
}

func (s *Store) SetItems(ctx context.Context, tmplID id.TemplateID, items []*template.Item) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	_, err = tx.NewDelete((*templateItemModel)(nil)).
		Where("template_id = ?", tmplID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: clear template items: %w", err)
	}

	if len(items) > 0 {
		models := make([]templateItemModel, len(items))
		for i, it := range items {
			models[i] = *itemToModel(it)
		}
		_, err = tx.NewInsert(&models).Exec(ctx)
		if err != nil {
			return fmt.Errorf("steward: set template items: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("steward: commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListItems(ctx context.Context, tmplID id.TemplateID) ([]*template.Item, error) {
	var models []templateItemModel
	err := s.pgdb.NewSelect(&models).
		Where("template_id = ?", tmplID.String()).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list template items: %w", err)
	}
	result := make([]*template.Item, len(models))
	for i := range models {
		result[i] = itemFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) DeleteTemplatesByTenant(ctx context.Context, tenantID string) error {
	_, err := s.pgdb.NewDelete((*templateModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: delete templates by tenant: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Decision log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateEntry(ctx context.Context, e *decisionlog.Entry) error {
	m := entryToModel(e)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: create decision log entry: %w", err)
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.Domain != "" {
			q = q.Where("domain = ?", filter.Domain)
		}
		if filter.ScopeType != "" {
			q = q.Where("scope_type = ?", filter.ScopeType)
		}
		if filter.ResourceID != "" {
			q = q.Where("resource_id = ?", filter.ResourceID)
		}
		if filter.Allowed != nil {
			q = q.Where("allowed = ?", *filter.Allowed)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list decision log entries: %w", err)
	}
	result := make([]*decisionlog.Entry, len(models))
	for i := range models {
		result[i] = entryFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*decisionLogModel)(nil)).
		Where("created_at < ?", cutoff).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: purge decision log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("steward: purge decision log rows: %w", err)
	}
	return n, nil
}
