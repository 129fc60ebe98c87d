package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/membership"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/resource"
	"github.com/xraph/steward/template"
)

// SQLite has no JSONB; permission maps are stored as JSON text.

func permsToJSON(perms map[string]string) (string, error) {
	if perms == nil {
		return "", nil
	}
	b, err := json.Marshal(perms)
	if err != nil {
		return "", fmt.Errorf("marshal permissions: %w", err)
	}
	return string(b), nil
}

func permsFromJSON(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	var perms map[string]string
	if err := json.Unmarshal([]byte(s), &perms); err != nil {
		return nil, fmt.Errorf("unmarshal permissions: %w", err)
	}
	return perms, nil
}

// ──────────────────────────────────────────────────
// Property model
// ──────────────────────────────────────────────────

type propertyModel struct {
	grove.BaseModel `grove:"table:steward_properties"`
	ID              string    `grove:"id,pk"`
	OrgID           string    `grove:"org_id,notnull"`
	Name            string    `grove:"name,notnull"`
	Address         string    `grove:"address"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func propertyToModel(p *resource.Property) *propertyModel {
	return &propertyModel{
		ID:        p.ID.String(),
		OrgID:     p.OrgID.String(),
		Name:      p.Name,
		Address:   p.Address,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func propertyFromModel(m *propertyModel) *resource.Property {
	pid, _ := id.ParsePropertyID(m.ID) //nolint:errcheck // stored IDs are always valid
	oid, _ := id.ParseOrgID(m.OrgID)   //nolint:errcheck // stored IDs are always valid
	return &resource.Property{
		ID:        pid,
		OrgID:     oid,
		Name:      m.Name,
		Address:   m.Address,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Unit model
// ──────────────────────────────────────────────────

type unitModel struct {
	grove.BaseModel `grove:"table:steward_units"`
	ID              string    `grove:"id,pk"`
	PropertyID      string    `grove:"property_id,notnull"`
	Name            string    `grove:"name,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func unitToModel(u *resource.Unit) *unitModel {
	return &unitModel{
		ID:         u.ID.String(),
		PropertyID: u.PropertyID.String(),
		Name:       u.Name,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func unitFromModel(m *unitModel) *resource.Unit {
	uid, _ := id.ParseUnitID(m.ID)             //nolint:errcheck // stored IDs are always valid
	pid, _ := id.ParsePropertyID(m.PropertyID) //nolint:errcheck // stored IDs are always valid
	return &resource.Unit{
		ID:         uid,
		PropertyID: pid,
		Name:       m.Name,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Asset model
// ──────────────────────────────────────────────────

type assetModel struct {
	grove.BaseModel `grove:"table:steward_assets"`
	ID              string    `grove:"id,pk"`
	UnitID          *string   `grove:"unit_id"`
	PropertyID      *string   `grove:"property_id"`
	Name            string    `grove:"name,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func assetToModel(a *resource.Asset) *assetModel {
	m := &assetModel{
		ID:        a.ID.String(),
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.UnitID != nil {
		s := a.UnitID.String()
		m.UnitID = &s
	}
	if a.PropertyID != nil {
		s := a.PropertyID.String()
		m.PropertyID = &s
	}
	return m
}

func assetFromModel(m *assetModel) *resource.Asset {
	aid, _ := id.ParseAssetID(m.ID) //nolint:errcheck // stored IDs are always valid
	a := &resource.Asset{
		ID:        aid,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.UnitID != nil {
		uid, err := id.ParseUnitID(*m.UnitID)
		if err == nil {
			a.UnitID = &uid
		}
	}
	if m.PropertyID != nil {
		pid, err := id.ParsePropertyID(*m.PropertyID)
		if err == nil {
			a.PropertyID = &pid
		}
	}
	return a
}

// ──────────────────────────────────────────────────
// Membership model
// ──────────────────────────────────────────────────

type membershipModel struct {
	grove.BaseModel `grove:"table:steward_memberships"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	PrincipalID     string    `grove:"principal_id"`
	TemplateID      *string   `grove:"template_id"`
	InviteEmail     string    `grove:"invite_email"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func membershipToModel(m *membership.Membership) *membershipModel {
	mm := &membershipModel{
		ID:          m.ID.String(),
		TenantID:    m.TenantID,
		PrincipalID: m.PrincipalID,
		InviteEmail: m.InviteEmail,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.TemplateID != nil {
		s := m.TemplateID.String()
		mm.TemplateID = &s
	}
	return mm
}

func membershipFromModel(m *membershipModel) *membership.Membership {
	mid, _ := id.ParseMembershipID(m.ID) //nolint:errcheck // stored IDs are always valid
	mb := &membership.Membership{
		ID:          mid,
		TenantID:    m.TenantID,
		PrincipalID: m.PrincipalID,
		InviteEmail: m.InviteEmail,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.TemplateID != nil {
		tid, err := id.ParseTemplateID(*m.TemplateID)
		if err == nil {
			mb.TemplateID = &tid
		}
	}
	return mb
}

// ──────────────────────────────────────────────────
// Scope binding model
// ──────────────────────────────────────────────────

type bindingModel struct {
	grove.BaseModel `grove:"table:steward_scope_bindings"`
	ID              string    `grove:"id,pk"`
	MembershipID    string    `grove:"membership_id,notnull"`
	ScopeType       string    `grove:"scope_type,notnull"`
	ScopeID         string    `grove:"scope_id,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func bindingToModel(b *membership.ScopeBinding) *bindingModel {
	return &bindingModel{
		ID:           b.ID.String(),
		MembershipID: b.MembershipID.String(),
		ScopeType:    b.ScopeType,
		ScopeID:      b.ScopeID,
		CreatedAt:    b.CreatedAt,
	}
}

func bindingFromModel(m *bindingModel) *membership.ScopeBinding {
	bid, _ := id.ParseBindingID(m.ID)              //nolint:errcheck // stored IDs are always valid
	mid, _ := id.ParseMembershipID(m.MembershipID) //nolint:errcheck // stored IDs are always valid
	return &membership.ScopeBinding{
		ID:           bid,
		MembershipID: mid,
		ScopeType:    m.ScopeType,
		ScopeID:      m.ScopeID,
		CreatedAt:    m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Policy model
// ──────────────────────────────────────────────────

type policyModel struct {
	grove.BaseModel `grove:"table:steward_policies"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	Permissions     string    `grove:"permissions"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func policyToModel(p *policy.Policy) (*policyModel, error) {
	perms, err := permsToJSON(p.Permissions)
	if err != nil {
		return nil, err
	}
	return &policyModel{
		ID:          p.ID.String(),
		TenantID:    p.TenantID,
		Name:        p.Name,
		Description: p.Description,
		Permissions: perms,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func policyFromModel(m *policyModel) (*policy.Policy, error) {
	pid, _ := id.ParsePolicyID(m.ID) //nolint:errcheck // stored IDs are always valid
	perms, err := permsFromJSON(m.Permissions)
	if err != nil {
		return nil, err
	}
	return &policy.Policy{
		ID:          pid,
		TenantID:    m.TenantID,
		Name:        m.Name,
		Description: m.Description,
		Permissions: perms,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Assignment model
// ──────────────────────────────────────────────────

type assignmentModel struct {
	grove.BaseModel `grove:"table:steward_assignments"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	MembershipID    string    `grove:"membership_id,notnull"`
	ScopeType       string    `grove:"scope_type,notnull"`
	ResourceID      string    `grove:"resource_id,notnull"`
	PolicyID        *string   `grove:"policy_id"`
	Overrides       string    `grove:"overrides"` // JSON text
	GrantedBy       string    `grove:"granted_by"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func assignmentToModel(a *assignment.Assignment) (*assignmentModel, error) {
	overrides, err := permsToJSON(a.Overrides)
	if err != nil {
		return nil, err
	}
	m := &assignmentModel{
		ID:           a.ID.String(),
		TenantID:     a.TenantID,
		MembershipID: a.MembershipID.String(),
		ScopeType:    a.ScopeType,
		ResourceID:   a.ResourceID,
		Overrides:    overrides,
		GrantedBy:    a.GrantedBy,
		CreatedAt:    a.CreatedAt,
	}
	if a.PolicyID != nil {
		s := a.PolicyID.String()
		m.PolicyID = &s
	}
	return m, nil
}

func assignmentFromModel(m *assignmentModel) (*assignment.Assignment, error) {
	aid, _ := id.ParseAssignmentID(m.ID)           //nolint:errcheck // stored IDs are always valid
	mid, _ := id.ParseMembershipID(m.MembershipID) //nolint:errcheck // stored IDs are always valid
	overrides, err := permsFromJSON(m.Overrides)
	if err != nil {
		return nil, err
	}
	a := &assignment.Assignment{
		ID:           aid,
		TenantID:     m.TenantID,
		MembershipID: mid,
		ScopeType:    m.ScopeType,
		ResourceID:   m.ResourceID,
		Overrides:    overrides,
		GrantedBy:    m.GrantedBy,
		CreatedAt:    m.CreatedAt,
	}
	if m.PolicyID != nil {
		pid, err := id.ParsePolicyID(*m.PolicyID)
		if err == nil {
			a.PolicyID = &pid
		}
	}
	return a, nil
}

// ──────────────────────────────────────────────────
// Template models
// ──────────────────────────────────────────────────

type templateModel struct {
	grove.BaseModel `grove:"table:steward_templates"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func templateToModel(t *template.Template) *templateModel {
	return &templateModel{
		ID:          t.ID.String(),
		TenantID:    t.TenantID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func templateFromModel(m *templateModel) *template.Template {
	tid, _ := id.ParseTemplateID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &template.Template{
		ID:          tid,
		TenantID:    m.TenantID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type templateItemModel struct {
	grove.BaseModel `grove:"table:steward_template_items"`
	ID              string `grove:"id,pk"`
	TemplateID      string `grove:"template_id,notnull"`
	ScopeType       string `grove:"scope_type,notnull"`
	Permissions     string `grove:"permissions"` // JSON text
}

func itemToModel(it *template.Item) (*templateItemModel, error) {
	perms, err := permsToJSON(it.Permissions)
	if err != nil {
		return nil, err
	}
	return &templateItemModel{
		ID:          it.ID.String(),
		TemplateID:  it.TemplateID.String(),
		ScopeType:   it.ScopeType,
		Permissions: perms,
	}, nil
}

func itemFromModel(m *templateItemModel) (*template.Item, error) {
	iid, _ := id.ParseTemplateItemID(m.ID)     //nolint:errcheck // stored IDs are always valid
	tid, _ := id.ParseTemplateID(m.TemplateID) //nolint:errcheck // stored IDs are always valid
	perms, err := permsFromJSON(m.Permissions)
	if err != nil {
		return nil, err
	}
	return &template.Item{
		ID:          iid,
		TemplateID:  tid,
		ScopeType:   m.ScopeType,
		Permissions: perms,
	}, nil
}

// ──────────────────────────────────────────────────
// Decision log model
// ──────────────────────────────────────────────────

type decisionLogModel struct {
	grove.BaseModel `grove:"table:steward_decision_logs"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	PrincipalID     string    `grove:"principal_id,notnull"`
	Action          string    `grove:"action,notnull"`
	Domain          string    `grove:"domain,notnull"`
	ScopeType       string    `grove:"scope_type,notnull"`
	ResourceID      string    `grove:"resource_id,notnull"`
	Allowed         bool      `grove:"allowed,notnull"`
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func entryToModel(e *decisionlog.Entry) *decisionLogModel {
	return &decisionLogModel{
		ID:          e.ID.String(),
		TenantID:    e.TenantID,
		PrincipalID: e.PrincipalID,
		Action:      e.Action,
		Domain:      e.Domain,
		ScopeType:   e.ScopeType,
		ResourceID:  e.ResourceID,
		Allowed:     e.Allowed,
		EvalTimeNs:  e.EvalTimeNs,
		CreatedAt:   e.CreatedAt,
	}
}

func entryFromModel(m *decisionLogModel) *decisionlog.Entry {
	eid, _ := id.ParseDecisionLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &decisionlog.Entry{
		ID:          eid,
		TenantID:    m.TenantID,
		PrincipalID: m.PrincipalID,
		Action:      m.Action,
		Domain:      m.Domain,
		ScopeType:   m.ScopeType,
		ResourceID:  m.ResourceID,
		Allowed:     m.Allowed,
		EvalTimeNs:  m.EvalTimeNs,
		CreatedAt:   m.CreatedAt,
	}
}
