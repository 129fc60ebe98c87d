package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/membership"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/resource"
	"github.com/xraph/steward/store"
	"github.com/xraph/steward/template"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

func seedHierarchy(t *testing.T, s *Store) (id.PropertyID, id.UnitID, id.AssetID) {
	t.Helper()
	ctx := context.Background()

	propID := id.NewPropertyID()
	unitID := id.NewUnitID()
	assetID := id.NewAssetID()

	if err := s.CreateProperty(ctx, &resource.Property{ID: propID, OrgID: id.MustParse("org_01h2xcejqtf2nbrexx3vqjhp41"), Name: "Maple Court"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUnit(ctx, &resource.Unit{ID: unitID, PropertyID: propID, Name: "2B"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateAsset(ctx, &resource.Asset{ID: assetID, UnitID: &unitID, Name: "boiler"}); err != nil {
		t.Fatal(err)
	}
	return propID, unitID, assetID
}

func TestFindAncestors(t *testing.T) {
	ctx := context.Background()
	s := New()
	propID, unitID, assetID := seedHierarchy(t, s)
	orgID := "org_01h2xcejqtf2nbrexx3vqjhp41"

	// Property: org only.
	anc, err := s.FindAncestors(ctx, "PROPERTY", propID.String())
	if err != nil {
		t.Fatal(err)
	}
	if anc.OrgID != orgID || anc.PropertyID != propID.String() {
		t.Fatalf("unexpected property ancestry: %+v", anc)
	}

	// Unit: property + org.
	anc, err = s.FindAncestors(ctx, "UNIT", unitID.String())
	if err != nil {
		t.Fatal(err)
	}
	if anc.PropertyID != propID.String() || anc.OrgID != orgID {
		t.Fatalf("unexpected unit ancestry: %+v", anc)
	}

	// Asset via unit: unit + property + org.
	anc, err = s.FindAncestors(ctx, "ASSET", assetID.String())
	if err != nil {
		t.Fatal(err)
	}
	if anc.UnitID != unitID.String() || anc.PropertyID != propID.String() || anc.OrgID != orgID {
		t.Fatalf("unexpected asset ancestry: %+v", anc)
	}

	// Missing resource.
	_, err = s.FindAncestors(ctx, "UNIT", id.NewUnitID().String())
	if !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindAncestorsPropertyAsset(t *testing.T) {
	ctx := context.Background()
	s := New()
	propID, _, _ := seedHierarchy(t, s)

	// An asset attached directly to the property has no unit level.
	assetID := id.NewAssetID()
	if err := s.CreateAsset(ctx, &resource.Asset{ID: assetID, PropertyID: &propID, Name: "roof"}); err != nil {
		t.Fatal(err)
	}

	anc, err := s.FindAncestors(ctx, "ASSET", assetID.String())
	if err != nil {
		t.Fatal(err)
	}
	if anc.UnitID != "" {
		t.Fatalf("expected no unit level, got %q", anc.UnitID)
	}
	if anc.PropertyID != propID.String() {
		t.Fatalf("unexpected property: %q", anc.PropertyID)
	}
}

func TestFindAncestorsInconsistentAsset(t *testing.T) {
	ctx := context.Background()
	s := New()

	// No parent at all.
	orphan := id.NewAssetID()
	_ = s.CreateAsset(ctx, &resource.Asset{ID: orphan, Name: "orphan"})
	_, err := s.FindAncestors(ctx, "ASSET", orphan.String())
	if !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for orphan asset, got %v", err)
	}

	// Dangling unit reference.
	unitID := id.NewUnitID()
	dangling := id.NewAssetID()
	_ = s.CreateAsset(ctx, &resource.Asset{ID: dangling, UnitID: &unitID, Name: "dangling"})
	_, err = s.FindAncestors(ctx, "ASSET", dangling.String())
	if !errors.Is(err, resource.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for dangling asset, got %v", err)
	}
}

func TestMembershipCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	m := &membership.Membership{
		ID:          id.NewMembershipID(),
		TenantID:    "org_1",
		InviteEmail: "manager@example.com",
	}

	if err := s.CreateMembership(ctx, m); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetMembership(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Pending() {
		t.Fatal("expected pending membership")
	}

	// Accept the invite.
	m.PrincipalID = "user-1"
	if err := s.UpdateMembership(ctx, m); err != nil {
		t.Fatal(err)
	}

	list, _ := s.ListMembershipsForPrincipal(ctx, "user-1")
	if len(list) != 1 {
		t.Fatalf("expected 1 membership, got %d", len(list))
	}

	pending := false
	list, _ = s.ListMemberships(ctx, &membership.ListFilter{TenantID: "org_1", Pending: &pending})
	if len(list) != 1 {
		t.Fatalf("expected 1 accepted membership, got %d", len(list))
	}

	if err := s.DeleteMembership(ctx, m.ID); err != nil {
		t.Fatal(err)
	}
	_, err = s.GetMembership(ctx, m.ID)
	if !errors.Is(err, membership.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestBindings(t *testing.T) {
	ctx := context.Background()
	s := New()

	mbrID := id.NewMembershipID()
	_ = s.CreateMembership(ctx, &membership.Membership{ID: mbrID, TenantID: "org_1", PrincipalID: "user-1"})

	b1 := &membership.ScopeBinding{ID: id.NewBindingID(), MembershipID: mbrID, ScopeType: "PROPERTY", ScopeID: "prop_a"}
	b2 := &membership.ScopeBinding{ID: id.NewBindingID(), MembershipID: mbrID, ScopeType: "UNIT", ScopeID: "unit_b"}
	_ = s.CreateBinding(ctx, b1)
	_ = s.CreateBinding(ctx, b2)

	list, _ := s.ListBindings(ctx, mbrID)
	if len(list) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(list))
	}

	ok, _ := s.HasBinding(ctx, mbrID, "PROPERTY", "prop_a")
	if !ok {
		t.Fatal("expected binding for prop_a")
	}
	ok, _ = s.HasBinding(ctx, mbrID, "PROPERTY", "prop_z")
	if ok {
		t.Fatal("expected no binding for prop_z")
	}

	_ = s.DeleteBinding(ctx, b1.ID)
	list, _ = s.ListBindings(ctx, mbrID)
	if len(list) != 1 {
		t.Fatalf("expected 1 binding after delete, got %d", len(list))
	}

	// Membership delete cascades bindings.
	_ = s.DeleteMembership(ctx, mbrID)
	list, _ = s.ListBindings(ctx, mbrID)
	if len(list) != 0 {
		t.Fatal("expected bindings cascade-deleted")
	}
}

func TestPolicyCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &policy.Policy{
		ID:          id.NewPolicyID(),
		TenantID:    "org_1",
		Name:        "property-manager",
		Permissions: map[string]string{"l": "rcud", "m": "rcu"},
	}

	if err := s.CreatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPolicy(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Permissions["l"] != "rcud" {
		t.Fatal("permissions not preserved")
	}

	got, err = s.GetPolicyByName(ctx, "org_1", "property-manager")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID {
		t.Fatal("name lookup mismatch")
	}

	// Stored copies are isolated from caller mutation.
	got.Permissions["l"] = "r"
	again, _ := s.GetPolicy(ctx, p.ID)
	if again.Permissions["l"] != "rcud" {
		t.Fatal("store copy was mutated through a read result")
	}

	p.Name = "senior-property-manager"
	if err := s.UpdatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetPolicy(ctx, p.ID)
	if got.Name != "senior-property-manager" {
		t.Fatal("update failed")
	}

	_ = s.DeletePolicy(ctx, p.ID)
	_, err = s.GetPolicy(ctx, p.ID)
	if !errors.Is(err, policy.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListVisiblePolicies(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.CreatePolicy(ctx, &policy.Policy{ID: id.NewPolicyID(), TenantID: "", Name: "viewer"})
	_ = s.CreatePolicy(ctx, &policy.Policy{ID: id.NewPolicyID(), TenantID: "org_1", Name: "custom"})
	_ = s.CreatePolicy(ctx, &policy.Policy{ID: id.NewPolicyID(), TenantID: "org_2", Name: "other"})

	list, err := s.ListVisiblePolicies(ctx, "org_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected own + system policies, got %d", len(list))
	}
	for _, p := range list {
		if p.TenantID != "" && p.TenantID != "org_1" {
			t.Fatalf("leaked policy from tenant %q", p.TenantID)
		}
	}
}

func TestAssignmentCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	mbrID := id.NewMembershipID()
	polID := id.NewPolicyID()

	a := &assignment.Assignment{
		ID:           id.NewAssignmentID(),
		TenantID:     "org_1",
		MembershipID: mbrID,
		ScopeType:    "PROPERTY",
		ResourceID:   "prop_a",
		PolicyID:     &polID,
	}

	if err := s.CreateAssignment(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetAssignment(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ResourceID != "prop_a" {
		t.Fatal("mismatch")
	}

	byMbr, _ := s.ListAssignmentsByMembership(ctx, mbrID)
	if len(byMbr) != 1 {
		t.Fatalf("expected 1 assignment by membership, got %d", len(byMbr))
	}

	byPol, _ := s.ListAssignmentsByPolicy(ctx, polID)
	if len(byPol) != 1 {
		t.Fatalf("expected 1 assignment by policy, got %d", len(byPol))
	}

	// An override assignment has no policy reference.
	b := &assignment.Assignment{
		ID:           id.NewAssignmentID(),
		TenantID:     "org_1",
		MembershipID: mbrID,
		ScopeType:    "UNIT",
		ResourceID:   "unit_b",
		Overrides:    map[string]string{"m": "r"},
	}
	_ = s.CreateAssignment(ctx, b)
	byPol, _ = s.ListAssignmentsByPolicy(ctx, polID)
	if len(byPol) != 1 {
		t.Fatal("override assignment should not match policy filter")
	}

	_ = s.DeleteAssignmentsByMembership(ctx, mbrID)
	byMbr, _ = s.ListAssignmentsByMembership(ctx, mbrID)
	if len(byMbr) != 0 {
		t.Fatal("expected assignments deleted")
	}
}

func TestTemplateCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	tmpl := &template.Template{
		ID:       id.NewTemplateID(),
		TenantID: "org_1",
		Name:     "regional-manager",
	}

	if err := s.CreateTemplate(ctx, tmpl); err != nil {
		t.Fatal(err)
	}

	items := []*template.Item{
		{ID: id.NewTemplateItemID(), TemplateID: tmpl.ID, ScopeType: "ORG", Permissions: map[string]string{"o": "r"}},
		{ID: id.NewTemplateItemID(), TemplateID: tmpl.ID, ScopeType: "PROPERTY", Permissions: map[string]string{"l": "rcud"}},
	}
	if err := s.SetItems(ctx, tmpl.ID, items); err != nil {
		t.Fatal(err)
	}

	got, _ := s.ListItems(ctx, tmpl.ID)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}

	// SetItems replaces wholesale.
	_ = s.SetItems(ctx, tmpl.ID, items[:1])
	got, _ = s.ListItems(ctx, tmpl.ID)
	if len(got) != 1 {
		t.Fatalf("expected 1 item after replace, got %d", len(got))
	}

	_ = s.DeleteTemplate(ctx, tmpl.ID)
	_, err := s.GetTemplate(ctx, tmpl.ID)
	if !errors.Is(err, template.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, _ = s.ListItems(ctx, tmpl.ID)
	if len(got) != 0 {
		t.Fatal("expected items cascade-deleted")
	}
}

func TestDecisionLog(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := &decisionlog.Entry{
		ID:          id.NewDecisionLogID(),
		TenantID:    "org_1",
		PrincipalID: "user-1",
		Action:      "u",
		Domain:      "m",
		ScopeType:   "UNIT",
		ResourceID:  "unit_b",
		Allowed:     true,
		CreatedAt:   time.Now(),
	}

	if err := s.CreateEntry(ctx, e); err != nil {
		t.Fatal(err)
	}

	logs, _ := s.ListEntries(ctx, &decisionlog.QueryFilter{TenantID: "org_1"})
	if len(logs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(logs))
	}

	denied := false
	logs, _ = s.ListEntries(ctx, &decisionlog.QueryFilter{Allowed: &denied})
	if len(logs) != 0 {
		t.Fatal("expected no denied entries")
	}

	purged, _ := s.DeleteEntriesBefore(ctx, time.Now().Add(time.Hour))
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
}

func TestDeleteByTenant(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.CreatePolicy(ctx, &policy.Policy{ID: id.NewPolicyID(), TenantID: "org_1", Name: "p1"})
	_ = s.CreateTemplate(ctx, &template.Template{ID: id.NewTemplateID(), TenantID: "org_1", Name: "t1"})
	_ = s.CreateAssignment(ctx, &assignment.Assignment{ID: id.NewAssignmentID(), TenantID: "org_1", MembershipID: id.NewMembershipID(), ScopeType: "ORG", ResourceID: "org_1"})

	_ = s.CreatePolicy(ctx, &policy.Policy{ID: id.NewPolicyID(), TenantID: "org_2", Name: "p2"})

	_ = s.DeletePoliciesByTenant(ctx, "org_1")
	_ = s.DeleteTemplatesByTenant(ctx, "org_1")
	_ = s.DeleteAssignmentsByTenant(ctx, "org_1")

	pols, _ := s.ListPolicies(ctx, &policy.ListFilter{TenantID: "org_1"})
	if len(pols) != 0 {
		t.Fatal("org_1 policies not deleted")
	}
	pols, _ = s.ListPolicies(ctx, &policy.ListFilter{TenantID: "org_2"})
	if len(pols) != 1 {
		t.Fatal("org_2 policies should remain")
	}
}

func TestMigratePingClose(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
