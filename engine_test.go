package steward

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/event"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/membership"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/resource"
	"github.com/xraph/steward/store/memory"
)

func mustPolicy(polID id.PolicyID, tenantID, name string, perms map[string]string) *policy.Policy {
	return &policy.Policy{
		ID:          polID,
		TenantID:    tenantID,
		Name:        name,
		Permissions: perms,
	}
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	eng, err := NewEngine(append([]Option{WithStore(s)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng, s
}

// fixture is a seeded org → property → unit → asset chain plus one
// membership for principal "user_1".
type fixture struct {
	org        string
	property   *resource.Property
	unit       *resource.Unit
	asset      *resource.Asset
	membership *membership.Membership
}

func seedHierarchy(t *testing.T, s *memory.Store) fixture {
	t.Helper()
	ctx := context.Background()

	orgID := id.NewOrgID()
	prop := &resource.Property{ID: id.NewPropertyID(), OrgID: orgID, Name: "Maple Court"}
	unit := &resource.Unit{ID: id.NewUnitID(), PropertyID: prop.ID, Name: "2B"}
	unitID := unit.ID
	asset := &resource.Asset{ID: id.NewAssetID(), UnitID: &unitID, Name: "Boiler"}

	if err := s.CreateProperty(ctx, prop); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUnit(ctx, unit); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateAsset(ctx, asset); err != nil {
		t.Fatal(err)
	}

	mbr := &membership.Membership{
		ID:          id.NewMembershipID(),
		TenantID:    orgID.String(),
		PrincipalID: "user_1",
	}
	if err := s.CreateMembership(ctx, mbr); err != nil {
		t.Fatal(err)
	}

	return fixture{
		org:        orgID.String(),
		property:   prop,
		unit:       unit,
		asset:      asset,
		membership: mbr,
	}
}

// grantOverride assigns raw override permissions to the fixture membership
// at one scope.
func grantOverride(t *testing.T, s *memory.Store, f fixture, scopeType ScopeType, resourceID string, overrides map[string]string) {
	t.Helper()
	err := s.CreateAssignment(context.Background(), &assignment.Assignment{
		ID:           id.NewAssignmentID(),
		TenantID:     f.org,
		MembershipID: f.membership.ID,
		ScopeType:    string(scopeType),
		ResourceID:   resourceID,
		Overrides:    overrides,
	})
	if err != nil {
		t.Fatal(err)
	}
}

var errStoreDown = errors.New("store down")

// failingStore wraps the memory store and fails selected read paths, so
// tests can check that store errors surface instead of becoming decisions.
type failingStore struct {
	*memory.Store
	failAncestors   bool
	failMemberships bool
}

func (s *failingStore) FindAncestors(ctx context.Context, scopeType, resourceID string) (*resource.Ancestry, error) {
	if s.failAncestors {
		return nil, errStoreDown
	}
	return s.Store.FindAncestors(ctx, scopeType, resourceID)
}

func (s *failingStore) ListMembershipsForPrincipal(ctx context.Context, principalID string) ([]*membership.Membership, error) {
	if s.failMemberships {
		return nil, errStoreDown
	}
	return s.Store.ListMembershipsForPrincipal(ctx, principalID)
}

// stubCache is a map-backed Cache for the root package tests. The cache
// package cannot be imported here; it depends on this one.
type stubCache struct {
	entries map[string]AccessGrantSet
	hits    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]AccessGrantSet)}
}

func (c *stubCache) Get(_ context.Context, principalID string) (AccessGrantSet, bool) {
	g, ok := c.entries[principalID]
	if ok {
		c.hits++
	}
	return g, ok
}

func (c *stubCache) Set(_ context.Context, principalID string, grants AccessGrantSet) {
	c.entries[principalID] = grants
}

func (c *stubCache) Invalidate(_ context.Context, principalIDs ...string) {
	for _, p := range principalIDs {
		delete(c.entries, p)
	}
}

func TestNewEngineRequiresStore(t *testing.T) {
	if _, err := NewEngine(); err == nil {
		t.Fatal("expected error without store")
	}
}

func TestAuthorizeGlobalAdminBypass(t *testing.T) {
	eng, _ := newTestEngine(t)

	// No seeded rows at all; the admin check never consults grants.
	allowed, err := eng.Authorize(context.Background(), Principal{ID: "ops_1", GlobalAdmin: true},
		ActionDelete, DomainFinances, ScopeUnit, "unit_missing", "org_missing")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("global admin must satisfy every check")
	}
}

func TestAuthorizeNoGrantsDenies(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)

	allowed, err := eng.Authorize(context.Background(), Principal{ID: "stranger"},
		ActionRead, DomainLeases, ScopeUnit, f.unit.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("principal without grants must be denied")
	}
}

func TestAuthorizeGrantAtExactScope(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeUnit, f.unit.ID.String(), map[string]string{"l": "ru"})

	p := Principal{ID: "user_1"}
	ctx := context.Background()

	allowed, err := eng.Authorize(ctx, p, ActionRead|ActionUpdate, DomainLeases, ScopeUnit, f.unit.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected allow at granted scope")
	}

	// Same scope, ungranted bit.
	allowed, err = eng.Authorize(ctx, p, ActionDelete, DomainLeases, ScopeUnit, f.unit.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("delete was never granted")
	}

	// Same scope, ungranted domain.
	allowed, err = eng.Authorize(ctx, p, ActionRead, DomainFinances, ScopeUnit, f.unit.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("finances was never granted")
	}
}

func TestAuthorizeBroaderScopeCovers(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeProperty, f.property.ID.String(), map[string]string{"m": "rcud"})

	// A property-level grant covers checks on the unit and the asset
	// below it.
	for _, tc := range []struct {
		scopeType  ScopeType
		resourceID string
	}{
		{ScopeProperty, f.property.ID.String()},
		{ScopeUnit, f.unit.ID.String()},
		{ScopeAsset, f.asset.ID.String()},
	} {
		allowed, err := eng.Authorize(context.Background(), Principal{ID: "user_1"},
			ActionUpdate, DomainMaintenance, tc.scopeType, tc.resourceID, f.org)
		if err != nil {
			t.Fatal(err)
		}
		if !allowed {
			t.Fatalf("expected allow at %s %s", tc.scopeType, tc.resourceID)
		}
	}
}

func TestAuthorizeInsufficientEntryContinuesUpward(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeUnit, f.unit.ID.String(), map[string]string{"l": "r"})
	grantOverride(t, s, f, ScopeOrg, f.org, map[string]string{"l": "rc"})

	// The unit entry exists but lacks create; the walk continues and the
	// org entry qualifies.
	allowed, err := eng.Authorize(context.Background(), Principal{ID: "user_1"},
		ActionCreate, DomainLeases, ScopeUnit, f.unit.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected allow from the broader entry")
	}
}

func TestAuthorizeNoAggregationAcrossLevels(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeUnit, f.unit.ID.String(), map[string]string{"l": "r"})
	grantOverride(t, s, f, ScopeProperty, f.property.ID.String(), map[string]string{"l": "c"})

	// r at the unit plus c at the property never combine into rc: each
	// level must satisfy the requested mask on its own.
	allowed, err := eng.Authorize(context.Background(), Principal{ID: "user_1"},
		ActionRead|ActionCreate, DomainLeases, ScopeUnit, f.unit.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("masks from different levels must not union")
	}
}

func TestAuthorizeUnionsAcrossMemberships(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)
	ctx := context.Background()

	second := &membership.Membership{ID: id.NewMembershipID(), TenantID: f.org, PrincipalID: "user_1"}
	if err := s.CreateMembership(ctx, second); err != nil {
		t.Fatal(err)
	}
	grantOverride(t, s, f, ScopeUnit, f.unit.ID.String(), map[string]string{"l": "r"})
	_ = s.CreateAssignment(ctx, &assignment.Assignment{
		ID:           id.NewAssignmentID(),
		TenantID:     f.org,
		MembershipID: second.ID,
		ScopeType:    "UNIT",
		ResourceID:   f.unit.ID.String(),
		Overrides:    map[string]string{"l": "c"},
	})

	// The create bit comes from the second membership; it must not be
	// shadowed by the first membership's entry at the same scope.
	allowed, err := eng.Authorize(ctx, Principal{ID: "user_1"},
		ActionCreate, DomainLeases, ScopeUnit, f.unit.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("grant from a sibling membership was lost")
	}
}

func TestAuthorizeCrossTenantDenies(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)
	other := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeOrg, f.org, map[string]string{"l": "rcud"})

	ctx := context.Background()
	p := Principal{ID: "user_1"}

	// Foreign resource under own tenant id: empty chain, deny.
	allowed, err := eng.Authorize(ctx, p, ActionRead, DomainLeases, ScopeUnit, other.unit.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("cross-tenant resource must deny")
	}

	// Own resource under the foreign tenant id: same outcome.
	allowed, err = eng.Authorize(ctx, p, ActionRead, DomainLeases, ScopeUnit, f.unit.ID.String(), other.org)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("mismatched tenant must deny")
	}
}

func TestAuthorizeUnknownResourceDenies(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeOrg, f.org, map[string]string{"l": "rcud"})

	allowed, err := eng.Authorize(context.Background(), Principal{ID: "user_1"},
		ActionRead, DomainLeases, ScopeUnit, id.NewUnitID().String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("unknown resource must deny, not error")
	}
}

func TestAuthorizeResolverErrorPropagates(t *testing.T) {
	s := memory.New()
	fs := &failingStore{Store: s, failAncestors: true}
	eng, err := NewEngine(WithStore(fs))
	if err != nil {
		t.Fatal(err)
	}
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeOrg, f.org, map[string]string{"l": "r"})

	_, err = eng.Authorize(context.Background(), Principal{ID: "user_1"},
		ActionRead, DomainLeases, ScopeUnit, f.unit.ID.String(), f.org)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
}

func TestAuthorizeMaterializeErrorPropagates(t *testing.T) {
	s := memory.New()
	fs := &failingStore{Store: s, failMemberships: true}
	eng, err := NewEngine(WithStore(fs))
	if err != nil {
		t.Fatal(err)
	}
	f := seedHierarchy(t, s)

	_, err = eng.Authorize(context.Background(), Principal{ID: "user_1"},
		ActionRead, DomainLeases, ScopeOrg, f.org, f.org)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
}

func TestAuthorizeUsesContextGrants(t *testing.T) {
	// Grants attached to the context are used as-is; the membership
	// tables are never read.
	s := memory.New()
	fs := &failingStore{Store: s, failMemberships: true}
	eng, err := NewEngine(WithStore(fs))
	if err != nil {
		t.Fatal(err)
	}

	tenant := id.NewOrgID().String()
	ctx := WithGrants(context.Background(), AccessGrantSet{{
		TenantID:    tenant,
		ScopeType:   ScopeOrg,
		ScopeID:     tenant,
		Permissions: PermissionMap{DomainLeases: ActionRead},
	}})

	allowed, err := eng.Authorize(ctx, Principal{ID: "user_1"},
		ActionRead, DomainLeases, ScopeOrg, tenant, tenant)
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected allow from context grants")
	}
}

func TestEnforce(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeOrg, f.org, map[string]string{"t": "r"})

	ctx := context.Background()
	if err := eng.Enforce(ctx, Principal{ID: "user_1"}, ActionRead, DomainTenants, ScopeOrg, f.org, f.org); err != nil {
		t.Fatal(err)
	}

	err := eng.Enforce(ctx, Principal{ID: "user_1"}, ActionDelete, DomainTenants, ScopeOrg, f.org, f.org)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestAuthorizeRecordsDecisions(t *testing.T) {
	enabled := true
	eng, s := newTestEngine(t, WithConfig(Config{EnableDecisionLog: &enabled}))
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeOrg, f.org, map[string]string{"l": "r"})

	ctx := context.Background()
	p := Principal{ID: "user_1"}
	if _, err := eng.Authorize(ctx, p, ActionRead, DomainLeases, ScopeOrg, f.org, f.org); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Authorize(ctx, p, ActionDelete, DomainLeases, ScopeOrg, f.org, f.org); err != nil {
		t.Fatal(err)
	}

	entries, err := s.ListEntries(ctx, &decisionlog.QueryFilter{TenantID: f.org, PrincipalID: "user_1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 logged decisions, got %d", len(entries))
	}
	allowedCount := 0
	for _, e := range entries {
		if e.Allowed {
			allowedCount++
		}
		if e.Domain != "l" || e.ScopeType != "ORG" {
			t.Fatalf("unexpected entry: %+v", e)
		}
	}
	if allowedCount != 1 {
		t.Fatalf("expected exactly one allow, got %d", allowedCount)
	}
}

func TestAuthorizeServesFromCache(t *testing.T) {
	s := memory.New()
	fs := &failingStore{Store: s}
	c := newStubCache()
	eng, err := NewEngine(WithStore(fs), WithCache(c))
	if err != nil {
		t.Fatal(err)
	}
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeOrg, f.org, map[string]string{"l": "r"})

	ctx := context.Background()
	p := Principal{ID: "user_1"}

	if _, err := eng.Authorize(ctx, p, ActionRead, DomainLeases, ScopeOrg, f.org, f.org); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.entries["user_1"]; !ok {
		t.Fatal("first check must populate the cache")
	}

	// Second check may not touch the membership tables.
	fs.failMemberships = true
	allowed, err := eng.Authorize(ctx, p, ActionRead, DomainLeases, ScopeOrg, f.org, f.org)
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected allow from cached grants")
	}
	if c.hits == 0 {
		t.Fatal("expected a cache hit")
	}
}

func TestConfigDisablesInjectedCache(t *testing.T) {
	disabled := false
	c := newStubCache()
	eng, s := newTestEngine(t, WithCache(c), WithConfig(Config{EnableCache: &disabled}))
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeOrg, f.org, map[string]string{"l": "r"})

	allowed, err := eng.Authorize(context.Background(), Principal{ID: "user_1"},
		ActionRead, DomainLeases, ScopeOrg, f.org, f.org)
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected allow")
	}
	if len(c.entries) != 0 {
		t.Fatal("disabled cache must never be populated")
	}
}

func TestInvalidationEvictsCachedGrants(t *testing.T) {
	c := newStubCache()
	eng, s := newTestEngine(t, WithCache(c))
	f := seedHierarchy(t, s)
	grantOverride(t, s, f, ScopeOrg, f.org, map[string]string{"l": "r"})

	ctx := context.Background()
	p := Principal{ID: "user_1"}

	if _, err := eng.Authorize(ctx, p, ActionRead, DomainLeases, ScopeOrg, f.org, f.org); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.entries["user_1"]; !ok {
		t.Fatal("cache not populated")
	}

	// Widen the grant, then invalidate the membership: the next check
	// recomputes and sees the new bit.
	grantOverride(t, s, f, ScopeOrg, f.org, map[string]string{"l": "d"})
	if err := eng.InvalidateMembership(ctx, f.membership.ID, event.MutationAssignmentChanged); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.entries["user_1"]; ok {
		t.Fatal("invalidation must evict the principal")
	}

	allowed, err := eng.Authorize(ctx, p, ActionDelete, DomainLeases, ScopeOrg, f.org, f.org)
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("recompute must pick up the widened grant")
	}
}

func TestInvalidateLocalDoesNotPublish(t *testing.T) {
	c := newStubCache()
	eng, _ := newTestEngine(t, WithCache(c))

	published := 0
	eng.Events().Subscribe(func(context.Context, event.Invalidation) { published++ })

	c.Set(context.Background(), "user_1", AccessGrantSet{})
	eng.InvalidateLocal(context.Background(), "user_1")

	if _, ok := c.entries["user_1"]; ok {
		t.Fatal("local invalidation must evict")
	}
	if published != 0 {
		t.Fatalf("local invalidation must not reach the bus, got %d publishes", published)
	}
}

func TestEnsureBindingIdempotent(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)
	ctx := context.Background()

	first := &membership.ScopeBinding{
		ID:           id.NewBindingID(),
		MembershipID: f.membership.ID,
		ScopeType:    "PROPERTY",
		ScopeID:      f.property.ID.String(),
	}
	got, created, err := eng.EnsureBinding(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if !created || got.ID != first.ID {
		t.Fatalf("expected a fresh row, got created=%v id=%s", created, got.ID)
	}

	// The same (membership, scope) again: no new row, the original comes
	// back.
	dup := &membership.ScopeBinding{
		ID:           id.NewBindingID(),
		MembershipID: f.membership.ID,
		ScopeType:    "PROPERTY",
		ScopeID:      f.property.ID.String(),
	}
	got, created, err = eng.EnsureBinding(ctx, dup)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("duplicate binding must not create a row")
	}
	if got.ID != first.ID {
		t.Fatalf("expected the existing row back, got %s", got.ID)
	}

	bindings, err := s.ListBindings(ctx, f.membership.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding row, got %d", len(bindings))
	}
}

func TestPolicyPrincipals(t *testing.T) {
	eng, s := newTestEngine(t)
	f := seedHierarchy(t, s)
	ctx := context.Background()

	polID := id.NewPolicyID()
	_ = s.CreatePolicy(ctx, mustPolicy(polID, f.org, "managers", map[string]string{"l": "rcud"}))

	// Two assignments from the same membership dedupe to one principal; a
	// pending membership contributes nothing.
	pending := &membership.Membership{ID: id.NewMembershipID(), TenantID: f.org, InviteEmail: "new@hire.test"}
	_ = s.CreateMembership(ctx, pending)
	for _, mbrID := range []id.MembershipID{f.membership.ID, f.membership.ID, pending.ID} {
		_ = s.CreateAssignment(ctx, &assignment.Assignment{
			ID:           id.NewAssignmentID(),
			TenantID:     f.org,
			MembershipID: mbrID,
			ScopeType:    "ORG",
			ResourceID:   f.org,
			PolicyID:     &polID,
		})
	}

	principals, err := eng.PolicyPrincipals(ctx, polID)
	if err != nil {
		t.Fatal(err)
	}
	if len(principals) != 1 || principals[0] != "user_1" {
		t.Fatalf("principals = %v, want [user_1]", principals)
	}
}
