package steward

import (
	"context"
	"testing"

	"github.com/xraph/steward/store/memory"
)

func newTestMaterializer(t *testing.T, s *failingStore, c Cache) *Materializer {
	t.Helper()
	return NewMaterializer(NewAggregator(s), c, nil)
}

func TestMaterializeGlobalAdmin(t *testing.T) {
	s := &failingStore{Store: memory.New(), failMemberships: true}
	m := newTestMaterializer(t, s, nil)

	// Admins resolve nothing; the decision layer allows them first.
	grants, err := m.Materialize(context.Background(), Credential{
		Principal: Principal{ID: "ops_1", GlobalAdmin: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if grants != nil {
		t.Fatalf("expected nil grants, got %v", grants)
	}
}

func TestMaterializeEmbeddedGrants(t *testing.T) {
	s := &failingStore{Store: memory.New(), failMemberships: true}
	m := newTestMaterializer(t, s, nil)

	src := AccessGrantSet{{
		TenantID:    "org_1",
		ScopeType:   ScopeOrg,
		ScopeID:     "org_1",
		Permissions: PermissionMap{DomainLeases: ActionRead | ActionCreate},
	}}
	data, err := EncodeGrants(src)
	if err != nil {
		t.Fatal(err)
	}

	// The embedded set is used verbatim; the failing store proves no
	// recompute happens.
	grants, err := m.Materialize(context.Background(), Credential{
		Principal: Principal{ID: "user_1"},
		Grants:    data,
	})
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := grants.Find("org_1", ScopeOrg, "org_1")
	if !ok {
		t.Fatalf("missing entry in %v", grants)
	}
	if entry.Permissions[DomainLeases] != ActionRead|ActionCreate {
		t.Fatalf("leases = %v", entry.Permissions[DomainLeases])
	}
}

func TestMaterializeCachesByPrincipal(t *testing.T) {
	s := &failingStore{Store: memory.New()}
	f := seedHierarchy(t, s.Store)
	grantOverride(t, s.Store, f, ScopeOrg, f.org, map[string]string{"l": "r"})

	c := newStubCache()
	m := newTestMaterializer(t, s, c)
	ctx := context.Background()
	cred := Credential{Principal: Principal{ID: "user_1"}}

	grants, err := m.Materialize(ctx, cred)
	if err != nil {
		t.Fatal(err)
	}
	if len(grants) != 1 {
		t.Fatalf("grants = %v", grants)
	}
	if _, ok := c.entries["user_1"]; !ok {
		t.Fatal("recompute must populate the cache")
	}

	s.failMemberships = true
	if _, err := m.Materialize(ctx, cred); err != nil {
		t.Fatalf("cached principal must not hit the store: %v", err)
	}
}

func TestMaterializeStoreErrorPropagates(t *testing.T) {
	s := &failingStore{Store: memory.New(), failMemberships: true}
	m := newTestMaterializer(t, s, newStubCache())

	_, err := m.Materialize(context.Background(), Credential{Principal: Principal{ID: "user_1"}})
	if err == nil {
		t.Fatal("expected error, not an empty grant set")
	}
}

func TestAttachRunsOnce(t *testing.T) {
	s := &failingStore{Store: memory.New()}
	f := seedHierarchy(t, s.Store)
	grantOverride(t, s.Store, f, ScopeOrg, f.org, map[string]string{"l": "r"})

	m := newTestMaterializer(t, s, nil)
	cred := Credential{Principal: Principal{ID: "user_1"}}

	ctx, err := m.Attach(context.Background(), cred)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := GrantsFromContext(ctx); !ok {
		t.Fatal("grants not attached")
	}
	if p, ok := PrincipalFromContext(ctx); !ok || p.ID != "user_1" {
		t.Fatalf("principal not attached: %v %v", p, ok)
	}

	// A second attach on the same context is a no-op, even when the store
	// would now fail.
	s.failMemberships = true
	ctx2, err := m.Attach(ctx, cred)
	if err != nil {
		t.Fatal(err)
	}
	if ctx2 != ctx {
		t.Fatal("attach must not rebuild an already-carrying context")
	}
}
