package steward

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/resource"
	"github.com/xraph/steward/store/memory"
)

func assertChain(t *testing.T, got ScopeChain, want ...Scope) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("chain length = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chain[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResolveOrg(t *testing.T) {
	// The org scope needs no store lookup at all.
	r := NewHierarchyResolver(memory.New())
	org := id.NewOrgID().String()

	chain, err := r.Resolve(context.Background(), ScopeOrg, org, org)
	if err != nil {
		t.Fatal(err)
	}
	assertChain(t, chain, Scope{Type: ScopeOrg, ID: org})

	// Empty resource id defaults to the tenant itself.
	chain, err = r.Resolve(context.Background(), ScopeOrg, "", org)
	if err != nil {
		t.Fatal(err)
	}
	assertChain(t, chain, Scope{Type: ScopeOrg, ID: org})

	// A mismatched org id is a cross-tenant reference.
	chain, err = r.Resolve(context.Background(), ScopeOrg, id.NewOrgID().String(), org)
	if err != nil {
		t.Fatal(err)
	}
	if len(chain) != 0 {
		t.Fatalf("expected empty chain, got %v", chain)
	}
}

func TestResolveProperty(t *testing.T) {
	s := memory.New()
	f := seedHierarchy(t, s)
	r := NewHierarchyResolver(s)

	chain, err := r.Resolve(context.Background(), ScopeProperty, f.property.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	assertChain(t, chain,
		Scope{Type: ScopeProperty, ID: f.property.ID.String()},
		Scope{Type: ScopeOrg, ID: f.org},
	)
}

func TestResolveUnit(t *testing.T) {
	s := memory.New()
	f := seedHierarchy(t, s)
	r := NewHierarchyResolver(s)

	chain, err := r.Resolve(context.Background(), ScopeUnit, f.unit.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	assertChain(t, chain,
		Scope{Type: ScopeUnit, ID: f.unit.ID.String()},
		Scope{Type: ScopeProperty, ID: f.property.ID.String()},
		Scope{Type: ScopeOrg, ID: f.org},
	)
}

func TestResolveAssetUnderUnit(t *testing.T) {
	s := memory.New()
	f := seedHierarchy(t, s)
	r := NewHierarchyResolver(s)

	chain, err := r.Resolve(context.Background(), ScopeAsset, f.asset.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	assertChain(t, chain,
		Scope{Type: ScopeAsset, ID: f.asset.ID.String()},
		Scope{Type: ScopeUnit, ID: f.unit.ID.String()},
		Scope{Type: ScopeProperty, ID: f.property.ID.String()},
		Scope{Type: ScopeOrg, ID: f.org},
	)
}

func TestResolveAssetUnderProperty(t *testing.T) {
	s := memory.New()
	f := seedHierarchy(t, s)
	r := NewHierarchyResolver(s)

	propID := f.property.ID
	direct := &resource.Asset{ID: id.NewAssetID(), PropertyID: &propID, Name: "Elevator"}
	if err := s.CreateAsset(context.Background(), direct); err != nil {
		t.Fatal(err)
	}

	// No unit level in the chain for a property-attached asset.
	chain, err := r.Resolve(context.Background(), ScopeAsset, direct.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	assertChain(t, chain,
		Scope{Type: ScopeAsset, ID: direct.ID.String()},
		Scope{Type: ScopeProperty, ID: f.property.ID.String()},
		Scope{Type: ScopeOrg, ID: f.org},
	)
}

func TestResolveInconsistentAsset(t *testing.T) {
	s := memory.New()
	f := seedHierarchy(t, s)
	r := NewHierarchyResolver(s)

	// Neither parent set: the row is inconsistent and resolves empty, the
	// same as not found.
	orphan := &resource.Asset{ID: id.NewAssetID(), Name: "Ghost"}
	if err := s.CreateAsset(context.Background(), orphan); err != nil {
		t.Fatal(err)
	}

	chain, err := r.Resolve(context.Background(), ScopeAsset, orphan.ID.String(), f.org)
	if err != nil {
		t.Fatal(err)
	}
	if len(chain) != 0 {
		t.Fatalf("expected empty chain, got %v", chain)
	}
}

func TestResolveNotFound(t *testing.T) {
	s := memory.New()
	f := seedHierarchy(t, s)
	r := NewHierarchyResolver(s)

	for _, tc := range []struct {
		scopeType  ScopeType
		resourceID string
	}{
		{ScopeProperty, id.NewPropertyID().String()},
		{ScopeUnit, id.NewUnitID().String()},
		{ScopeAsset, id.NewAssetID().String()},
		{ScopeUnit, ""},
	} {
		chain, err := r.Resolve(context.Background(), tc.scopeType, tc.resourceID, f.org)
		if err != nil {
			t.Fatal(err)
		}
		if len(chain) != 0 {
			t.Fatalf("%s %q: expected empty chain, got %v", tc.scopeType, tc.resourceID, chain)
		}
	}
}

func TestResolveEmptyTenant(t *testing.T) {
	s := memory.New()
	f := seedHierarchy(t, s)
	r := NewHierarchyResolver(s)

	chain, err := r.Resolve(context.Background(), ScopeUnit, f.unit.ID.String(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(chain) != 0 {
		t.Fatalf("expected empty chain, got %v", chain)
	}
}

func TestResolveInvalidScopeType(t *testing.T) {
	r := NewHierarchyResolver(memory.New())

	_, err := r.Resolve(context.Background(), ScopeType("BUILDING"), "x", "org_1")
	if !errors.Is(err, ErrInvalidScopeType) {
		t.Fatalf("expected ErrInvalidScopeType, got %v", err)
	}
}
