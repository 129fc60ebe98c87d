package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/xraph/steward"
)

func grantsFor(propID string) steward.AccessGrantSet {
	return steward.AccessGrantSet{
		{
			TenantID:    "org_1",
			ScopeType:   steward.ScopeProperty,
			ScopeID:     propID,
			Permissions: steward.PermissionMap{steward.DomainLeases: steward.ActionRead},
		},
	}
}

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	// Miss
	_, ok := c.Get(ctx, "user-1")
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.Set(ctx, "user-1", grantsFor("prop_a"))
	got, ok := c.Get(ctx, "user-1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].ScopeID != "prop_a" {
		t.Fatalf("unexpected grants: %+v", got)
	}
}

func TestMemoryCacheEmptyGrantSetIsCached(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	// A principal with no grants still caches: recomputing nothing on
	// every request is the case the cache exists to avoid.
	c.Set(ctx, "user-1", nil)
	got, ok := c.Get(ctx, "user-1")
	if !ok {
		t.Fatal("expected cache hit for empty grant set")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty grants, got %+v", got)
	}
}

func TestMemoryCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "user-1", grantsFor("prop_a"))
	c.Set(ctx, "user-2", grantsFor("prop_b"))
	c.Set(ctx, "user-3", grantsFor("prop_c"))

	c.Invalidate(ctx, "user-1", "user-2")

	if _, ok := c.Get(ctx, "user-1"); ok {
		t.Fatal("user-1 should be invalidated")
	}
	if _, ok := c.Get(ctx, "user-2"); ok {
		t.Fatal("user-2 should be invalidated")
	}
	if _, ok := c.Get(ctx, "user-3"); !ok {
		t.Fatal("user-3 should still be cached")
	}
}

func TestMemoryCacheInvalidateIdempotent(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "user-1", grantsFor("prop_a"))
	c.Invalidate(ctx, "user-1")
	c.Invalidate(ctx, "user-1")
	c.Invalidate(ctx, "unknown-user")

	if _, ok := c.Get(ctx, "user-1"); ok {
		t.Fatal("user-1 should stay invalidated")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Len())
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		c.Set(ctx, fmt.Sprintf("user-%d", i), grantsFor("prop_a"))
	}

	if c.Len() > 2 {
		t.Fatalf("expected max 2 entries, got %d", c.Len())
	}
}

func TestMemoryCacheOverwrite(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "user-1", grantsFor("prop_a"))
	first, _ := c.ComputedAt("user-1")

	c.Set(ctx, "user-1", grantsFor("prop_b"))
	got, ok := c.Get(ctx, "user-1")
	if !ok || got[0].ScopeID != "prop_b" {
		t.Fatalf("expected overwritten grants, got %+v", got)
	}
	second, _ := c.ComputedAt("user-1")
	if second.Before(first) {
		t.Fatal("computedAt should advance on overwrite")
	}
}
