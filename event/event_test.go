package event

import (
	"context"
	"testing"
)

func TestBusFanOut(t *testing.T) {
	b := NewBus(nil)

	var got []Invalidation
	b.Subscribe(func(_ context.Context, inv Invalidation) {
		got = append(got, inv)
	})

	b.Publish(context.Background(), Invalidation{
		Mutation:     MutationPolicyUpdated,
		TenantID:     "org_1",
		PrincipalIDs: []string{"u1", "u2"},
	})

	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	if got[0].Mutation != MutationPolicyUpdated {
		t.Errorf("unexpected mutation %q", got[0].Mutation)
	}
	if len(got[0].PrincipalIDs) != 2 {
		t.Errorf("expected 2 principals, got %d", len(got[0].PrincipalIDs))
	}
}

func TestBusSkipsEmptyInvalidation(t *testing.T) {
	b := NewBus(nil)

	delivered := 0
	b.Subscribe(func(_ context.Context, _ Invalidation) { delivered++ })

	b.Publish(context.Background(), Invalidation{Mutation: MutationPolicyUpdated})

	if delivered != 0 {
		t.Fatalf("expected no delivery for empty principal list, got %d", delivered)
	}
}

func TestBusChannel(t *testing.T) {
	b := NewBus(nil)
	ch := b.Channel(4)

	b.Publish(context.Background(), Invalidation{
		Mutation:     MutationAssignmentChanged,
		PrincipalIDs: []string{"u1"},
	})

	select {
	case inv := <-ch:
		if inv.Mutation != MutationAssignmentChanged {
			t.Errorf("unexpected mutation %q", inv.Mutation)
		}
	default:
		t.Fatal("expected buffered invalidation")
	}
}

func TestBusChannelDropsWhenFull(t *testing.T) {
	b := NewBus(nil)
	ch := b.Channel(1)

	for i := 0; i < 3; i++ {
		b.Publish(context.Background(), Invalidation{
			Mutation:     MutationBindingChanged,
			PrincipalIDs: []string{"u1"},
		})
	}

	// Exactly one buffered; the rest were dropped without blocking.
	<-ch
	select {
	case <-ch:
		t.Fatal("expected only one buffered invalidation")
	default:
	}
}
