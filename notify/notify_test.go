package notify

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/xraph/steward/event"
)

type mockListener struct {
	mu            sync.Mutex
	connected     bool
	listening     bool
	channel       string
	notifications chan string
	sent          []string
	connectErr    error
}

func newMockListener() *mockListener {
	return &mockListener{notifications: make(chan string, 100)}
}

func (m *mockListener) Connect(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = true
	return nil
}

func (m *mockListener) Listen(_ context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channel = channel
	m.listening = true
	return nil
}

func (m *mockListener) WaitForNotification(ctx context.Context) (string, error) {
	select {
	case payload := <-m.notifications:
		return payload, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *mockListener) Notify(_ context.Context, _, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, payload)
	return nil
}

func (m *mockListener) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.listening = false
	return nil
}

func (m *mockListener) sentPayloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *mockListener) inject(payload string) {
	m.notifications <- payload
}

func startBridge(t *testing.T, apply event.Handler) (*Bridge, *event.Bus, *mockListener) {
	t.Helper()
	bus := event.NewBus(nil)
	mock := newMockListener()
	bridge := NewBridge(Config{DSN: "ignored"}, bus, apply, nil)
	bridge.SetListener(mock)
	if err := bridge.Start(context.Background()); err != nil {
		t.Fatalf("start bridge: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := bridge.Stop(ctx); err != nil {
			t.Errorf("stop bridge: %v", err)
		}
	})
	return bridge, bus, mock
}

func TestBridgeBroadcastsLocalInvalidations(t *testing.T) {
	bridge, bus, mock := startBridge(t, func(context.Context, event.Invalidation) {})

	bus.Publish(context.Background(), event.Invalidation{
		Mutation:     event.MutationPolicyUpdated,
		TenantID:     "tenant-1",
		PrincipalIDs: []string{"alice"},
	})

	deadline := time.Now().Add(2 * time.Second)
	var sent []string
	for time.Now().Before(deadline) {
		if sent = mock.sentPayloads(); len(sent) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(sent) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(sent))
	}

	var env envelope
	if err := json.Unmarshal([]byte(sent[0]), &env); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if env.Node != bridge.Node() {
		t.Fatalf("broadcast node = %q, want %q", env.Node, bridge.Node())
	}
	if env.Mutation != event.MutationPolicyUpdated || len(env.PrincipalIDs) != 1 {
		t.Fatalf("unexpected broadcast contents: %+v", env)
	}
}

func TestBridgeAppliesRemoteInvalidations(t *testing.T) {
	applied := make(chan event.Invalidation, 1)
	_, _, mock := startBridge(t, func(_ context.Context, inv event.Invalidation) {
		applied <- inv
	})

	payload, _ := json.Marshal(envelope{
		Node: "node_other",
		Invalidation: event.Invalidation{
			Mutation:     event.MutationMembershipChanged,
			PrincipalIDs: []string{"bob"},
		},
	})
	mock.inject(string(payload))

	select {
	case inv := <-applied:
		if inv.Mutation != event.MutationMembershipChanged {
			t.Fatalf("mutation = %q", inv.Mutation)
		}
		if len(inv.PrincipalIDs) != 1 || inv.PrincipalIDs[0] != "bob" {
			t.Fatalf("principals = %v", inv.PrincipalIDs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("remote invalidation not applied")
	}
}

func TestBridgeSkipsOwnBroadcasts(t *testing.T) {
	applied := make(chan event.Invalidation, 1)
	bridge, _, mock := startBridge(t, func(_ context.Context, inv event.Invalidation) {
		applied <- inv
	})

	own, _ := json.Marshal(envelope{
		Node: bridge.Node(),
		Invalidation: event.Invalidation{
			Mutation:     event.MutationPolicyUpdated,
			PrincipalIDs: []string{"alice"},
		},
	})
	mock.inject(string(own))

	remote, _ := json.Marshal(envelope{
		Node: "node_other",
		Invalidation: event.Invalidation{
			Mutation:     event.MutationTemplateUpdated,
			PrincipalIDs: []string{"carol"},
		},
	})
	mock.inject(string(remote))

	select {
	case inv := <-applied:
		// The own-node message must have been skipped; the remote one
		// arrives first in the apply channel.
		if inv.Mutation != event.MutationTemplateUpdated {
			t.Fatalf("applied own broadcast: %+v", inv)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("remote invalidation not applied")
	}
}

func TestBridgeIgnoresMalformedPayloads(t *testing.T) {
	applied := make(chan event.Invalidation, 1)
	_, _, mock := startBridge(t, func(_ context.Context, inv event.Invalidation) {
		applied <- inv
	})

	mock.inject("not json")

	valid, _ := json.Marshal(envelope{
		Node: "node_other",
		Invalidation: event.Invalidation{
			Mutation:     event.MutationBindingChanged,
			PrincipalIDs: []string{"dave"},
		},
	})
	mock.inject(string(valid))

	select {
	case inv := <-applied:
		if inv.Mutation != event.MutationBindingChanged {
			t.Fatalf("unexpected invalidation: %+v", inv)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("bridge stalled on malformed payload")
	}
}

func TestBridgeHealthy(t *testing.T) {
	bridge, _, _ := startBridge(t, func(context.Context, event.Invalidation) {})
	if !bridge.Healthy() {
		t.Fatal("bridge should be healthy after start")
	}
}
