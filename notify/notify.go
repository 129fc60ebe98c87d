// Package notify bridges grant invalidations across processes using
// PostgreSQL LISTEN/NOTIFY. Each node broadcasts its local invalidations on
// a shared channel and applies the ones other nodes broadcast, so an engine
// cache on any node is evicted no matter which node performed the mutation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"go.jetify.com/typeid/v2"

	"github.com/xraph/steward/event"
)

// DefaultChannel is the LISTEN/NOTIFY channel used when none is configured.
const DefaultChannel = "steward_invalidations"

// Listener abstracts the PostgreSQL LISTEN/NOTIFY mechanism for testability.
// In production this wraps a pair of pgx connections; tests use a mock.
type Listener interface {
	// Connect establishes the database connections.
	Connect(ctx context.Context, dsn string) error
	// Listen starts listening on the given channel.
	Listen(ctx context.Context, channel string) error
	// WaitForNotification blocks until a notification arrives or the
	// context is cancelled.
	WaitForNotification(ctx context.Context) (payload string, err error)
	// Notify broadcasts a payload on the given channel.
	Notify(ctx context.Context, channel, payload string) error
	// Close closes the connections.
	Close(ctx context.Context) error
}

// envelope is the wire form of an invalidation. Node identifies the sender
// so a node can skip its own broadcasts.
type envelope struct {
	Node string `json:"node"`
	event.Invalidation
}

// Config holds the bridge configuration.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string
	// Channel is the LISTEN/NOTIFY channel name. Defaults to DefaultChannel.
	Channel string
	// Buffer is the outbound queue size. Invalidations beyond the buffer
	// are dropped for the bridge; local eviction is unaffected.
	Buffer int
}

// Bridge relays invalidations between the local bus and a shared PostgreSQL
// channel. Outbound: local publications are broadcast via NOTIFY. Inbound:
// broadcasts from other nodes are applied through the configured handler.
type Bridge struct {
	config   Config
	node     string
	listener Listener
	apply    event.Handler
	outbound <-chan event.Invalidation
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	healthy atomic.Bool
}

// NewBridge creates a bridge wired to the given bus. The apply handler
// receives invalidations broadcast by other nodes; it is typically the same
// cache eviction the engine subscribes locally.
func NewBridge(config Config, bus *event.Bus, apply event.Handler, logger *slog.Logger) *Bridge {
	if config.Channel == "" {
		config.Channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		config:   config,
		node:     newNodeID(),
		listener: &pgxListener{},
		apply:    apply,
		outbound: bus.Channel(config.Buffer),
		logger:   logger.With("component", "steward.notify", "channel", config.Channel),
	}
}

// newNodeID generates a unique sender identity for this process.
func newNodeID() string {
	tid, err := typeid.Generate("node")
	if err != nil {
		return fmt.Sprintf("node_%d", time.Now().UnixNano())
	}
	return tid.String()
}

// SetListener replaces the PostgreSQL listener. Primarily used by tests.
// Must be called before Start.
func (b *Bridge) SetListener(l Listener) { b.listener = l }

// Node returns this bridge's sender identity.
func (b *Bridge) Node() string { return b.node }

// Start connects, subscribes, and launches the relay loops.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.listener.Connect(ctx, b.config.DSN); err != nil {
		return fmt.Errorf("steward/notify: connect: %w", err)
	}
	if err := b.listener.Listen(ctx, b.config.Channel); err != nil {
		_ = b.listener.Close(ctx)
		return fmt.Errorf("steward/notify: listen on %q: %w", b.config.Channel, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{}, 2)
	b.healthy.Store(true)

	go b.sendLoop(loopCtx)
	go b.receiveLoop(loopCtx)

	b.logger.Info("invalidation bridge started", "node", b.node)
	return nil
}

// Stop shuts the relay loops down and closes the connections.
func (b *Bridge) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.healthy.Store(false)

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	if b.done != nil {
		for range 2 {
			select {
			case <-b.done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		b.done = nil
	}
	return b.listener.Close(ctx)
}

// Healthy reports whether the bridge is connected and relaying.
func (b *Bridge) Healthy() bool { return b.healthy.Load() }

// sendLoop drains local invalidations and broadcasts them.
func (b *Bridge) sendLoop(ctx context.Context) {
	defer func() { b.done <- struct{}{} }()

	for {
		select {
		case <-ctx.Done():
			return
		case inv := <-b.outbound:
			payload, err := json.Marshal(envelope{Node: b.node, Invalidation: inv})
			if err != nil {
				b.logger.Warn("failed to encode invalidation", "error", err)
				continue
			}
			if err := b.listener.Notify(ctx, b.config.Channel, string(payload)); err != nil {
				if ctx.Err() != nil {
					return
				}
				b.logger.Error("broadcast failed", "error", err,
					"mutation", string(inv.Mutation))
			}
		}
	}
}

// receiveLoop waits for broadcasts and applies the remote ones.
func (b *Bridge) receiveLoop(ctx context.Context) {
	defer func() { b.done <- struct{}{} }()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		payload, err := b.listener.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Error("notification error", "error", err)
			b.healthy.Store(false)

			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		b.healthy.Store(true)

		var env envelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			b.logger.Warn("failed to parse notification", "error", err, "payload", payload)
			continue
		}
		if env.Node == b.node {
			continue
		}
		b.apply(ctx, env.Invalidation)
	}
}

// pgxListener implements Listener with a pair of pgx connections. The
// listening connection is pinned by WaitForNotification, so broadcasts go
// out on a second connection.
type pgxListener struct {
	recv *pgx.Conn
	send *pgx.Conn
}

func (l *pgxListener) Connect(ctx context.Context, dsn string) error {
	recv, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	send, err := pgx.Connect(ctx, dsn)
	if err != nil {
		_ = recv.Close(ctx)
		return err
	}
	l.recv = recv
	l.send = send
	return nil
}

func (l *pgxListener) Listen(ctx context.Context, channel string) error {
	// Channel names cannot be bound as parameters; quote as an identifier.
	_, err := l.recv.Exec(ctx, fmt.Sprintf("LISTEN %s", pgx.Identifier{channel}.Sanitize()))
	return err
}

func (l *pgxListener) WaitForNotification(ctx context.Context) (string, error) {
	n, err := l.recv.WaitForNotification(ctx)
	if err != nil {
		return "", err
	}
	return n.Payload, nil
}

func (l *pgxListener) Notify(ctx context.Context, channel, payload string) error {
	_, err := l.send.Exec(ctx, "SELECT pg_notify($1, $2)", channel, payload)
	return err
}

func (l *pgxListener) Close(ctx context.Context) error {
	var firstErr error
	if l.recv != nil {
		firstErr = l.recv.Close(ctx)
	}
	if l.send != nil {
		if err := l.send.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
