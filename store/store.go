// Package store defines the aggregate persistence interface. Each subsystem
// (resource, membership, policy, assignment, template, decisionlog) defines
// its own store interface; the composite Store composes them all.
// Backends: Postgres, SQLite, and Memory.
package store

import (
	"context"

	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/decisionlog"
	"github.com/xraph/steward/membership"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/resource"
	"github.com/xraph/steward/template"
)

// Store is the aggregate persistence interface. A single backend
// (postgres, sqlite, memory) implements all subsystem stores.
type Store interface {
	resource.Store
	membership.Store
	policy.Store
	assignment.Store
	template.Store
	decisionlog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
